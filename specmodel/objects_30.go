package specmodel

// This file declares the OpenAPI 3.0.0 class table. As in 2.0, dynamic
// wire maps (paths, schemas under components, content per media type)
// are MapOf/ListOf children rather than dedicated wrapper classes.
// Schema is shared with the 2.0 model (specmodel/objects_20.go):
// 2.0->3.0.0 migration mostly carries Schema nodes across unconverted,
// so reusing the same ClassMeta and Go type means a migrated node is
// still a *Schema afterward rather than needing a re-wrap step.

type OpenAPI struct{ Base }

var openAPIMeta = &ClassMeta{
	Name:   "OpenAPI",
	Fields: []FieldMeta{{Key: "openapi", Default: "3.0.0"}, {Key: "security"}},
	Children: []ChildMeta{
		{Key: "info", Builder: Single(infoMeta)},
		{Key: "paths", Builder: MapOf(RefOr(Single(pathItem30Meta)))},
		{Key: "components", Builder: Single(componentsMeta)},
		{Key: "servers", Builder: ListOf(Single(serverMeta))},
		{Key: "tags", Builder: ListOf(Single(tagMeta))},
		{Key: "externalDocs", Builder: Single(externalDocsMeta)},
	},
	New: func() Object { return &OpenAPI{} },
}

func OpenAPIMeta() *ClassMeta { return openAPIMeta }

func (o *OpenAPI) Paths() map[string]Object {
	v, _ := o.Child("paths")
	m, _ := v.(map[string]Object)
	return m
}

func (o *OpenAPI) Components() (Object, bool) {
	v, ok := o.Child("components")
	c, _ := v.(Object)
	return c, ok
}

type Components struct{ Base }

var componentsMeta = &ClassMeta{
	Name: "Components",
	Children: []ChildMeta{
		{Key: "schemas", Builder: MapOf(RefOr(Single(schemaMeta)))},
		{Key: "responses", Builder: MapOf(RefOr(Single(response30Meta)))},
		{Key: "parameters", Builder: MapOf(RefOr(Single(parameter30Meta)))},
		{Key: "requestBodies", Builder: MapOf(RefOr(Single(requestBodyMeta)))},
		{Key: "headers", Builder: MapOf(RefOr(Single(header30Meta)))},
		{Key: "securitySchemes", Builder: MapOf(RefOr(Single(securityScheme30Meta)))},
		{Key: "examples", Builder: MapOf(RefOr(Single(exampleMeta)))},
	},
	New: func() Object { return &Components{} },
}

func ComponentsMeta() *ClassMeta { return componentsMeta }

func (c *Components) Schemas() map[string]Object {
	v, _ := c.Child("schemas")
	m, _ := v.(map[string]Object)
	return m
}

type Server struct{ Base }

var serverMeta = &ClassMeta{
	Name:     "Server",
	Fields:   []FieldMeta{{Key: "url"}, {Key: "description"}},
	Children: []ChildMeta{{Key: "variables", Builder: MapOf(Single(serverVariableMeta))}},
	New:      func() Object { return &Server{} },
}

type ServerVariable struct{ Base }

var serverVariableMeta = &ClassMeta{
	Name:   "ServerVariable",
	Fields: []FieldMeta{{Key: "enum"}, {Key: "default"}, {Key: "description"}},
	New:    func() Object { return &ServerVariable{} },
}

// --- PathItem / Operation -------------------------------------------------

type PathItem30 struct{ Base }

var pathItem30Meta = &ClassMeta{
	Name: "PathItem30",
	Children: []ChildMeta{
		{Key: "get", Builder: Single(operation30Meta)},
		{Key: "put", Builder: Single(operation30Meta)},
		{Key: "post", Builder: Single(operation30Meta)},
		{Key: "delete", Builder: Single(operation30Meta)},
		{Key: "options", Builder: Single(operation30Meta)},
		{Key: "head", Builder: Single(operation30Meta)},
		{Key: "patch", Builder: Single(operation30Meta)},
		{Key: "trace", Builder: Single(operation30Meta)},
		{Key: "servers", Builder: ListOf(Single(serverMeta))},
		{Key: "parameters", Builder: ListOf(RefOr(Single(parameter30Meta)))},
	},
	New: func() Object { return &PathItem30{} },
}

func PathItem30Meta() *ClassMeta { return pathItem30Meta }

var httpMethods30 = append(append([]string{}, httpMethods...), "trace")

func (p *PathItem30) Operations() map[string]*Operation30 {
	out := map[string]*Operation30{}
	for _, m := range httpMethods30 {
		if v, ok := p.Child(m); ok {
			if op, ok := v.(*Operation30); ok {
				out[m] = op
			}
		}
	}
	return out
}

type Operation30 struct{ Base }

var operation30Meta = &ClassMeta{
	Name: "Operation30",
	Fields: []FieldMeta{
		{Key: "tags"}, {Key: "summary"}, {Key: "description"}, {Key: "operationId"},
		{Key: "deprecated", Default: false}, {Key: "security"},
	},
	Children: []ChildMeta{
		{Key: "externalDocs", Builder: Single(externalDocsMeta)},
		{Key: "parameters", Builder: ListOf(RefOr(Single(parameter30Meta)))},
		{Key: "requestBody", Builder: RefOr(Single(requestBodyMeta))},
		{Key: "responses", Builder: MapOf(RefOr(Single(response30Meta)))},
		{Key: "servers", Builder: ListOf(Single(serverMeta))},
	},
	New: func() Object { return &Operation30{} },
}

func Operation30Meta() *ClassMeta { return operation30Meta }

func (o *Operation30) OperationID() string {
	v, _ := o.Field("operationId")
	s, _ := v.(string)
	return s
}

// --- Parameter / RequestBody / MediaType / Response / Header -------------

type Parameter30 struct{ Base }

var parameter30Meta = &ClassMeta{
	Name: "Parameter30",
	Fields: []FieldMeta{
		{Key: "name"}, {Key: "in"}, {Key: "description"},
		{Key: "required", Default: false}, {Key: "deprecated", Default: false},
		{Key: "allowEmptyValue", Default: false}, {Key: "style"},
		{Key: "explode", Default: false},
	},
	Children: []ChildMeta{
		{Key: "schema", Builder: RefOr(Single(schemaMeta))},
		{Key: "content", Builder: MapOf(Single(mediaTypeMeta))},
	},
	Renamed: []RenamedMeta{{Public: "Location", Wire: "in"}},
	New:     func() Object { return &Parameter30{} },
}

func Parameter30Meta() *ClassMeta { return parameter30Meta }

func (p *Parameter30) Location() string {
	v, ok := FieldByPublicName(p, "Location")
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

type RequestBody struct{ Base }

var requestBodyMeta = &ClassMeta{
	Name:     "RequestBody",
	Fields:   []FieldMeta{{Key: "description"}, {Key: "required", Default: false}},
	Children: []ChildMeta{{Key: "content", Builder: MapOf(Single(mediaTypeMeta))}},
	New:      func() Object { return &RequestBody{} },
}

func RequestBodyMeta() *ClassMeta { return requestBodyMeta }

func (r *RequestBody) Content() map[string]Object {
	v, _ := r.Child("content")
	m, _ := v.(map[string]Object)
	return m
}

type MediaType struct{ Base }

var mediaTypeMeta = &ClassMeta{
	Name: "MediaType",
	Children: []ChildMeta{
		{Key: "schema", Builder: RefOr(Single(schemaMeta))},
		{Key: "examples", Builder: MapOf(RefOr(Single(exampleMeta)))},
	},
	New: func() Object { return &MediaType{} },
}

type Response30 struct{ Base }

var response30Meta = &ClassMeta{
	Name:   "Response30",
	Fields: []FieldMeta{{Key: "description"}},
	Children: []ChildMeta{
		{Key: "headers", Builder: MapOf(RefOr(Single(header30Meta)))},
		{Key: "content", Builder: MapOf(Single(mediaTypeMeta))},
	},
	New: func() Object { return &Response30{} },
}

func Response30Meta() *ClassMeta { return response30Meta }

type Header30 struct{ Base }

var header30Meta = &ClassMeta{
	Name: "Header30",
	Fields: []FieldMeta{
		{Key: "description"}, {Key: "required", Default: false}, {Key: "deprecated", Default: false},
	},
	Children: []ChildMeta{{Key: "schema", Builder: RefOr(Single(schemaMeta))}},
	New:      func() Object { return &Header30{} },
}

type Example struct{ Base }

var exampleMeta = &ClassMeta{
	Name:   "Example",
	Fields: []FieldMeta{{Key: "summary"}, {Key: "description"}, {Key: "value"}},
	New:    func() Object { return &Example{} },
}

type SecurityScheme30 struct{ Base }

var securityScheme30Meta = &ClassMeta{
	Name: "SecurityScheme30",
	Fields: []FieldMeta{
		{Key: "type"}, {Key: "description"}, {Key: "name"}, {Key: "in"},
		{Key: "scheme"}, {Key: "bearerFormat"}, {Key: "openIdConnectUrl"},
	},
	Children: []ChildMeta{{Key: "flows", Builder: Single(oauthFlowsMeta)}},
	New:      func() Object { return &SecurityScheme30{} },
}

func SecurityScheme30Meta() *ClassMeta { return securityScheme30Meta }

type OAuthFlows struct{ Base }

var oauthFlowsMeta = &ClassMeta{
	Name: "OAuthFlows",
	Children: []ChildMeta{
		{Key: "implicit", Builder: Single(oauthFlowMeta)},
		{Key: "password", Builder: Single(oauthFlowMeta)},
		{Key: "clientCredentials", Builder: Single(oauthFlowMeta)},
		{Key: "authorizationCode", Builder: Single(oauthFlowMeta)},
	},
	New: func() Object { return &OAuthFlows{} },
}

// OAuthFlow covers all four OpenAPI 3.0.0 flow shapes with one class:
// each flow omits whichever of authorizationUrl/tokenUrl it doesn't use,
// so a single optional-field set is simpler than four near-identical
// classes (OpenAPI 3.0.0 §4.8.27 OAuth Flow Object).
type OAuthFlow struct{ Base }

var oauthFlowMeta = &ClassMeta{
	Name: "OAuthFlow",
	Fields: []FieldMeta{
		{Key: "authorizationUrl"}, {Key: "tokenUrl"}, {Key: "refreshUrl"}, {Key: "scopes"},
	},
	New: func() Object { return &OAuthFlow{} },
}
