package specmodel

import (
	"encoding/json"

	"github.com/go-openapi/spec"
)

// This file declares the Swagger 2.0 class table. Map-shaped and
// list-shaped wire members (definitions, paths, responses, properties, ...)
// are declared as MapOf/ListOf children directly — there is no dedicated
// "Responses" or "Paths" wrapper class, since the generic Resolve descent
// (base.go, descend) already walks into a map[string]Object or []Object
// child one token at a time exactly as it walks into a nested Object.

// --- Swagger (root) ---------------------------------------------------

type Swagger struct{ Base }

var swaggerMeta = &ClassMeta{
	Name: "Swagger",
	Fields: []FieldMeta{
		{Key: "swagger", Default: "2.0"},
		{Key: "host"},
		{Key: "basePath"},
		{Key: "schemes"},
		{Key: "consumes"},
		{Key: "produces"},
		{Key: "security"},
	},
	Children: []ChildMeta{
		{Key: "info", Builder: Single(infoMeta)},
		{Key: "paths", Builder: MapOf(Single(pathItemMeta))},
		{Key: "definitions", Builder: MapOf(Single(schemaMeta))},
		{Key: "parameters", Builder: MapOf(RefOr(Single(parameterMeta)))},
		{Key: "responses", Builder: MapOf(RefOr(Single(responseMeta)))},
		{Key: "securityDefinitions", Builder: MapOf(Single(securitySchemeMeta))},
		{Key: "tags", Builder: ListOf(Single(tagMeta))},
		{Key: "externalDocs", Builder: Single(externalDocsMeta)},
	},
	New: func() Object { return &Swagger{} },
}

func SwaggerMeta() *ClassMeta { return swaggerMeta }

func (s *Swagger) Host() string     { v, _ := s.Field("host"); r, _ := v.(string); return r }
func (s *Swagger) BasePath() string { v, _ := s.Field("basePath"); r, _ := v.(string); return r }

func (s *Swagger) Paths() map[string]Object {
	v, _ := s.Child("paths")
	m, _ := v.(map[string]Object)
	return m
}

func (s *Swagger) Definitions() map[string]Object {
	v, _ := s.Child("definitions")
	m, _ := v.(map[string]Object)
	return m
}

// --- Info / Contact / License / ExternalDocs / Tag ---------------------

type Info struct{ Base }

var infoMeta = &ClassMeta{
	Name: "Info",
	Fields: []FieldMeta{
		{Key: "title"}, {Key: "description"}, {Key: "termsOfService"}, {Key: "version"},
	},
	Children: []ChildMeta{
		{Key: "contact", Builder: Single(contactMeta)},
		{Key: "license", Builder: Single(licenseMeta)},
	},
	New: func() Object { return &Info{} },
}

type Contact struct{ Base }

var contactMeta = &ClassMeta{
	Name:   "Contact",
	Fields: []FieldMeta{{Key: "name"}, {Key: "url"}, {Key: "email"}},
	New:    func() Object { return &Contact{} },
}

type License struct{ Base }

var licenseMeta = &ClassMeta{
	Name:   "License",
	Fields: []FieldMeta{{Key: "name"}, {Key: "url"}},
	New:    func() Object { return &License{} },
}

type ExternalDocs struct{ Base }

var externalDocsMeta = &ClassMeta{
	Name:   "ExternalDocs",
	Fields: []FieldMeta{{Key: "description"}, {Key: "url"}},
	New:    func() Object { return &ExternalDocs{} },
}

func ExternalDocsMeta() *ClassMeta { return externalDocsMeta }

type Tag struct{ Base }

var tagMeta = &ClassMeta{
	Name:     "Tag",
	Fields:   []FieldMeta{{Key: "name"}, {Key: "description"}},
	Children: []ChildMeta{{Key: "externalDocs", Builder: Single(externalDocsMeta)}},
	New:      func() Object { return &Tag{} },
}

func TagMeta() *ClassMeta { return tagMeta }

func (t *Tag) Name() string { v, _ := t.Field("name"); s, _ := v.(string); return s }

// --- PathItem / Operation -----------------------------------------------

type PathItem struct{ Base }

var pathItemMeta = &ClassMeta{
	Name: "PathItem",
	Children: []ChildMeta{
		{Key: "get", Builder: Single(operationMeta)},
		{Key: "put", Builder: Single(operationMeta)},
		{Key: "post", Builder: Single(operationMeta)},
		{Key: "delete", Builder: Single(operationMeta)},
		{Key: "options", Builder: Single(operationMeta)},
		{Key: "head", Builder: Single(operationMeta)},
		{Key: "patch", Builder: Single(operationMeta)},
		{Key: "parameters", Builder: ListOf(RefOr(Single(parameterMeta)))},
	},
	New: func() Object { return &PathItem{} },
}

func PathItemMeta() *ClassMeta { return pathItemMeta }

var httpMethods = []string{"get", "put", "post", "delete", "options", "head", "patch"}

// Operations returns every method -> *Operation pair declared on this
// path item, as a map keyed by lower-case HTTP method (a map, so its
// iteration order is not defined).
func (p *PathItem) Operations() map[string]*Operation {
	out := map[string]*Operation{}
	for _, m := range httpMethods {
		if v, ok := p.Child(m); ok {
			if op, ok := v.(*Operation); ok {
				out[m] = op
			}
		}
	}
	return out
}

type Operation struct{ Base }

var operationMeta = &ClassMeta{
	Name: "Operation",
	Fields: []FieldMeta{
		{Key: "tags"}, {Key: "summary"}, {Key: "description"}, {Key: "operationId"},
		{Key: "consumes"}, {Key: "produces"}, {Key: "schemes"}, {Key: "deprecated", Default: false},
		{Key: "security"},
	},
	Children: []ChildMeta{
		{Key: "externalDocs", Builder: Single(externalDocsMeta)},
		{Key: "parameters", Builder: ListOf(RefOr(Single(parameterMeta)))},
		{Key: "responses", Builder: MapOf(RefOr(Single(responseMeta)))},
	},
	Internal: []InternalMeta{
		{Key: "final_schemes"}, {Key: "final_consumes"}, {Key: "final_produces"},
	},
	New: func() Object { return &Operation{} },
}

func OperationMeta() *ClassMeta { return operationMeta }

func (o *Operation) OperationID() string {
	v, _ := o.Field("operationId")
	s, _ := v.(string)
	return s
}

func (o *Operation) Tags() []string {
	v, _ := o.Field("tags")
	return toStringSlice(v)
}

// ResolveInherited populates final_schemes/final_consumes/final_produces:
// 2.0 lets an Operation omit "schemes"/"consumes"/"produces" to inherit
// the root Swagger's list. Called once during preparation.
func (o *Operation) ResolveInherited(root *Swagger) {
	o.SetInternal("final_schemes", inheritStrings(o, root, "schemes"))
	o.SetInternal("final_consumes", inheritStrings(o, root, "consumes"))
	o.SetInternal("final_produces", inheritStrings(o, root, "produces"))
}

func inheritStrings(o *Operation, root *Swagger, key string) []string {
	if v, ok := o.Field(key); ok {
		if s := toStringSlice(v); len(s) > 0 {
			return s
		}
	}
	v, _ := root.Field(key)
	return toStringSlice(v)
}

func toStringSlice(v interface{}) []string {
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// --- Parameter / Schema / Response / Header / SecurityScheme -----------

type Parameter struct{ Base }

var parameterMeta = &ClassMeta{
	Name: "Parameter",
	Fields: []FieldMeta{
		{Key: "name"}, {Key: "in"}, {Key: "description"},
		{Key: "required", Default: false}, {Key: "type"}, {Key: "format"},
		{Key: "allowEmptyValue", Default: false}, {Key: "collectionFormat"},
		{Key: "default"}, {Key: "enum"}, {Key: "maximum"}, {Key: "minimum"},
	},
	Children: []ChildMeta{
		{Key: "schema", Builder: RefOr(Single(schemaMeta))},
		{Key: "items", Builder: RefOr(Single(schemaMeta))},
	},
	Renamed: []RenamedMeta{
		// "in" is an awkward wire key to surface as a public accessor
		// name (it reads poorly as Parameter.In()); Location() is the
		// friendlier public name the renamed table buys us.
		{Public: "Location", Wire: "in"},
	},
	New: func() Object { return &Parameter{} },
}

func ParameterMeta() *ClassMeta { return parameterMeta }

func (p *Parameter) Name() string { v, _ := p.Field("name"); s, _ := v.(string); return s }
func (p *Parameter) Location() string {
	v, ok := FieldByPublicName(p, "Location")
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

type Schema struct{ Base }

var schemaMeta = &ClassMeta{
	Name: "Schema",
	Fields: []FieldMeta{
		{Key: "format"}, {Key: "title"}, {Key: "description"}, {Key: "default"},
		{Key: "multipleOf"}, {Key: "maximum"}, {Key: "exclusiveMaximum", Default: false},
		{Key: "minimum"}, {Key: "exclusiveMinimum", Default: false},
		{Key: "maxLength"}, {Key: "minLength"}, {Key: "pattern"},
		{Key: "maxItems"}, {Key: "minItems"}, {Key: "uniqueItems", Default: false},
		{Key: "maxProperties"}, {Key: "minProperties"}, {Key: "required"},
		{Key: "enum"}, {Key: "readOnly", Default: false}, {Key: "example"},
		{Key: "discriminator"},
		{
			Key:         "type",
			Normalize:   normalizeStringOrArray,
			Denormalize: denormalizeStringOrArray,
		},
	},
	New: func() Object { return &Schema{} },
}

// Schema's children refer back to schemaMeta itself, which Go rejects
// inside the var literal (initialization cycle); they are installed here
// instead, before any construction can run.
func init() {
	schemaMeta.Children = []ChildMeta{
		{Key: "items", Builder: RefOr(Single(schemaMeta))},
		{Key: "allOf", Builder: ListOf(RefOr(Single(schemaMeta)))},
		{Key: "properties", Builder: MapOf(RefOr(Single(schemaMeta)))},
		{Key: "additionalProperties", Builder: BoolOr(Single(schemaMeta))},
		{Key: "externalDocs", Builder: Single(externalDocsMeta)},
	}
}

func SchemaMeta() *ClassMeta { return schemaMeta }

func (s *Schema) Type() spec.StringOrArray {
	v, _ := s.Field("type")
	t, _ := v.(spec.StringOrArray)
	return t
}

func (s *Schema) Properties() map[string]Object {
	v, _ := s.Child("properties")
	m, _ := v.(map[string]Object)
	return m
}

func (s *Schema) AllOf() []Object {
	v, _ := s.Child("allOf")
	arr, _ := v.([]Object)
	return arr
}

func (s *Schema) Items() (Object, bool) {
	v, ok := s.Child("items")
	if !ok {
		return nil, false
	}
	obj, ok := v.(Object)
	return obj, ok
}

func normalizeStringOrArray(raw interface{}) (interface{}, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var soa spec.StringOrArray
	if err := json.Unmarshal(data, &soa); err != nil {
		return nil, err
	}
	return soa, nil
}

func denormalizeStringOrArray(v interface{}) interface{} {
	soa, ok := v.(spec.StringOrArray)
	if !ok {
		return v
	}
	data, err := json.Marshal(soa)
	if err != nil {
		return v
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

type Response struct{ Base }

var responseMeta = &ClassMeta{
	Name:   "Response",
	Fields: []FieldMeta{{Key: "description"}, {Key: "examples"}},
	Children: []ChildMeta{
		{Key: "schema", Builder: RefOr(Single(schemaMeta))},
		{Key: "headers", Builder: MapOf(Single(headerMeta))},
	},
	New: func() Object { return &Response{} },
}

func ResponseMeta() *ClassMeta { return responseMeta }

type Header struct{ Base }

var headerMeta = &ClassMeta{
	Name: "Header",
	Fields: []FieldMeta{
		{Key: "description"}, {Key: "type"}, {Key: "format"}, {Key: "collectionFormat"},
	},
	Children: []ChildMeta{
		{Key: "items", Builder: RefOr(Single(schemaMeta))},
	},
	New: func() Object { return &Header{} },
}

type SecurityScheme struct{ Base }

var securitySchemeMeta = &ClassMeta{
	Name: "SecurityScheme",
	Fields: []FieldMeta{
		{Key: "type"}, {Key: "description"}, {Key: "name"}, {Key: "in"},
		{Key: "flow"}, {Key: "authorizationUrl"}, {Key: "tokenUrl"}, {Key: "scopes"},
	},
	New: func() Object { return &SecurityScheme{} },
}

func SecuritySchemeMeta() *ClassMeta { return securitySchemeMeta }
