package specmodel

// This file declares the Swagger 1.2 class table. 1.2 splits a document
// across a resource listing and one api-declaration document per
// resource; both are handled as ordinary roots, distinguished only by
// which ClassMeta the fetch/app layer constructs them with.

// --- ResourceListing (index document) -----------------------------------

type ResourceListing struct{ Base }

var resourceListingMeta = &ClassMeta{
	Name:   "ResourceListing",
	Fields: []FieldMeta{{Key: "apiVersion"}, {Key: "swaggerVersion"}},
	Children: []ChildMeta{
		{Key: "apis", Builder: ListOf(Single(apiRefMeta))},
		{Key: "info", Builder: Single(apiInfoMeta)},
		{Key: "authorizations", Builder: MapOf(Single(authorizationMeta))},
	},
	New: func() Object { return &ResourceListing{} },
}

func ResourceListingMeta() *ClassMeta { return resourceListingMeta }

func (r *ResourceListing) Apis() []Object {
	v, _ := r.Child("apis")
	arr, _ := v.([]Object)
	return arr
}

type ApiRef struct{ Base }

var apiRefMeta = &ClassMeta{
	Name:   "ApiRef",
	Fields: []FieldMeta{{Key: "path"}, {Key: "description"}},
	New:    func() Object { return &ApiRef{} },
}

func (a *ApiRef) Path() string { v, _ := a.Field("path"); s, _ := v.(string); return s }

type ApiInfo struct{ Base }

var apiInfoMeta = &ClassMeta{
	Name: "ApiInfo",
	Fields: []FieldMeta{
		{Key: "title"}, {Key: "description"}, {Key: "termsOfServiceUrl"},
		{Key: "contact"}, {Key: "license"}, {Key: "licenseUrl"},
	},
	New: func() Object { return &ApiInfo{} },
}

// --- ApiDeclaration (per-resource document) ------------------------------

type ApiDeclaration struct{ Base }

var apiDeclarationMeta = &ClassMeta{
	Name: "ApiDeclaration",
	Fields: []FieldMeta{
		{Key: "apiVersion"}, {Key: "swaggerVersion"}, {Key: "basePath"},
		{Key: "resourcePath"}, {Key: "produces"}, {Key: "consumes"},
	},
	Children: []ChildMeta{
		{Key: "apis", Builder: ListOf(Single(apiMeta))},
		{Key: "models", Builder: MapOf(Single(modelMeta))},
		{Key: "authorizations", Builder: MapOf(Single(authorizationMeta))},
		{Key: "info", Builder: Single(apiInfoMeta)},
	},
	New: func() Object { return &ApiDeclaration{} },
}

func ApiDeclarationMeta() *ClassMeta { return apiDeclarationMeta }

func (a *ApiDeclaration) ResourcePath() string {
	v, _ := a.Field("resourcePath")
	s, _ := v.(string)
	return s
}

func (a *ApiDeclaration) BasePath() string {
	v, _ := a.Field("basePath")
	s, _ := v.(string)
	return s
}

func (a *ApiDeclaration) Apis() []Object {
	v, _ := a.Child("apis")
	arr, _ := v.([]Object)
	return arr
}

func (a *ApiDeclaration) Models() map[string]Object {
	v, _ := a.Child("models")
	m, _ := v.(map[string]Object)
	return m
}

// --- Api / Operation / Parameter -----------------------------------------

type Api struct{ Base }

var apiMeta = &ClassMeta{
	Name:     "Api",
	Fields:   []FieldMeta{{Key: "path"}, {Key: "description"}},
	Children: []ChildMeta{{Key: "operations", Builder: ListOf(Single(operation12Meta))}},
	New:      func() Object { return &Api{} },
}

func (a *Api) Path() string { v, _ := a.Field("path"); s, _ := v.(string); return s }

func (a *Api) Operations() []Object {
	v, _ := a.Child("operations")
	arr, _ := v.([]Object)
	return arr
}

type Operation12 struct{ Base }

var operation12Meta = &ClassMeta{
	Name: "Operation12",
	Fields: []FieldMeta{
		{Key: "method"}, {Key: "summary"}, {Key: "notes"}, {Key: "nickname"},
		{Key: "type"}, {Key: "format"}, {Key: "produces"}, {Key: "consumes"},
		{Key: "authorizations"}, {Key: "deprecated"},
	},
	Children: []ChildMeta{
		{Key: "parameters", Builder: ListOf(Single(parameter12Meta))},
		{Key: "responseMessages", Builder: ListOf(Single(responseMessageMeta))},
		{Key: "items", Builder: Single(itemsMeta)},
	},
	New: func() Object { return &Operation12{} },
}

func Operation12Meta() *ClassMeta { return operation12Meta }

func (o *Operation12) Method() string { v, _ := o.Field("method"); s, _ := v.(string); return s }
func (o *Operation12) Nickname() string {
	v, _ := o.Field("nickname")
	s, _ := v.(string)
	return s
}

type Parameter12 struct{ Base }

var parameter12Meta = &ClassMeta{
	Name: "Parameter12",
	Fields: []FieldMeta{
		{Key: "paramType"}, {Key: "name"}, {Key: "description"},
		{Key: "required", Default: false}, {Key: "allowMultiple", Default: false},
		{Key: "type"}, {Key: "format"}, {Key: "defaultValue"}, {Key: "enum"},
	},
	Children: []ChildMeta{{Key: "items", Builder: Single(itemsMeta)}},
	Renamed:  []RenamedMeta{{Public: "Location", Wire: "paramType"}},
	New:      func() Object { return &Parameter12{} },
}

func Parameter12Meta() *ClassMeta { return parameter12Meta }

func (p *Parameter12) Name() string { v, _ := p.Field("name"); s, _ := v.(string); return s }

func (p *Parameter12) Location() string {
	v, ok := FieldByPublicName(p, "Location")
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

type ResponseMessage struct{ Base }

var responseMessageMeta = &ClassMeta{
	Name:   "ResponseMessage",
	Fields: []FieldMeta{{Key: "code"}, {Key: "message"}, {Key: "responseModel"}},
	New:    func() Object { return &ResponseMessage{} },
}

// Items is the 1.2 primitive-array descriptor, reused by both Operation12
// and Parameter12 when type == "array" (Swagger 1.2 §4.3.3 Items Object).
type Items struct{ Base }

var itemsMeta = &ClassMeta{
	Name:   "Items",
	Fields: []FieldMeta{{Key: "type"}, {Key: "format"}, {Key: "$ref"}},
	New:    func() Object { return &Items{} },
}

// --- Model / ModelProperty ------------------------------------------------

type Model struct{ Base }

var modelMeta = &ClassMeta{
	Name:   "Model",
	Fields: []FieldMeta{{Key: "id"}, {Key: "description"}, {Key: "required"}, {Key: "subTypes"}, {Key: "discriminator"}},
	Children: []ChildMeta{
		{Key: "properties", Builder: MapOf(Single(modelPropertyMeta))},
	},
	New: func() Object { return &Model{} },
}

func ModelMeta() *ClassMeta { return modelMeta }

func (m *Model) ID() string { v, _ := m.Field("id"); s, _ := v.(string); return s }

func (m *Model) Properties() map[string]Object {
	v, _ := m.Child("properties")
	mm, _ := v.(map[string]Object)
	return mm
}

type ModelProperty struct{ Base }

var modelPropertyMeta = &ClassMeta{
	Name: "ModelProperty",
	Fields: []FieldMeta{
		{Key: "type"}, {Key: "format"}, {Key: "description"},
		{Key: "defaultValue"}, {Key: "enum"}, {Key: "minimum"}, {Key: "maximum"},
		{Key: "uniqueItems", Default: false}, {Key: "$ref"},
	},
	Children: []ChildMeta{{Key: "items", Builder: Single(itemsMeta)}},
	New:      func() Object { return &ModelProperty{} },
}

func ModelPropertyMeta() *ClassMeta { return modelPropertyMeta }

// --- Authorization (1.2 security schemes) ----------------------------------

type Authorization struct{ Base }

var authorizationMeta = &ClassMeta{
	Name: "Authorization",
	Fields: []FieldMeta{
		{Key: "type"}, {Key: "passAs"}, {Key: "keyname"},
	},
	Children: []ChildMeta{
		{Key: "scopes", Builder: ListOf(Single(authScopeMeta))},
		{Key: "grantTypes", Builder: Single(grantTypesMeta)},
	},
	New: func() Object { return &Authorization{} },
}

func AuthorizationMeta() *ClassMeta { return authorizationMeta }

type AuthScope struct{ Base }

var authScopeMeta = &ClassMeta{
	Name:   "AuthScope",
	Fields: []FieldMeta{{Key: "scope"}, {Key: "description"}},
	New:    func() Object { return &AuthScope{} },
}

// GrantTypes groups the two OAuth2 flows Swagger 1.2 allows declaring
// together on one Authorization (Swagger 1.2 §5.1.5 Grant Types Object).
type GrantTypes struct{ Base }

var grantTypesMeta = &ClassMeta{
	Name: "GrantTypes",
	Children: []ChildMeta{
		{Key: "implicit", Builder: Single(implicitGrantMeta)},
		{Key: "authorization_code", Builder: Single(authCodeGrantMeta)},
	},
	New: func() Object { return &GrantTypes{} },
}

type ImplicitGrant struct{ Base }

var implicitGrantMeta = &ClassMeta{
	Name:     "ImplicitGrant",
	Children: []ChildMeta{{Key: "loginEndpoint", Builder: Single(endpointMeta)}},
	Fields:   []FieldMeta{{Key: "tokenName"}},
	New:      func() Object { return &ImplicitGrant{} },
}

type AuthorizationCodeGrant struct{ Base }

var authCodeGrantMeta = &ClassMeta{
	Name: "AuthorizationCodeGrant",
	Children: []ChildMeta{
		{Key: "tokenRequestEndpoint", Builder: Single(tokenRequestEndpointMeta)},
		{Key: "tokenEndpoint", Builder: Single(endpointMeta)},
	},
	New: func() Object { return &AuthorizationCodeGrant{} },
}

// Endpoint backs loginEndpoint and tokenEndpoint (Swagger 1.2 §5.1.7/§5.1.9
// Endpoint Object: a bare url plus an optional tokenName).
type Endpoint struct{ Base }

var endpointMeta = &ClassMeta{
	Name:   "Endpoint",
	Fields: []FieldMeta{{Key: "url"}, {Key: "tokenName"}},
	New:    func() Object { return &Endpoint{} },
}

// TokenRequestEndpoint adds the clientId/clientSecret param names Swagger
// 1.2 §5.1.8 allows renaming on the authorization-code token request.
type TokenRequestEndpoint struct{ Base }

var tokenRequestEndpointMeta = &ClassMeta{
	Name: "TokenRequestEndpoint",
	Fields: []FieldMeta{
		{Key: "url"}, {Key: "clientIdName"}, {Key: "clientSecretName"},
	},
	New: func() Object { return &TokenRequestEndpoint{} },
}
