// Package v12to20 implements the Swagger 1.2 -> 2.0 migrator. Unlike
// the 2.0 -> 3.0.0 migrator, this is a wholesale
// transformer: given a ResourceListing and its referenced
// ApiDeclarations, it builds one untyped Swagger 2.0 tree from scratch
// and constructs a typed root from it. No relocation map is emitted —
// the 1.2 shape is too different from 2.0's for a pointer-for-pointer
// move to mean anything.
package v12to20

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oaspec/oaspec/errdefs"
	"github.com/oaspec/oaspec/specmodel"
)

// Options configures the transform.
type Options struct {
	// ScopeSeparator joins a resource name and a model id into one 2.0
	// definitions key ("Users##user" by default), keeping models from
	// different 1.2 resources that happen to share a model id apart.
	ScopeSeparator string
}

func (o Options) sep() string {
	if o.ScopeSeparator == "" {
		return "##"
	}
	return o.ScopeSeparator
}

// DefinitionKey composes the 2.0 definitions key for a model id declared
// under resource: "<Resource><sep><ModelId>", the name under
// "#/definitions/" (without that pointer prefix).
func DefinitionKey(resource, modelID, sep string) string {
	return resource + sep + modelID
}

// Migrate builds a typed Swagger 2.0 root from listing and its resolved
// per-resource declarations (keyed by each ApiDeclaration.ResourcePath();
// the keys only fix the processing order). listing may be nil.
func Migrate(listing *specmodel.ResourceListing, declarations map[string]*specmodel.ApiDeclaration, rootURL string, opts Options) (*specmodel.Swagger, error) {
	sep := opts.sep()

	logrus.WithFields(logrus.Fields{"url": rootURL, "resources": len(declarations)}).Debug("migrate: building swagger 2.0 document")

	tree := map[string]interface{}{
		"swagger":             "2.0",
		"paths":               map[string]interface{}{},
		"definitions":         map[string]interface{}{},
		"securityDefinitions": map[string]interface{}{},
	}
	if info := buildInfo(listing); info != nil {
		tree["info"] = info
	} else {
		tree["info"] = map[string]interface{}{"title": "", "version": ""}
	}

	var tags []interface{}
	paths := tree["paths"].(map[string]interface{})
	defs := tree["definitions"].(map[string]interface{})
	secDefs := tree["securityDefinitions"].(map[string]interface{})

	resources := sortedResourceKeys(declarations)
	for _, resource := range resources {
		decl := declarations[resource]
		tagName := strings.TrimPrefix(decl.ResourcePath(), "/")
		tags = append(tags, map[string]interface{}{"name": tagName})

		basePath := decl.BasePath()
		for _, apiObj := range decl.Apis() {
			api, ok := apiObj.(*specmodel.Api)
			if !ok {
				continue
			}
			fullPath := basePath + api.Path()
			pathItem, ok := paths[fullPath].(map[string]interface{})
			if !ok {
				pathItem = map[string]interface{}{}
			}
			for _, opObj := range api.Operations() {
				op, ok := opObj.(*specmodel.Operation12)
				if !ok {
					continue
				}
				method := strings.ToLower(op.Method())
				opMap, err := convertOperation(op, tagName, sep)
				if err != nil {
					return nil, err
				}
				pathItem[method] = opMap
			}
			paths[fullPath] = pathItem
		}

		for _, modelID := range sortedModelKeys(decl.Models()) {
			model := decl.Models()[modelID].(*specmodel.Model)
			convertModelInto(defs, tagName, modelID, model, sep)
		}

		if rawAuths, ok := decl.Child("authorizations"); ok {
			if auths, ok := rawAuths.(map[string]Object); ok {
				for name, auth := range auths {
					secDefs[name] = convertAuthorization(auth.(*specmodel.Authorization))
				}
			}
		}
	}

	if len(tags) > 0 {
		tree["tags"] = tags
	}

	fixupHostAndBasePath(tree)

	root, err := specmodel.Construct(specmodel.SwaggerMeta(), tree, rootURL, specmodel.V2_0)
	if err != nil {
		return nil, errdefs.Schema(err)
	}
	return root.(*specmodel.Swagger), nil
}

// Object is a shorthand alias for specmodel.Object, used in this file's
// type assertions for readability only.
type Object = specmodel.Object

func buildInfo(listing *specmodel.ResourceListing) map[string]interface{} {
	if listing == nil {
		return nil
	}
	rawInfo, ok := listing.Child("info")
	if !ok {
		return nil
	}
	info, ok := rawInfo.(*specmodel.ApiInfo)
	if !ok {
		return nil
	}
	out := map[string]interface{}{}
	if v, ok := info.Field("title"); ok {
		out["title"] = v
	}
	if v, ok := info.Field("description"); ok {
		out["description"] = v
	}
	apiVersion, _ := listing.Field("apiVersion")
	out["version"] = apiVersion
	if out["title"] == nil {
		out["title"] = ""
	}
	return out
}

func convertOperation(op *specmodel.Operation12, tag, sep string) (map[string]interface{}, error) {
	out := map[string]interface{}{
		"tags": []interface{}{tag},
	}
	if v, ok := op.Field("nickname"); ok {
		out["operationId"] = v
	}
	if v, ok := op.Field("summary"); ok {
		out["summary"] = v
	}
	if v, ok := op.Field("notes"); ok {
		out["description"] = v
	}
	if v, ok := op.Field("produces"); ok {
		out["produces"] = v
	}
	if v, ok := op.Field("consumes"); ok {
		out["consumes"] = v
	}

	var params []interface{}
	rawParams, _ := op.Child("parameters")
	if arr, ok := rawParams.([]Object); ok {
		for _, p := range arr {
			param, ok := p.(*specmodel.Parameter12)
			if !ok {
				continue
			}
			converted, err := convertParameter(param, tag, sep)
			if err != nil {
				return nil, err
			}
			params = append(params, converted)
		}
	}
	if len(params) > 0 {
		out["parameters"] = params
	}

	responses := map[string]interface{}{"200": map[string]interface{}{"description": "success"}}
	rawMessages, _ := op.Child("responseMessages")
	if arr, ok := rawMessages.([]Object); ok {
		for _, m := range arr {
			msg, ok := m.(*specmodel.ResponseMessage)
			if !ok {
				continue
			}
			code, _ := msg.Field("code")
			message, _ := msg.Field("message")
			responses[fmt.Sprint(code)] = map[string]interface{}{"description": message}
		}
	}
	out["responses"] = responses
	return out, nil
}

// convert12ParamType maps a 1.2 paramType onto its 2.0 "in" value; only
// "form" is spelled differently ("formData").
func convert12ParamType(paramType string) string {
	if paramType == "form" {
		return "formData"
	}
	return paramType
}

func convertParameter(p *specmodel.Parameter12, tag, sep string) (map[string]interface{}, error) {
	paramType := p.Location()
	out := map[string]interface{}{
		"name": fieldOr(p, "name", ""),
		"in":   convert12ParamType(paramType),
	}
	if v, ok := p.Field("description"); ok {
		out["description"] = v
	}
	if v, ok := p.Field("required"); ok {
		out["required"] = v
	}

	if paramType == "body" {
		ref, _ := p.Field("type")
		out["schema"] = map[string]interface{}{"$ref": fmt.Sprintf("#/definitions/%s", refAsDefinition(fmt.Sprint(ref), tag, sep))}
		return out, nil
	}

	if v, ok := p.Field("type"); ok {
		out["type"] = v
	}
	if v, ok := p.Field("format"); ok {
		out["format"] = v
	}
	if v, ok := p.Field("defaultValue"); ok {
		out["default"] = v
	}
	if v, ok := p.Field("enum"); ok {
		out["enum"] = v
	}
	if items, ok := p.Child("items"); ok {
		if it, ok := items.(*specmodel.Items); ok {
			out["items"] = convertItems(it, tag, sep)
			out["collectionFormat"] = "csv"
		}
	}
	return out, nil
}

func convertItems(it *specmodel.Items, tag, sep string) map[string]interface{} {
	out := map[string]interface{}{}
	if v, ok := it.Field("type"); ok {
		out["type"] = v
	}
	if v, ok := it.Field("format"); ok {
		out["format"] = v
	}
	if v, ok := it.Field("$ref"); ok {
		out["$ref"] = fmt.Sprintf("#/definitions/%s", refAsDefinition(fmt.Sprint(v), tag, sep))
	}
	return out
}

// refAsDefinition resolves a bare 1.2 model id (as found in a "$ref" or
// body-parameter "type") to its scoped 2.0 definitions key. A 1.2
// document refers to models only by bare id, always within the
// declaration's own resource scope.
func refAsDefinition(modelID, tag, sep string) string {
	return DefinitionKey(tag, modelID, sep)
}

func convertModelInto(defs map[string]interface{}, resource, modelID string, model *specmodel.Model, sep string) {
	key := DefinitionKey(resource, modelID, sep)
	schema := map[string]interface{}{"type": "object"}

	props := map[string]interface{}{}
	for name, propObj := range model.Properties() {
		prop, ok := propObj.(*specmodel.ModelProperty)
		if !ok {
			continue
		}
		props[name] = convertModelProperty(prop, resource, sep)
	}
	if len(props) > 0 {
		schema["properties"] = props
	}
	if v, ok := model.Field("required"); ok {
		schema["required"] = v
	}
	if v, ok := model.Field("discriminator"); ok {
		schema["discriminator"] = v
	}

	if rawSubTypes, ok := model.Field("subTypes"); ok {
		if arr, ok := rawSubTypes.([]interface{}); ok {
			for _, st := range arr {
				subID := fmt.Sprint(st)
				subKey := DefinitionKey(resource, subID, sep)
				defs[subKey] = map[string]interface{}{
					"allOf": []interface{}{
						map[string]interface{}{"$ref": "#/definitions/" + key},
					},
				}
			}
		}
	}

	defs[key] = schema
}

func convertModelProperty(p *specmodel.ModelProperty, resource, sep string) map[string]interface{} {
	if ref, ok := p.Field("$ref"); ok {
		return map[string]interface{}{"$ref": "#/definitions/" + refAsDefinition(fmt.Sprint(ref), resource, sep)}
	}
	out := map[string]interface{}{}
	if v, ok := p.Field("type"); ok {
		out["type"] = v
	}
	if v, ok := p.Field("format"); ok {
		out["format"] = v
	}
	if v, ok := p.Field("description"); ok {
		out["description"] = v
	}
	if v, ok := p.Field("defaultValue"); ok {
		out["default"] = v
	}
	if v, ok := p.Field("enum"); ok {
		out["enum"] = v
	}
	if v, ok := p.Field("minimum"); ok {
		out["minimum"] = v
	}
	if v, ok := p.Field("maximum"); ok {
		out["maximum"] = v
	}
	if items, ok := p.Child("items"); ok {
		if it, ok := items.(*specmodel.Items); ok {
			out["items"] = convertItems(it, resource, sep)
		}
	}
	return out
}

// convertAuthorization maps a 1.2 Authorization onto a 2.0 security
// definition: basicAuth -> basic, apiKey's passAs stored in "in",
// oauth2 grant types reduced to a single flow preferring implicit over
// authorization_code.
func convertAuthorization(auth *specmodel.Authorization) map[string]interface{} {
	typ, _ := auth.Field("type")
	switch fmt.Sprint(typ) {
	case "basicAuth":
		return map[string]interface{}{"type": "basic"}
	case "apiKey":
		name, _ := auth.Field("keyname")
		passAs, _ := auth.Field("passAs")
		return map[string]interface{}{"type": "apiKey", "name": name, "in": passAs}
	case "oauth2":
		return convertOAuth2(auth)
	default:
		return map[string]interface{}{"type": typ}
	}
}

func convertOAuth2(auth *specmodel.Authorization) map[string]interface{} {
	out := map[string]interface{}{"type": "oauth2"}

	scopes := map[string]interface{}{}
	if rawScopes, ok := auth.Child("scopes"); ok {
		if arr, ok := rawScopes.([]Object); ok {
			for _, s := range arr {
				scope, ok := s.(*specmodel.AuthScope)
				if !ok {
					continue
				}
				name, _ := scope.Field("scope")
				desc, _ := scope.Field("description")
				scopes[fmt.Sprint(name)] = desc
			}
		}
	}
	out["scopes"] = scopes

	grantsObj, ok := auth.Child("grantTypes")
	if !ok {
		return out
	}
	grants, ok := grantsObj.(*specmodel.GrantTypes)
	if !ok {
		return out
	}

	if implicitObj, ok := grants.Child("implicit"); ok {
		if implicit, ok := implicitObj.(*specmodel.ImplicitGrant); ok {
			out["flow"] = "implicit"
			if loginObj, ok := implicit.Child("loginEndpoint"); ok {
				if login, ok := loginObj.(*specmodel.Endpoint); ok {
					url, _ := login.Field("url")
					out["authorizationUrl"] = url
				}
			}
			return out
		}
	}

	if codeObj, ok := grants.Child("authorization_code"); ok {
		if code, ok := codeObj.(*specmodel.AuthorizationCodeGrant); ok {
			out["flow"] = "accessCode"
			if reqObj, ok := code.Child("tokenRequestEndpoint"); ok {
				if req, ok := reqObj.(*specmodel.TokenRequestEndpoint); ok {
					url, _ := req.Field("url")
					out["authorizationUrl"] = url
				}
			}
			if tokObj, ok := code.Child("tokenEndpoint"); ok {
				if tok, ok := tokObj.(*specmodel.Endpoint); ok {
					url, _ := tok.Field("url")
					out["tokenUrl"] = url
				}
			}
		}
	}
	return out
}

// fixupHostAndBasePath extracts the longest common URL prefix across
// every path key and hoists it to "host"/"basePath", leaving each path
// key rooted at "/".
func fixupHostAndBasePath(tree map[string]interface{}) {
	paths, ok := tree["paths"].(map[string]interface{})
	if !ok || len(paths) == 0 {
		return
	}
	keys := make([]string, 0, len(paths))
	for k := range paths {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	hasURLPrefix := strings.Contains(keys[0], "://")
	if !hasURLPrefix {
		return
	}

	prefix := commonPrefix(keys)
	u := strings.SplitN(strings.TrimPrefix(strings.TrimPrefix(prefix, "https://"), "http://"), "/", 2)
	host := u[0]
	basePath := ""
	if len(u) > 1 {
		basePath = "/" + strings.TrimSuffix(u[1], "/")
	}

	newPaths := map[string]interface{}{}
	for _, k := range keys {
		rest := strings.TrimPrefix(k, prefix)
		if !strings.HasPrefix(rest, "/") {
			rest = "/" + rest
		}
		newPaths[rest] = paths[k]
	}
	tree["paths"] = newPaths
	tree["host"] = host
	if basePath != "" {
		tree["basePath"] = basePath
	}
}

func commonPrefix(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	prefix := keys[0]
	for _, k := range keys[1:] {
		prefix = commonOf(prefix, k)
	}
	if idx := strings.LastIndex(prefix, "/"); idx >= 0 {
		prefix = prefix[:idx+1]
	}
	return prefix
}

func commonOf(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

func sortedResourceKeys(m map[string]*specmodel.ApiDeclaration) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedModelKeys(m map[string]specmodel.Object) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fieldOr(o specmodel.Object, key string, def interface{}) interface{} {
	type fielder interface {
		Field(string) (interface{}, bool)
	}
	f, ok := o.(fielder)
	if !ok {
		return def
	}
	if v, ok := f.Field(key); ok {
		return v
	}
	return def
}
