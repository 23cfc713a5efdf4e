// Package v20to30 implements the Swagger 2.0 -> OpenAPI 3.0.0 migrator:
// a per-node converter plus relocation emission, driven by a fixed
// pipeline (convert, normalize refs, cache partial root, resolve refs,
// merge path-items, patch objects).
package v20to30

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oaspec/oaspec/cache"
	"github.com/oaspec/oaspec/errdefs"
	"github.com/oaspec/oaspec/jsonref"
	"github.com/oaspec/oaspec/resolver"
	"github.com/oaspec/oaspec/scanner"
	"github.com/oaspec/oaspec/specmodel"
)

// Migrate runs the full six-phase pipeline against swagger, producing a
// typed OpenAPI 3.0.0 root. c and reloc are the App's shared cache and
// relocation map: step 1 seeds the new root's override map from
// previously prepared sub-objects (GetUnder with no removal) and
// deposits this migration's relocation entries. loader supplies any
// external document a "$ref" in swagger reaches during the resolve
// phase; nil is acceptable for self-contained documents.
func Migrate(swagger *specmodel.Swagger, rootURL string, c *cache.ObjCache, reloc *cache.Relocations, loader resolver.Loader) (*specmodel.OpenAPI, error) {
	logrus.WithField("url", rootURL).Debug("migrate: converting swagger 2.0 document to openapi 3.0.0")

	tree, rewrites := convertRoot(swagger)

	overrides := seedOverrides(c, rootURL)
	rootObj, err := specmodel.ConstructWithOverrides(specmodel.OpenAPIMeta(), tree, rootURL, specmodel.V3_0_0, overrides)
	if err != nil {
		return nil, errdefs.Schema(err)
	}
	openapi := rootObj.(*specmodel.OpenAPI)

	reloc.AddStep(rootURL, specmodel.V3_0_0, rewrites)

	if err := resolver.NormalizeRefs(openapi, rootURL); err != nil {
		return nil, err
	}
	if err := relocateSameDocumentRefs(openapi, rootURL, reloc); err != nil {
		return nil, err
	}

	partialKey := cache.Key{URL: rootURL, Pointer: jsonref.RootPointer(), Version: specmodel.V3_0_0}
	c.Put(partialKey, openapi)

	r := resolver.New(c, loader)
	r.Reloc = reloc
	if err := r.ResolveRefs(openapi, specmodel.V3_0_0); err != nil {
		return nil, err
	}

	mergePathItems(openapi)
	patchObjects(openapi)

	c.Put(partialKey, openapi)
	return openapi, nil
}

// seedOverrides pulls every sub-object already cached under rootURL at
// 3.0.0 (deposited by an earlier partial migration of the same
// document, e.g. while resolving an external cross-reference back into
// it) so convertRoot's reconstruction does not discard that work.
func seedOverrides(c *cache.ObjCache, rootURL string) specmodel.OverrideMap {
	under := c.GetUnder(cache.Key{URL: rootURL, Pointer: jsonref.RootPointer(), Version: specmodel.V3_0_0})
	if len(under) == 0 {
		return nil
	}
	overrides := specmodel.OverrideMap{}
	for ptr, obj := range under {
		overrides[ptr] = obj
	}
	return overrides
}

// convertRoot builds the 3.0.0 untyped tree from a typed 2.0 Swagger
// root, and records where each relocatable top-level container moved
// to.
func convertRoot(swagger *specmodel.Swagger) (map[string]interface{}, map[string]string) {
	rewrites := map[string]string{}
	tree := map[string]interface{}{"openapi": "3.0.0"}

	if rawInfo, ok := swagger.Child("info"); ok {
		tree["info"] = specmodel.Dump(rawInfo.(specmodel.Object))
	}
	if rawTags, ok := swagger.Child("tags"); ok {
		tree["tags"] = dumpList(rawTags)
	}
	if rawExtDocs, ok := swagger.Child("externalDocs"); ok {
		tree["externalDocs"] = specmodel.Dump(rawExtDocs.(specmodel.Object))
	}
	if host, ok := swagger.Field("host"); ok {
		if bp, ok2 := swagger.Field("basePath"); ok2 {
			tree["servers"] = []interface{}{map[string]interface{}{"url": fmt.Sprint(host) + fmt.Sprint(bp)}}
		} else {
			tree["servers"] = []interface{}{map[string]interface{}{"url": fmt.Sprint(host)}}
		}
	}

	paths := map[string]interface{}{}
	for key, obj := range swagger.Paths() {
		paths[key] = convertPathItem(obj)
	}
	tree["paths"] = paths

	components := map[string]interface{}{}
	schemas := map[string]interface{}{}
	for key, obj := range swagger.Definitions() {
		schemas[key] = specmodel.Dump(obj)
		rewrites["#/definitions/"+key] = "#/components/schemas/" + key
	}
	if len(schemas) > 0 {
		components["schemas"] = schemas
	}

	if rawParams, ok := swagger.Child("parameters"); ok {
		if m, ok := rawParams.(map[string]specmodel.Object); ok && len(m) > 0 {
			out := map[string]interface{}{}
			for key, obj := range m {
				out[key] = specmodel.Dump(obj)
				rewrites["#/parameters/"+key] = "#/components/parameters/" + key
			}
			components["parameters"] = out
		}
	}
	if rawResponses, ok := swagger.Child("responses"); ok {
		if m, ok := rawResponses.(map[string]specmodel.Object); ok && len(m) > 0 {
			out := map[string]interface{}{}
			for key, obj := range m {
				out[key] = convertResponse(obj)
				rewrites["#/responses/"+key] = "#/components/responses/" + key
			}
			components["responses"] = out
		}
	}
	if rawSec, ok := swagger.Child("securityDefinitions"); ok {
		if m, ok := rawSec.(map[string]specmodel.Object); ok && len(m) > 0 {
			out := map[string]interface{}{}
			for key, obj := range m {
				out[key] = convertSecurityScheme(obj.(*specmodel.SecurityScheme))
				rewrites["#/securityDefinitions/"+key] = "#/components/securitySchemes/" + key
			}
			components["securitySchemes"] = out
		}
	}
	if len(components) > 0 {
		tree["components"] = components
	}

	if sec, ok := swagger.Field("security"); ok {
		tree["security"] = sec
	}

	return tree, rewrites
}

func dumpList(raw interface{}) []interface{} {
	arr, ok := raw.([]specmodel.Object)
	if !ok {
		return nil
	}
	out := make([]interface{}, len(arr))
	for i, o := range arr {
		out[i] = specmodel.Dump(o)
	}
	return out
}

func convertPathItem(obj specmodel.Object) map[string]interface{} {
	pathItem, ok := obj.(*specmodel.PathItem)
	if !ok {
		// Already a Reference (unusual for 2.0, but the builder allows it):
		// dump through unchanged, it is resolved/merged in later phases.
		return specmodel.Dump(obj)
	}
	out := map[string]interface{}{}
	for method, op := range pathItem.Operations() {
		out[method] = convertOperation(op)
	}
	if rawParams, ok := pathItem.Child("parameters"); ok {
		out["parameters"] = dumpList(rawParams)
	}
	return out
}

func convertOperation(op *specmodel.Operation) map[string]interface{} {
	out := map[string]interface{}{}
	for _, key := range []string{"tags", "summary", "description", "operationId", "deprecated", "security"} {
		if v, ok := op.Field(key); ok {
			out[key] = v
		}
	}
	if rawExtDocs, ok := op.Child("externalDocs"); ok {
		out["externalDocs"] = specmodel.Dump(rawExtDocs.(specmodel.Object))
	}

	var bodyParam *specmodel.Parameter
	var otherParams []interface{}
	if rawParams, ok := op.Child("parameters"); ok {
		if arr, ok := rawParams.([]specmodel.Object); ok {
			for _, p := range arr {
				param, ok := p.(*specmodel.Parameter)
				if !ok {
					otherParams = append(otherParams, specmodel.Dump(p))
					continue
				}
				if param.Location() == "body" {
					bodyParam = param
					continue
				}
				otherParams = append(otherParams, convertParameter(param))
			}
		}
	}
	if len(otherParams) > 0 {
		out["parameters"] = otherParams
	}
	if bodyParam != nil {
		out["requestBody"] = convertBodyParameter(bodyParam, op)
	}

	responses := map[string]interface{}{}
	if rawResponses, ok := op.Child("responses"); ok {
		if m, ok := rawResponses.(map[string]specmodel.Object); ok {
			for code, r := range m {
				responses[code] = convertResponseForOperation(r, op)
			}
		}
	}
	out["responses"] = responses
	return out
}

// requestMediaTypesFor picks the media types a converted requestBody
// keys its content by: the operation's own "consumes" list, or
// application/json when none is declared.
func requestMediaTypesFor(op *specmodel.Operation) []string {
	if v, ok := op.Field("consumes"); ok {
		if s := toStrings(v); len(s) > 0 {
			return s
		}
	}
	return []string{"application/json"}
}

// responseMediaTypesFor is requestMediaTypesFor's counterpart for
// converted response content, driven by "produces".
func responseMediaTypesFor(op *specmodel.Operation) []string {
	if v, ok := op.Field("produces"); ok {
		if s := toStrings(v); len(s) > 0 {
			return s
		}
	}
	return []string{"application/json"}
}

func toStrings(v interface{}) []string {
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

func convertParameter(p *specmodel.Parameter) map[string]interface{} {
	out := map[string]interface{}{}
	for _, key := range []string{"name", "in", "description", "required"} {
		if v, ok := p.Field(key); ok {
			out[key] = v
		}
	}
	if schema, ok := schemaFromParameter(p); ok {
		out["schema"] = schema
	}
	return out
}

func schemaFromParameter(p *specmodel.Parameter) (map[string]interface{}, bool) {
	schema := map[string]interface{}{}
	has := false
	for _, key := range []string{"type", "format", "default", "enum", "maximum", "minimum"} {
		if v, ok := p.Field(key); ok {
			schema[key] = v
			has = true
		}
	}
	if items, ok := p.Child("items"); ok {
		schema["items"] = specmodel.Dump(items.(specmodel.Object))
		has = true
	}
	return schema, has
}

func convertBodyParameter(p *specmodel.Parameter, op *specmodel.Operation) map[string]interface{} {
	content := map[string]interface{}{}
	var schema interface{}
	if s, ok := p.Child("schema"); ok {
		schema = specmodel.Dump(s.(specmodel.Object))
	}
	for _, mt := range requestMediaTypesFor(op) {
		entry := map[string]interface{}{}
		if schema != nil {
			entry["schema"] = schema
		}
		content[mt] = entry
	}
	out := map[string]interface{}{"content": content}
	if req, ok := p.Field("required"); ok {
		out["required"] = req
	}
	if desc, ok := p.Field("description"); ok {
		out["description"] = desc
	}
	return out
}

func convertResponse(obj specmodel.Object) map[string]interface{} {
	resp, ok := obj.(*specmodel.Response)
	if !ok {
		return specmodel.Dump(obj)
	}
	out := map[string]interface{}{}
	if desc, ok := resp.Field("description"); ok {
		out["description"] = desc
	}
	if headers, ok := resp.Child("headers"); ok {
		if m, ok := headers.(map[string]specmodel.Object); ok && len(m) > 0 {
			hout := map[string]interface{}{}
			for k, h := range m {
				hout[k] = specmodel.Dump(h)
			}
			out["headers"] = hout
		}
	}
	if schema, ok := resp.Child("schema"); ok {
		out["content"] = map[string]interface{}{
			"application/json": map[string]interface{}{"schema": specmodel.Dump(schema.(specmodel.Object))},
		}
	}
	return out
}

func convertResponseForOperation(obj specmodel.Object, op *specmodel.Operation) map[string]interface{} {
	resp, ok := obj.(*specmodel.Response)
	if !ok {
		return specmodel.Dump(obj)
	}
	out := map[string]interface{}{}
	if desc, ok := resp.Field("description"); ok {
		out["description"] = desc
	}
	if schema, ok := resp.Child("schema"); ok {
		content := map[string]interface{}{}
		for _, mt := range responseMediaTypesFor(op) {
			content[mt] = map[string]interface{}{"schema": specmodel.Dump(schema.(specmodel.Object))}
		}
		out["content"] = content
	}
	return out
}

func convertSecurityScheme(s *specmodel.SecurityScheme) map[string]interface{} {
	typ, _ := s.Field("type")
	switch fmt.Sprint(typ) {
	case "basic":
		return map[string]interface{}{"type": "http", "scheme": "basic"}
	case "apiKey":
		out := map[string]interface{}{"type": "apiKey"}
		if v, ok := s.Field("name"); ok {
			out["name"] = v
		}
		if v, ok := s.Field("in"); ok {
			out["in"] = v
		}
		return out
	case "oauth2":
		flow, _ := s.Field("flow")
		flowObj := map[string]interface{}{}
		if v, ok := s.Field("authorizationUrl"); ok {
			flowObj["authorizationUrl"] = v
		}
		if v, ok := s.Field("tokenUrl"); ok {
			flowObj["tokenUrl"] = v
		}
		if v, ok := s.Field("scopes"); ok {
			flowObj["scopes"] = v
		}
		flows := map[string]interface{}{}
		switch fmt.Sprint(flow) {
		case "implicit":
			flows["implicit"] = flowObj
		case "accessCode":
			flows["authorizationCode"] = flowObj
		case "password":
			flows["password"] = flowObj
		case "application":
			flows["clientCredentials"] = flowObj
		}
		return map[string]interface{}{"type": "oauth2", "flows": flows}
	default:
		return map[string]interface{}{"type": typ}
	}
}

var referenceType = scanner.TypeOf[*specmodel.Reference]()

// relocateSameDocumentRefs rewrites every normalized $ref that targets
// rootURL itself through this migration's relocation map, so a
// reference minted against the pre-migration document (e.g.
// "#/definitions/Pet") resolves against where that node actually lives
// in the migrated tree ("#/components/schemas/Pet"). Cross-document
// refs are left untouched: their relocation, if any, belongs to the
// target document's own migration pass.
func relocateSameDocumentRefs(root specmodel.Object, rootURL string, reloc *cache.Relocations) error {
	route := scanner.NewRoute(scanner.Visitor{
		Name:       "relocate-same-document-ref",
		ExactTypes: []reflect.Type{referenceType},
		Handle: func(ptr jsonref.Pointer, node specmodel.Object, app interface{}) (scanner.VisitAction, error) {
			ref := node.(*specmodel.Reference)
			normalized, ok := ref.NormalizedRef()
			if !ok {
				return scanner.Continue, nil
			}
			if !strings.HasPrefix(normalized, rootURL+"#") {
				return scanner.Continue, nil
			}
			pointerPart := strings.TrimPrefix(normalized, rootURL)
			relocated := reloc.Resolve(rootURL, specmodel.V3_0_0, jsonref.SplitPointer(pointerPart))
			ref.SetNormalizedRef(rootURL + relocated.String())
			return scanner.Continue, nil
		},
	})
	s := scanner.NewSnapshotting(scanner.Options{})
	err := s.Walk(root, route, nil)
	if err != nil && !scanner.IsStop(err) {
		return err
	}
	return nil
}

// mergePathItems inlines any $ref PathItem by installing its resolved
// target in the referring PathItem slot.
func mergePathItems(openapi *specmodel.OpenAPI) {
	paths, ok := openapi.Child("paths")
	if !ok {
		return
	}
	m, ok := paths.(map[string]specmodel.Object)
	if !ok {
		return
	}
	for key, obj := range m {
		ref, ok := obj.(*specmodel.Reference)
		if !ok {
			continue
		}
		target, ok := ref.RefObj()
		if !ok {
			continue
		}
		m[key] = target
	}
}

// patchObjects is the pipeline's final hook for rewriting legacy
// per-object peculiarities that survive the node-by-node conversion.
// It makes no changes. convertParameter drops 2.0's collectionFormat
// ("csv"/"multi"/...), and no 3.0.0 "style" or "explode" value is
// derived from it, so a migrated parameter carries neither.
func patchObjects(openapi *specmodel.OpenAPI) {}
