package specmodel_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"

	"github.com/oaspec/oaspec/jsonref"
	"github.com/oaspec/oaspec/specmodel"
)

func buildSwagger(t *testing.T, raw map[string]interface{}) *specmodel.Swagger {
	t.Helper()
	obj, err := specmodel.Construct(specmodel.SwaggerMeta(), raw, "file:///spec.json", specmodel.V2_0)
	require.NoError(t, err)
	return obj.(*specmodel.Swagger)
}

func TestConstructCopiesFieldsAndBuildsChildren(t *testing.T) {
	swagger := buildSwagger(t, map[string]interface{}{
		"swagger":  "2.0",
		"host":     "api.example.com",
		"basePath": "/v1",
		"info":     map[string]interface{}{"title": "pets", "version": "1.0"},
		"definitions": map[string]interface{}{
			"Pet": map[string]interface{}{"type": "object"},
		},
	})

	assert.Equal(t, swagger.Host(), "api.example.com")
	assert.Equal(t, swagger.BasePath(), "/v1")

	rawInfo, ok := swagger.Child("info")
	assert.Assert(t, ok)
	info := rawInfo.(*specmodel.Info)
	title, _ := info.Field("title")
	assert.Equal(t, title, "pets")

	pet, ok := swagger.Definitions()["Pet"]
	assert.Assert(t, ok)
	assert.Equal(t, pet.Meta().Name, "Schema")
}

func TestConstructAssignsStableIdentity(t *testing.T) {
	swagger := buildSwagger(t, map[string]interface{}{
		"definitions": map[string]interface{}{
			"Pet": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{"type": "string"},
				},
			},
		},
	})

	assert.Equal(t, swagger.Identity().URL, "file:///spec.json")
	assert.Equal(t, swagger.Identity().Pointer.String(), "#")

	pet := swagger.Definitions()["Pet"]
	assert.Equal(t, pet.Identity().Pointer.String(), "#/definitions/Pet")

	name := pet.(*specmodel.Schema).Properties()["name"]
	assert.Equal(t, name.Identity().Pointer.String(), "#/definitions/Pet/properties/name")
	assert.Equal(t, name.Identity().URL, "file:///spec.json")
}

func TestConstructIgnoresUnknownKeysAndKeepsExtensions(t *testing.T) {
	swagger := buildSwagger(t, map[string]interface{}{
		"info":         map[string]interface{}{"title": "t", "version": "1"},
		"x-internal":   true,
		"notAWireKey":  "ignored",
		"definitions":  map[string]interface{}{},
		"x-go-package": "pets",
	})

	ext, ok := swagger.Extension("x-internal")
	assert.Assert(t, ok)
	assert.Equal(t, ext, true)

	_, ok = swagger.Field("notAWireKey")
	assert.Assert(t, !ok)

	dumped := specmodel.Dump(swagger)
	assert.Equal(t, dumped["x-go-package"], "pets")
	_, ok = dumped["notAWireKey"]
	assert.Assert(t, !ok)
}

func TestConstructRefOrBuildsReference(t *testing.T) {
	swagger := buildSwagger(t, map[string]interface{}{
		"definitions": map[string]interface{}{
			"Pet": map[string]interface{}{
				"properties": map[string]interface{}{
					"owner": map[string]interface{}{"$ref": "#/definitions/Owner"},
					"name":  map[string]interface{}{"type": "string"},
				},
			},
		},
	})

	props := swagger.Definitions()["Pet"].(*specmodel.Schema).Properties()
	ref, ok := props["owner"].(*specmodel.Reference)
	assert.Assert(t, ok)
	assert.Equal(t, ref.Ref(), "#/definitions/Owner")

	_, ok = props["name"].(*specmodel.Schema)
	assert.Assert(t, ok)
}

func TestConstructBoolOrPassesBoolThrough(t *testing.T) {
	swagger := buildSwagger(t, map[string]interface{}{
		"definitions": map[string]interface{}{
			"Open":   map[string]interface{}{"additionalProperties": true},
			"Strict": map[string]interface{}{"additionalProperties": map[string]interface{}{"type": "string"}},
		},
	})

	open := swagger.Definitions()["Open"]
	v, ok := open.(*specmodel.Schema).Child("additionalProperties")
	assert.Assert(t, ok)
	assert.Equal(t, v, true)

	strict := swagger.Definitions()["Strict"]
	v, ok = strict.(*specmodel.Schema).Child("additionalProperties")
	assert.Assert(t, ok)
	_, ok = v.(*specmodel.Schema)
	assert.Assert(t, ok)
}

func TestConstructOverrideInstallsPreparedObject(t *testing.T) {
	prepared, err := specmodel.Construct(specmodel.SchemaMeta(), map[string]interface{}{"type": "object"}, "file:///spec.json", specmodel.V2_0)
	require.NoError(t, err)

	overrides := specmodel.OverrideMap{"#/definitions/Pet": prepared}
	obj, err := specmodel.ConstructWithOverrides(specmodel.SwaggerMeta(), map[string]interface{}{
		"definitions": map[string]interface{}{
			// Deliberately different from the prepared object: the override
			// must win without this tree ever being constructed.
			"Pet": map[string]interface{}{"type": "string"},
		},
	}, "file:///spec.json", specmodel.V2_0, overrides)
	require.NoError(t, err)

	got := obj.(*specmodel.Swagger).Definitions()["Pet"]
	assert.Assert(t, got == prepared)
}

func TestResolveDescendsChildrenFieldsAndInternals(t *testing.T) {
	swagger := buildSwagger(t, map[string]interface{}{
		"host": "api.example.com",
		"info": map[string]interface{}{"title": "t", "version": "1"},
		"paths": map[string]interface{}{
			"/pets": map[string]interface{}{
				"get": map[string]interface{}{
					"operationId": "listPets",
					"parameters": []interface{}{
						map[string]interface{}{"name": "limit", "in": "query", "type": "integer"},
					},
				},
			},
		},
	})

	node, ok := specmodel.Resolve(swagger, jsonref.SplitPointer("#/paths/~1pets/get/parameters/0"))
	assert.Assert(t, ok)
	param := node.(*specmodel.Parameter)
	assert.Equal(t, param.Name(), "limit")

	// Field lookup comes after children in the descent order.
	node, ok = specmodel.Resolve(swagger, jsonref.SplitPointer("#/host"))
	assert.Assert(t, ok)
	assert.Equal(t, node, "api.example.com")

	// Internal attributes are the last fallback.
	op, _ := specmodel.ResolveObject(swagger, jsonref.SplitPointer("#/paths/~1pets/get"))
	op.(*specmodel.Operation).SetInternal("final_produces", []string{"application/json"})
	node, ok = specmodel.Resolve(swagger, jsonref.SplitPointer("#/paths/~1pets/get/final_produces"))
	assert.Assert(t, ok)
	assert.DeepEqual(t, node, []string{"application/json"})

	_, ok = specmodel.Resolve(swagger, jsonref.SplitPointer("#/paths/~1pets/post"))
	assert.Assert(t, !ok)
}

func TestFieldByPublicNameUsesRenamedTable(t *testing.T) {
	obj, err := specmodel.Construct(specmodel.ParameterMeta(), map[string]interface{}{
		"name": "limit",
		"in":   "query",
	}, "file:///spec.json", specmodel.V2_0)
	require.NoError(t, err)
	param := obj.(*specmodel.Parameter)

	v, ok := specmodel.FieldByPublicName(param, "Location")
	assert.Assert(t, ok)
	assert.Equal(t, v, "query")
	assert.Equal(t, param.Location(), "query")

	// Names without a rename entry fall back to the literal wire key.
	v, ok = specmodel.FieldByPublicName(param, "name")
	assert.Assert(t, ok)
	assert.Equal(t, v, "limit")
}

func TestDumpUsesWireKeysAndSkipsDefaults(t *testing.T) {
	swagger := buildSwagger(t, map[string]interface{}{
		"swagger": "2.0",
		"info":    map[string]interface{}{"title": "t", "version": "1"},
		"paths": map[string]interface{}{
			"/pets": map[string]interface{}{
				"get": map[string]interface{}{
					"operationId": "listPets",
					"deprecated":  false,
					"parameters": []interface{}{
						map[string]interface{}{"name": "limit", "in": "query"},
					},
				},
			},
		},
	})

	dumped := specmodel.Dump(swagger)

	// Default-equal values are omitted.
	_, ok := dumped["swagger"]
	assert.Assert(t, !ok)

	op := dumped["paths"].(map[string]interface{})["/pets"].(map[string]interface{})["get"].(map[string]interface{})
	_, ok = op["deprecated"]
	assert.Assert(t, !ok)

	// Renamed fields dump under their wire key, never the public name.
	param := op["parameters"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, param["in"], "query")
	_, ok = param["Location"]
	assert.Assert(t, !ok)
}

func TestDumpDenormalizesSchemaType(t *testing.T) {
	swagger := buildSwagger(t, map[string]interface{}{
		"definitions": map[string]interface{}{
			"One":  map[string]interface{}{"type": "string"},
			"Many": map[string]interface{}{"type": []interface{}{"string", "null"}},
		},
	})

	one := swagger.Definitions()["One"].(*specmodel.Schema)
	assert.DeepEqual(t, []string(one.Type()), []string{"string"})

	dumped := specmodel.Dump(swagger)
	defs := dumped["definitions"].(map[string]interface{})
	assert.Equal(t, defs["One"].(map[string]interface{})["type"], "string")
	assert.DeepEqual(t, defs["Many"].(map[string]interface{})["type"], []interface{}{"string", "null"})
}

func TestChildrenFlattenInDeclarationOrder(t *testing.T) {
	swagger := buildSwagger(t, map[string]interface{}{
		"info": map[string]interface{}{"title": "t", "version": "1"},
		"definitions": map[string]interface{}{
			"B": map[string]interface{}{"type": "object"},
			"A": map[string]interface{}{"type": "object"},
		},
	})

	var pointers []string
	for _, c := range specmodel.Children(swagger) {
		pointers = append(pointers, c.Pointer.String())
	}
	// info is declared before definitions; map children come out in
	// sorted key order for deterministic traversal.
	assert.DeepEqual(t, pointers, []string{"#/info", "#/definitions/A", "#/definitions/B"})
}

func TestCompareReportsEquivalenceModuloKeyOrder(t *testing.T) {
	raw := map[string]interface{}{
		"info": map[string]interface{}{"title": "t", "version": "1"},
		"definitions": map[string]interface{}{
			"Pet": map[string]interface{}{"type": "object"},
		},
	}
	a := buildSwagger(t, raw)
	b := buildSwagger(t, raw)

	equal, diff := specmodel.Compare(a, b)
	assert.Assert(t, equal, diff)

	c := buildSwagger(t, map[string]interface{}{
		"info": map[string]interface{}{"title": "other", "version": "1"},
		"definitions": map[string]interface{}{
			"Pet": map[string]interface{}{"type": "object"},
		},
	})
	equal, diff = specmodel.Compare(a, c)
	assert.Assert(t, !equal)
	assert.Assert(t, diff != "")
}

func TestDumpConstructRoundTrip(t *testing.T) {
	raw := map[string]interface{}{
		"host": "api.example.com",
		"info": map[string]interface{}{"title": "t", "version": "1"},
		"paths": map[string]interface{}{
			"/pets": map[string]interface{}{
				"get": map[string]interface{}{
					"operationId": "listPets",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "ok",
							"schema":      map[string]interface{}{"$ref": "#/definitions/Pet"},
						},
					},
				},
			},
		},
		"definitions": map[string]interface{}{
			"Pet": map[string]interface{}{"type": "object"},
		},
	}
	first := buildSwagger(t, raw)

	second, err := specmodel.Construct(specmodel.SwaggerMeta(), specmodel.Dump(first), "file:///spec.json", specmodel.V2_0)
	require.NoError(t, err)

	equal, diff := specmodel.Compare(first, second)
	assert.Assert(t, equal, diff)
}

func TestVersionOrderingAndParse(t *testing.T) {
	assert.Assert(t, specmodel.V1_2.Before(specmodel.V2_0))
	assert.Assert(t, specmodel.V2_0.Before(specmodel.V3_0_0))
	assert.Equal(t, specmodel.V3_0_0.String(), "3.0.0")

	v, ok := specmodel.ParseVersion("2.0")
	assert.Assert(t, ok)
	assert.Equal(t, v, specmodel.V2_0)

	_, ok = specmodel.ParseVersion("4.0")
	assert.Assert(t, !ok)
}
