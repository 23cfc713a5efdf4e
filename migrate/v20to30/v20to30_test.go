package v20to30_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/oaspec/oaspec/cache"
	"github.com/oaspec/oaspec/jsonref"
	"github.com/oaspec/oaspec/migrate/v20to30"
	"github.com/oaspec/oaspec/specmodel"
)

func buildSwagger(t *testing.T, raw map[string]interface{}) *specmodel.Swagger {
	t.Helper()
	obj, err := specmodel.Construct(specmodel.SwaggerMeta(), raw, "file:///spec.json", specmodel.V2_0)
	assert.NilError(t, err)
	return obj.(*specmodel.Swagger)
}

func TestMigrateRelocatesDefinitionsToComponentsSchemas(t *testing.T) {
	swagger := buildSwagger(t, map[string]interface{}{
		"info": map[string]interface{}{"title": "t", "version": "1"},
		"definitions": map[string]interface{}{
			"Pet": map[string]interface{}{"type": "object"},
		},
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
	})

	c := cache.New()
	reloc := cache.NewRelocations()
	openapi, err := v20to30.Migrate(swagger, "file:///spec.json", c, reloc, nil)
	assert.NilError(t, err)

	comp, ok := openapi.Components()
	assert.Assert(t, ok)
	schemas := comp.(*specmodel.Components).Schemas()
	_, ok = schemas["Pet"]
	assert.Assert(t, ok)

	assert.Equal(t, reloc.Steps("file:///spec.json"), 1)
	resolved := reloc.Resolve("file:///spec.json", specmodel.V3_0_0, jsonref.SplitPointer("#/definitions/Pet"))
	assert.Equal(t, resolved.String(), "#/components/schemas/Pet")
}

func TestMigratePreservesOperationIdAndResolvesResponseRef(t *testing.T) {
	swagger := buildSwagger(t, map[string]interface{}{
		"info": map[string]interface{}{"title": "t", "version": "1"},
		"definitions": map[string]interface{}{
			"Pet": map[string]interface{}{"type": "object"},
		},
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
	})

	c := cache.New()
	reloc := cache.NewRelocations()
	openapi, err := v20to30.Migrate(swagger, "file:///spec.json", c, reloc, nil)
	assert.NilError(t, err)

	pathItem := openapi.Paths()["/pets"].(*specmodel.PathItem30)
	op := pathItem.Operations()["get"]
	assert.Equal(t, op.OperationID(), "listPets")

	rawResponses, ok := op.Child("responses")
	assert.Assert(t, ok)
	responses := rawResponses.(map[string]specmodel.Object)
	response200 := responses["200"].(*specmodel.Response30)
	rawContent, ok := response200.Child("content")
	assert.Assert(t, ok)
	content := rawContent.(map[string]specmodel.Object)
	mt, ok := content["application/json"].(*specmodel.MediaType)
	assert.Assert(t, ok)
	rawSchema, ok := mt.Child("schema")
	assert.Assert(t, ok)
	ref, ok := rawSchema.(*specmodel.Reference)
	assert.Assert(t, ok)
	target, ok := ref.RefObj()
	assert.Assert(t, ok)
	assert.Equal(t, target.Identity().Pointer.String(), "#/components/schemas/Pet")
}
