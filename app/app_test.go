package app_test

import (
	"encoding/json"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/oaspec/oaspec/app"
	"github.com/oaspec/oaspec/errdefs"
	"github.com/oaspec/oaspec/fetch"
	"github.com/oaspec/oaspec/jsonref"
	"github.com/oaspec/oaspec/specmodel"
)

// stubGetter serves fixed JSON documents by URL, keeping these tests
// independent of the filesystem/network Getters (fetch.FileGetter,
// fetch.HTTPGetter already have their own tests).
type stubGetter struct {
	docs map[string]interface{}
}

func (s stubGetter) Load(url string) ([]byte, fetch.ContentHint, error) {
	doc, ok := s.docs[url]
	if !ok {
		return nil, "", assertMissing{url}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, "", err
	}
	return data, fetch.HintJSON, nil
}

type assertMissing struct{ url string }

func (e assertMissing) Error() string { return "no such document: " + e.url }

func swagger20Doc() map[string]interface{} {
	return map[string]interface{}{
		"swagger": "2.0",
		"info":    map[string]interface{}{"title": "pets", "version": "1.0"},
		"paths": map[string]interface{}{
			"/pets": map[string]interface{}{
				"get": map[string]interface{}{
					"operationId": "listPets",
					"tags":        []interface{}{"pets"},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "ok"},
					},
				},
			},
		},
		"definitions": map[string]interface{}{
			"Pet": map[string]interface{}{"type": "object"},
		},
	}
}

func TestLoadPrepareSwagger20MigratesTo30(t *testing.T) {
	getter := stubGetter{docs: map[string]interface{}{
		"file:///a.json": swagger20Doc(),
	}}
	a := app.New(app.WithGetter(getter))

	assert.NilError(t, a.Load("file:///a.json"))
	assert.Equal(t, a.State(), app.Loaded)
	assert.Equal(t, a.OriginalVersion(), specmodel.V2_0)

	assert.NilError(t, a.Prepare(true))
	assert.Equal(t, a.State(), app.Prepared)
	assert.Equal(t, a.Version(), specmodel.V3_0_0)

	_, ok := a.Model("Pet")
	assert.Assert(t, ok)

	op, ok := a.Op("pets##listPets")
	assert.Assert(t, ok)
	assert.Equal(t, op.OperationID(), "listPets")

	op, ok = a.Op("listPets")
	assert.Assert(t, ok)
	assert.Equal(t, op.OperationID(), "listPets")
}

func TestLoadPrepareStaysAtVersionWhenTargetIsSame(t *testing.T) {
	getter := stubGetter{docs: map[string]interface{}{
		"file:///a.json": swagger20Doc(),
	}}
	a := app.New(app.WithGetter(getter), app.WithDefaultTargetVersion(specmodel.V2_0))

	assert.NilError(t, a.Load("file:///a.json"))
	assert.NilError(t, a.Prepare(false))
	assert.Equal(t, a.Version(), specmodel.V2_0)

	schema, ok := a.Model("Pet")
	assert.Assert(t, ok)
	assert.Equal(t, schema.Meta().Name, "Schema")
}

func resourceListingDoc() map[string]interface{} {
	return map[string]interface{}{
		"apiVersion":     "1.0",
		"swaggerVersion": "1.2",
		"info":           map[string]interface{}{"title": "pets api"},
		"apis": []interface{}{
			map[string]interface{}{"path": "/users.json"},
		},
	}
}

func apiDeclarationDoc() map[string]interface{} {
	return map[string]interface{}{
		"apiVersion":     "1.0",
		"swaggerVersion": "1.2",
		"basePath":       "http://host.example/api",
		"resourcePath":   "/users",
		"apis": []interface{}{
			map[string]interface{}{
				"path": "/users",
				"operations": []interface{}{
					map[string]interface{}{
						"method":   "GET",
						"nickname": "listUsers",
					},
				},
			},
		},
		"models": map[string]interface{}{
			"user": map[string]interface{}{
				"id": "user",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{"type": "string"},
				},
			},
		},
	}
}

func TestLoadPrepareSwagger12MigratesToModel(t *testing.T) {
	getter := stubGetter{docs: map[string]interface{}{
		"file:///listing.json": resourceListingDoc(),
		"file:///users.json":   apiDeclarationDoc(),
	}}
	a := app.New(app.WithGetter(getter), app.WithDefaultTargetVersion(specmodel.V2_0))

	assert.NilError(t, a.Load("file:///listing.json"))
	assert.Equal(t, a.OriginalVersion(), specmodel.V1_2)

	assert.NilError(t, a.Prepare(true))

	schema, ok := a.Model("users##user")
	assert.Assert(t, ok)
	assert.Equal(t, schema.Meta().Name, "Schema")

	resolved, err := a.Resolve("#/definitions/users##user", nil)
	assert.NilError(t, err)
	assert.Assert(t, resolved == specmodel.Object(schema))
}

func TestResolveCrossDocumentRef(t *testing.T) {
	rootDoc := map[string]interface{}{
		"swagger": "2.0",
		"info":    map[string]interface{}{"title": "root", "version": "1.0"},
		"paths": map[string]interface{}{
			"/orders": map[string]interface{}{
				"get": map[string]interface{}{
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "ok",
							"schema":      map[string]interface{}{"$ref": "external.json#/definitions/Order"},
						},
					},
				},
			},
		},
	}
	externalDoc := map[string]interface{}{
		"swagger": "2.0",
		"info":    map[string]interface{}{"title": "external", "version": "1.0"},
		"definitions": map[string]interface{}{
			"Order": map[string]interface{}{"type": "object"},
		},
	}
	getter := stubGetter{docs: map[string]interface{}{
		"file:///a/root.json":     rootDoc,
		"file:///a/external.json": externalDoc,
	}}
	a := app.New(app.WithGetter(getter), app.WithDefaultTargetVersion(specmodel.V2_0))

	assert.NilError(t, a.Load("file:///a/root.json"))
	assert.NilError(t, a.Prepare(true))

	obj, err := a.Resolve("file:///a/external.json#/definitions/Order", nil)
	assert.NilError(t, err)
	assert.Equal(t, obj.Meta().Name, "Schema")
}

func TestCrossDocumentRefSurvivesMigrationTo30(t *testing.T) {
	rootDoc := map[string]interface{}{
		"swagger": "2.0",
		"info":    map[string]interface{}{"title": "root", "version": "1.0"},
		"paths": map[string]interface{}{
			"/orders": map[string]interface{}{
				"get": map[string]interface{}{
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "ok",
							"schema":      map[string]interface{}{"$ref": "external.json#/definitions/Order"},
						},
					},
				},
			},
		},
	}
	externalDoc := map[string]interface{}{
		"swagger": "2.0",
		"info":    map[string]interface{}{"title": "external", "version": "1.0"},
		"definitions": map[string]interface{}{
			"Order": map[string]interface{}{"type": "object"},
		},
	}
	getter := stubGetter{docs: map[string]interface{}{
		"file:///a/root.json":     rootDoc,
		"file:///a/external.json": externalDoc,
	}}
	a := app.New(app.WithGetter(getter))

	assert.NilError(t, a.Load("file:///a/root.json"))
	assert.NilError(t, a.Prepare(true))
	assert.Equal(t, a.Version(), specmodel.V3_0_0)

	// The reference still names the external document's pre-migration
	// pointer; resolution walks it through that document's relocation
	// chain to its components/schemas home.
	obj, err := a.Resolve("file:///a/external.json#/definitions/Order", nil)
	assert.NilError(t, err)
	assert.Equal(t, obj.Meta().Name, "Schema")
	assert.Equal(t, obj.Identity().Pointer.String(), "#/components/schemas/Order")
	assert.Equal(t, obj.Identity().URL, "file:///a/external.json")
}

func TestLifecycleStateErrors(t *testing.T) {
	a := app.New()

	err := a.Prepare(false)
	assert.Assert(t, errdefs.IsValidation(err))

	_, err = a.Dump()
	assert.Assert(t, errdefs.IsValidation(err))

	_, err = a.Resolve("#/definitions/Pet", nil)
	assert.Assert(t, errdefs.IsValidation(err))
}

func TestDumpRoundTripsAtSameVersion(t *testing.T) {
	getter := stubGetter{docs: map[string]interface{}{
		"file:///a.json": swagger20Doc(),
	}}
	a := app.New(app.WithGetter(getter), app.WithDefaultTargetVersion(specmodel.V2_0))
	assert.NilError(t, a.Load("file:///a.json"))
	assert.NilError(t, a.Prepare(true))

	tree, err := a.Dump()
	assert.NilError(t, err)

	reloaded, err := specmodel.Construct(specmodel.SwaggerMeta(), tree, "file:///a.json", specmodel.V2_0)
	assert.NilError(t, err)

	equal, diff := specmodel.Compare(a.Root(), reloaded)
	assert.Assert(t, equal, diff)
}

func TestJSONAndYAMLDocumentsLoadIdentically(t *testing.T) {
	jsonTree, err := fetch.Parse([]byte(`{
		"swagger": "2.0",
		"info": {"title": "pets", "version": "1.0"},
		"definitions": {"Pet": {"type": "object"}}
	}`), fetch.HintJSON)
	assert.NilError(t, err)

	yamlTree, err := fetch.Parse([]byte(`swagger: "2.0"
info:
  title: pets
  version: "1.0"
definitions:
  Pet:
    type: object
`), fetch.HintYAML)
	assert.NilError(t, err)

	fromJSON, err := specmodel.Construct(specmodel.SwaggerMeta(), jsonTree, "file:///a.json", specmodel.V2_0)
	assert.NilError(t, err)
	fromYAML, err := specmodel.Construct(specmodel.SwaggerMeta(), yamlTree, "file:///a.yaml", specmodel.V2_0)
	assert.NilError(t, err)

	equal, diff := specmodel.Compare(fromJSON, fromYAML)
	assert.Assert(t, equal, diff)
}

func TestMigrateRefusesDowngrade(t *testing.T) {
	getter := stubGetter{docs: map[string]interface{}{
		"file:///a.json": swagger20Doc(),
	}}
	a := app.New(app.WithGetter(getter))
	assert.NilError(t, a.Load("file:///a.json"))
	assert.NilError(t, a.Prepare(true))

	err := a.Migrate(specmodel.V2_0)
	assert.Assert(t, errdefs.IsUnsupportedVersion(err))
}

func TestRelocationInspectionAfterPrepare(t *testing.T) {
	getter := stubGetter{docs: map[string]interface{}{
		"file:///a.json": swagger20Doc(),
	}}
	a := app.New(app.WithGetter(getter))
	assert.NilError(t, a.Load("file:///a.json"))
	assert.NilError(t, a.Prepare(true))

	relocated := a.Relocations().Resolve("file:///a.json", specmodel.V3_0_0, jsonref.SplitPointer("#/definitions/Pet"))
	assert.Equal(t, relocated.String(), "#/components/schemas/Pet")
}

func TestStrictModeFailsOnMissingInfo(t *testing.T) {
	doc := map[string]interface{}{
		"swagger": "2.0",
		"paths":   map[string]interface{}{},
	}
	getter := stubGetter{docs: map[string]interface{}{"file:///bad.json": doc}}

	strict := app.New(app.WithGetter(getter), app.WithDefaultTargetVersion(specmodel.V2_0))
	assert.NilError(t, strict.Load("file:///bad.json"))
	err := strict.Prepare(true)
	assert.Assert(t, errdefs.IsValidation(err))
	assert.Equal(t, strict.State(), app.Loaded)

	lenient := app.New(app.WithGetter(getter), app.WithDefaultTargetVersion(specmodel.V2_0))
	assert.NilError(t, lenient.Load("file:///bad.json"))
	assert.NilError(t, lenient.Prepare(false))
	assert.Equal(t, lenient.State(), app.Prepared)
}
