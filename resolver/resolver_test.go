package resolver_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/oaspec/oaspec/cache"
	"github.com/oaspec/oaspec/errdefs"
	"github.com/oaspec/oaspec/resolver"
	"github.com/oaspec/oaspec/specmodel"
)

func buildSwagger(t *testing.T, url string, raw map[string]interface{}) specmodel.Object {
	t.Helper()
	obj, err := specmodel.Construct(specmodel.SwaggerMeta(), raw, url, specmodel.V2_0)
	assert.NilError(t, err)
	return obj
}

type stubLoader struct {
	docs map[string]specmodel.Object
}

func (s stubLoader) Load(url string, version specmodel.Version) (specmodel.Object, error) {
	obj, ok := s.docs[url]
	if !ok {
		return nil, assertErr{url}
	}
	return obj, nil
}

type assertErr struct{ url string }

func (e assertErr) Error() string { return "no such document: " + e.url }

func TestResolveEmptyRefFails(t *testing.T) {
	r := resolver.New(cache.New(), nil)
	_, err := r.Resolve("", "file:///a.json", specmodel.V2_0, nil)
	assert.Assert(t, errdefs.IsEmptyRef(err))
}

func TestResolveSameDocumentPointer(t *testing.T) {
	c := cache.New()
	root := buildSwagger(t, "file:///a.json", map[string]interface{}{
		"definitions": map[string]interface{}{
			"Pet": map[string]interface{}{"type": "object"},
		},
	})
	c.Put(cache.Key{URL: "file:///a.json", Pointer: root.Identity().Pointer, Version: specmodel.V2_0}, root)

	r := resolver.New(c, nil)
	obj, err := r.Resolve("#/definitions/Pet", "file:///a.json", specmodel.V2_0, nil)
	assert.NilError(t, err)
	assert.Equal(t, obj.Meta().Name, "Schema")
}

func TestResolveUnresolvedPointerFails(t *testing.T) {
	c := cache.New()
	root := buildSwagger(t, "file:///a.json", map[string]interface{}{})
	c.Put(cache.Key{URL: "file:///a.json", Pointer: root.Identity().Pointer, Version: specmodel.V2_0}, root)

	r := resolver.New(c, nil)
	_, err := r.Resolve("#/definitions/Missing", "file:///a.json", specmodel.V2_0, nil)
	assert.Assert(t, errdefs.IsUnresolvedReference(err))
}

func TestResolveLoadsExternalDocument(t *testing.T) {
	ext := buildSwagger(t, "file:///b.json", map[string]interface{}{
		"definitions": map[string]interface{}{
			"Order": map[string]interface{}{"type": "object"},
		},
	})
	loader := stubLoader{docs: map[string]specmodel.Object{"file:///b.json": ext}}
	r := resolver.New(cache.New(), loader)

	obj, err := r.Resolve("b.json#/definitions/Order", "file:///a.json", specmodel.V2_0, nil)
	assert.NilError(t, err)
	assert.Equal(t, obj.Meta().Name, "Schema")
}

func TestResolveBeforeReturnHook(t *testing.T) {
	c := cache.New()
	root := buildSwagger(t, "file:///a.json", map[string]interface{}{
		"definitions": map[string]interface{}{
			"Pet": map[string]interface{}{"type": "object"},
		},
	})
	c.Put(cache.Key{URL: "file:///a.json", Pointer: root.Identity().Pointer, Version: specmodel.V2_0}, root)
	r := resolver.New(c, nil)

	var hookCalled bool
	_, err := r.Resolve("#/definitions/Pet", "file:///a.json", specmodel.V2_0, func(obj specmodel.Object) (specmodel.Object, error) {
		hookCalled = true
		return obj, nil
	})
	assert.NilError(t, err)
	assert.Assert(t, hookCalled)
}

func TestNormalizeAndResolveRefCycle(t *testing.T) {
	c := cache.New()
	root := buildSwagger(t, "file:///a.json", map[string]interface{}{
		"definitions": map[string]interface{}{
			"A": map[string]interface{}{
				"properties": map[string]interface{}{
					"b": map[string]interface{}{"$ref": "#/definitions/B"},
				},
			},
			"B": map[string]interface{}{
				"properties": map[string]interface{}{
					"a": map[string]interface{}{"$ref": "#/definitions/A"},
				},
			},
		},
	})
	rootKey := cache.Key{URL: "file:///a.json", Pointer: root.Identity().Pointer, Version: specmodel.V2_0}
	c.Put(rootKey, root)

	err := resolver.NormalizeRefs(root, "file:///a.json")
	assert.NilError(t, err)

	r := resolver.New(c, nil)
	err = r.ResolveRefs(root, specmodel.V2_0)
	assert.NilError(t, err)

	swagger := root.(*specmodel.Swagger)
	a := swagger.Definitions()["A"].(*specmodel.Schema)
	b := swagger.Definitions()["B"].(*specmodel.Schema)
	aRefB := a.Properties()["b"].(*specmodel.Reference)
	bRefA := b.Properties()["a"].(*specmodel.Reference)

	aTarget, ok := aRefB.RefObj()
	assert.Assert(t, ok)
	assert.Equal(t, aTarget.Identity().Pointer.String(), "#/definitions/B")

	bTarget, ok := bRefA.RefObj()
	assert.Assert(t, ok)
	assert.Equal(t, bTarget.Identity().Pointer.String(), "#/definitions/A")
}
