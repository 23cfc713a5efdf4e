package jsonref

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestSplitBareFragment(t *testing.T) {
	r, err := Split("#/definitions/Pet")
	assert.NilError(t, err)
	assert.Check(t, r.IsSameDocument())
	assert.Equal(t, r.Pointer.String(), "#/definitions/Pet")
}

func TestSplitExternalDocument(t *testing.T) {
	r, err := Split("external.json#/definitions/Pet")
	assert.NilError(t, err)
	assert.Check(t, !r.IsSameDocument())
	assert.Equal(t, r.URL, "external.json")
	assert.Equal(t, r.Pointer.String(), "#/definitions/Pet")
}

func TestSplitWholeDocument(t *testing.T) {
	r, err := Split("external.json")
	assert.NilError(t, err)
	assert.Equal(t, r.URL, "external.json")
	assert.Check(t, r.Pointer.IsRoot())
}

func TestNormalizeRelativeRef(t *testing.T) {
	r, err := Normalize("models/pet.json#/Pet", "file:///api/root.json")
	assert.NilError(t, err)
	assert.Equal(t, r.URL, "file:///api/models/pet.json")
	assert.Equal(t, r.Pointer.String(), "#/Pet")
}

func TestNormalizeSameDocumentRef(t *testing.T) {
	r, err := Normalize("#/definitions/Pet", "file:///api/root.json")
	assert.NilError(t, err)
	assert.Equal(t, r.URL, "file:///api/root.json")
	assert.Equal(t, r.String(), "file:///api/root.json#/definitions/Pet")
}
