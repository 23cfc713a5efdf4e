package jsonref

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestNormalizeURLDropsFragmentAndDotSegments(t *testing.T) {
	u, err := NormalizeURL("file:///specs/v2/../petstore.json#/definitions/Pet")
	assert.NilError(t, err)
	assert.Equal(t, u, "file:///specs/petstore.json")
}

func TestNormalizeURLAbsolutizesSchemelessPath(t *testing.T) {
	u, err := NormalizeURL("/specs/petstore.json")
	assert.NilError(t, err)
	assert.Equal(t, u, "file:///specs/petstore.json")
}

func TestNormalizeURLKeepsHTTPHost(t *testing.T) {
	u, err := NormalizeURL("http://host.example/api/./spec.json#frag")
	assert.NilError(t, err)
	assert.Equal(t, u, "http://host.example/api/spec.json")
}

func TestURLJoinResolvesRelative(t *testing.T) {
	u, err := URLJoin("file:///api/root.json", "models/pet.json")
	assert.NilError(t, err)
	assert.Equal(t, u, "file:///api/models/pet.json")

	u, err = URLJoin("http://host.example/a/b.json", "../c.json")
	assert.NilError(t, err)
	assert.Equal(t, u, "http://host.example/c.json")
}

func TestURLJoinKeepsAbsoluteRel(t *testing.T) {
	u, err := URLJoin("file:///api/root.json", "http://host.example/spec.json")
	assert.NilError(t, err)
	assert.Equal(t, u, "http://host.example/spec.json")
}

func TestURLDirname(t *testing.T) {
	u, err := URLDirname("file:///api/models/pet.json")
	assert.NilError(t, err)
	assert.Equal(t, u, "file:///api/models/")
}
