// Package primitive declares the primitive-factory seam: how an
// embedder coerces an untyped user value into a language-native typed
// value against a Schema, for Schema/Parameter to-primitive operations.
// oaspec itself never implements conversion; value coercion, like MIME
// codecs and the HTTP client, belongs to the embedder. This package
// only documents the shape a Factory implementation must satisfy.
package primitive

import "github.com/oaspec/oaspec/specmodel"

// Context carries the ambient information a Factory may need beyond the
// (schema, value) pair itself: the pointer it is producing a value for,
// and the spec version governing which Schema dialect applies.
type Context struct {
	Pointer string
	Version specmodel.Version
}

// Factory produces a typed primitive from an untyped value against
// schema. The returned value is opaque to oaspec; only the embedder's
// own code consumes it.
type Factory interface {
	Produce(schema *specmodel.Schema, value interface{}, ctx Context) (interface{}, error)
}

// File is the wrapper shape a to-primitive conversion path commonly
// needs for a Schema declared "type: string, format: binary" (a file
// upload parameter): a filename, its declared content type, and its raw
// bytes. oaspec does not construct File values itself; a Factory
// implementation reads this shape back out of whatever multipart or
// form-data layer the embedder already owns.
type File struct {
	Filename    string
	ContentType string
	Content     []byte
}
