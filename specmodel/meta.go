package specmodel

import "github.com/oaspec/oaspec/jsonref"

// FieldMeta declares one recognized wire key whose value is a plain
// (non-object) value: a string, number, bool, or slice/map of those.
// This and ChildMeta/RenamedMeta/InternalMeta are the four declarative
// tables every spec-object class is described by; a ClassMeta value is
// the single declarative schema a type needs.
type FieldMeta struct {
	Key      string
	Default  interface{}
	ReadOnly bool
	// Normalize, if set, converts the raw decoded JSON value (string,
	// float64, []interface{}, map[string]interface{}, bool, or nil) into
	// the representation stored on the object. Used by Schema's "type"
	// field to produce a go-openapi/spec.StringOrArray instead of a bare
	// interface{} union (see specmodel/objects_20.go).
	Normalize func(raw interface{}) (interface{}, error)
	// Denormalize reverses Normalize for Dump. Required whenever Normalize
	// is set.
	Denormalize func(v interface{}) interface{}
}

// ChildMeta declares one recognized wire key whose value is one or more
// nested spec objects, built via Builder.
type ChildMeta struct {
	Key     string
	Builder Builder
}

// RenamedMeta declares an alternative, language-friendly accessor name for
// an awkward wire key (e.g. Parameter's wire key "in" -> "Location").
type RenamedMeta struct {
	Public string
	Wire   string
}

// InternalMeta declares a runtime-only attribute populated after
// construction (e.g. Reference's "ref_obj").
type InternalMeta struct {
	Key     string
	Default interface{}
}

// ClassMeta is the full declarative description of one spec-object class.
type ClassMeta struct {
	Name     string
	Fields   []FieldMeta
	Children []ChildMeta
	Renamed  []RenamedMeta
	Internal []InternalMeta
	New      func() Object
}

// FieldKeys returns the wire keys with FieldMeta attached, in declaration
// order (construction protocol visits fields/children in this order).
func (m *ClassMeta) FieldKeys() []string {
	keys := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		keys[i] = f.Key
	}
	return keys
}

func (m *ClassMeta) fieldDefault(key string) (interface{}, bool) {
	for _, f := range m.Fields {
		if f.Key == key {
			return f.Default, f.Default != nil
		}
	}
	return nil, false
}

func (m *ClassMeta) renamedWire(public string) (string, bool) {
	for _, r := range m.Renamed {
		if r.Public == public {
			return r.Wire, true
		}
	}
	return "", false
}

// Builder constructs one child slot's value from the untyped tree. Each
// implementation decides how to interpret raw (a single object, a bool
// short-circuit, a "$ref" redirection, a list, or a map) and recurses into
// Construct as needed.
type Builder interface {
	Build(raw interface{}, docURL string, ptr jsonref.Pointer, version Version, overrides OverrideMap) (interface{}, error)
}

// Single builds exactly one nested object of class meta.
func Single(meta *ClassMeta) Builder { return singleBuilder{meta} }

type singleBuilder struct{ meta *ClassMeta }

func (b singleBuilder) Build(raw interface{}, docURL string, ptr jsonref.Pointer, version Version, overrides OverrideMap) (interface{}, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errNotAnObject(ptr)
	}
	return construct(b.meta, m, docURL, ptr, version, overrides)
}

// ListOf builds a JSON array into a []Object, each built via elem.
func ListOf(elem Builder) Builder { return listBuilder{elem} }

type listBuilder struct{ elem Builder }

func (b listBuilder) Build(raw interface{}, docURL string, ptr jsonref.Pointer, version Version, overrides OverrideMap) (interface{}, error) {
	arr, ok := raw.([]interface{})
	if !ok {
		return nil, errNotAnArray(ptr)
	}
	out := make([]Object, 0, len(arr))
	for i, item := range arr {
		child, err := b.elem.Build(item, docURL, ptr.Child(itoa(i)), version, overrides)
		if err != nil {
			return nil, err
		}
		obj, ok := child.(Object)
		if !ok {
			return nil, errNotAnObject(ptr.Child(itoa(i)))
		}
		out = append(out, obj)
	}
	return out, nil
}

// MapOf builds a JSON object into a map[string]Object, each value built
// via elem, keyed by its wire key.
func MapOf(elem Builder) Builder { return mapBuilder{elem} }

type mapBuilder struct{ elem Builder }

func (b mapBuilder) Build(raw interface{}, docURL string, ptr jsonref.Pointer, version Version, overrides OverrideMap) (interface{}, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errNotAnObject(ptr)
	}
	out := make(map[string]Object, len(m))
	for key, val := range m {
		child, err := b.elem.Build(val, docURL, ptr.Child(key), version, overrides)
		if err != nil {
			return nil, err
		}
		obj, ok := child.(Object)
		if !ok {
			return nil, errNotAnObject(ptr.Child(key))
		}
		out[key] = obj
	}
	return out, nil
}

// RefOr builds a Reference when raw carries a "$ref" key, otherwise
// delegates to elem.
func RefOr(elem Builder) Builder { return refOrBuilder{elem} }

type refOrBuilder struct{ elem Builder }

func (b refOrBuilder) Build(raw interface{}, docURL string, ptr jsonref.Pointer, version Version, overrides OverrideMap) (interface{}, error) {
	if m, ok := raw.(map[string]interface{}); ok {
		if _, hasRef := m["$ref"]; hasRef {
			return construct(referenceMeta, m, docURL, ptr, version, overrides)
		}
	}
	return b.elem.Build(raw, docURL, ptr, version, overrides)
}

// BoolOr passes a JSON bool through untouched, otherwise delegates to
// elem; additionalProperties is the one wire member needing this.
func BoolOr(elem Builder) Builder { return boolOrBuilder{elem} }

type boolOrBuilder struct{ elem Builder }

func (b boolOrBuilder) Build(raw interface{}, docURL string, ptr jsonref.Pointer, version Version, overrides OverrideMap) (interface{}, error) {
	if bv, ok := raw.(bool); ok {
		return bv, nil
	}
	return b.elem.Build(raw, docURL, ptr, version, overrides)
}
