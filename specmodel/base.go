package specmodel

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/oaspec/oaspec/jsonref"
)

// Identity is the stable (url, pointer) pair every spec object reachable
// from a root carries, plus the spec version it was constructed at.
type Identity struct {
	URL     string
	Pointer jsonref.Pointer
	Version Version
}

func (id Identity) String() string {
	return fmt.Sprintf("%s%s@%s", id.URL, id.Pointer.String(), id.Version)
}

// Object is the contract every spec-object class satisfies: identity,
// access to its declarative ClassMeta, and the unexported accessor that
// lets the shared Base machinery (construction, local resolution, dump,
// compare) operate generically over any concrete type embedding Base.
type Object interface {
	Identity() Identity
	Meta() *ClassMeta
	base() *Base
}

// OverrideMap is a sub-pointer (relative to the root the construction
// starts from) -> already-prepared-object map, installed verbatim during
// construction instead of being rebuilt. Keys are
// jsonref.Pointer.String() of that pointer; construct checks the map at
// every nested object's pointer.
type OverrideMap map[string]Object

// Base is embedded by every concrete spec-object type. It owns the
// identity, and the three runtime maps (fields, children, internal); the
// renamed table lives only in ClassMeta since it is purely a naming
// convenience over the same storage.
type Base struct {
	id         Identity
	meta       *ClassMeta
	fields     map[string]interface{}
	children   map[string]interface{} // Object | []Object | map[string]Object | bool
	internal   map[string]interface{}
	extensions map[string]interface{} // "x-..." keys, preserved verbatim
}

func (b *Base) Identity() Identity { return b.id }
func (b *Base) Meta() *ClassMeta   { return b.meta }
func (b *Base) base() *Base        { return b }

func (b *Base) init(meta *ClassMeta, id Identity) {
	b.id = id
	b.meta = meta
	b.fields = map[string]interface{}{}
	b.children = map[string]interface{}{}
	b.internal = map[string]interface{}{}
	b.extensions = map[string]interface{}{}
	for _, im := range meta.Internal {
		if im.Default != nil {
			b.internal[im.Key] = im.Default
		}
	}
}

// Field returns the raw value stored for wire key key, and whether it was
// present.
func (b *Base) Field(key string) (interface{}, bool) {
	v, ok := b.fields[key]
	return v, ok
}

// SetField installs a field value directly (used by migrators building a
// typed object without going through untyped Construct).
func (b *Base) SetField(key string, v interface{}) { b.fields[key] = v }

// Child returns the raw child slot (Object, []Object, map[string]Object,
// or bool) stored for wire key key.
func (b *Base) Child(key string) (interface{}, bool) {
	v, ok := b.children[key]
	return v, ok
}

// SetChild installs a child slot directly.
func (b *Base) SetChild(key string, v interface{}) { b.children[key] = v }

// Internal returns a runtime attribute (e.g. "ref_obj").
func (b *Base) Internal(key string) (interface{}, bool) {
	v, ok := b.internal[key]
	return v, ok
}

// SetInternal installs a runtime attribute. Internal attributes are the
// only state mutable on an otherwise-prepared object.
func (b *Base) SetInternal(key string, v interface{}) { b.internal[key] = v }

// Extension returns an "x-" prefixed extension value.
func (b *Base) Extension(key string) (interface{}, bool) {
	v, ok := b.extensions[key]
	return v, ok
}

// construct is the shared construction protocol: given an untyped tree, a
// pointer path, and an override map, it builds every declared child
// recursively, copies every declared field, installs any override hit at
// this exact pointer (bypassing construction entirely, as a whole-object
// substitute), and silently ignores unknown non-"x-" keys.
func construct(meta *ClassMeta, raw map[string]interface{}, docURL string, ptr jsonref.Pointer, version Version, overrides OverrideMap) (Object, error) {
	if overrides != nil {
		if installed, ok := overrides[ptr.String()]; ok {
			return installed, nil
		}
	}

	obj := meta.New()
	b := obj.base()
	b.init(meta, Identity{URL: docURL, Pointer: ptr, Version: version})

	for _, cm := range meta.Children {
		val, present := raw[cm.Key]
		if !present {
			continue
		}
		built, err := cm.Builder.Build(val, docURL, ptr.Child(cm.Key), version, overrides)
		if err != nil {
			return nil, fmt.Errorf("building %s at %s: %w", cm.Key, ptr.Child(cm.Key), err)
		}
		b.children[cm.Key] = built
	}

	for _, fm := range meta.Fields {
		val, present := raw[fm.Key]
		if !present {
			continue
		}
		if fm.Normalize != nil {
			normalized, err := fm.Normalize(val)
			if err != nil {
				return nil, fmt.Errorf("field %s at %s: %w", fm.Key, ptr, err)
			}
			b.fields[fm.Key] = normalized
			continue
		}
		b.fields[fm.Key] = val
	}

	for key, val := range raw {
		if _, isChild := childKey(meta, key); isChild {
			continue
		}
		if _, isField := fieldKey(meta, key); isField {
			continue
		}
		if strings.HasPrefix(key, "x-") {
			b.extensions[key] = val
		}
		// other unknown keys: ignored.
	}

	return obj, nil
}

// Construct is the exported entry point used by the fetch/app layer to
// build a root object from a freshly parsed untyped tree.
func Construct(meta *ClassMeta, raw map[string]interface{}, docURL string, version Version) (Object, error) {
	return construct(meta, raw, docURL, jsonref.RootPointer(), version, nil)
}

// ConstructWithOverrides is Construct plus an override map, used by the
// 2.0->3.0.0 migrator to seed a freshly-converted root with previously
// prepared sub-objects pulled from the cache.
func ConstructWithOverrides(meta *ClassMeta, raw map[string]interface{}, docURL string, version Version, overrides OverrideMap) (Object, error) {
	return construct(meta, raw, docURL, jsonref.RootPointer(), version, overrides)
}

func childKey(meta *ClassMeta, key string) (ChildMeta, bool) {
	for _, cm := range meta.Children {
		if cm.Key == key {
			return cm, true
		}
	}
	return ChildMeta{}, false
}

func fieldKey(meta *ClassMeta, key string) (FieldMeta, bool) {
	for _, fm := range meta.Fields {
		if fm.Key == key {
			return fm, true
		}
	}
	return FieldMeta{}, false
}

// Resolve descends from root by the tokens of p, checking children first,
// then fields, then internal attributes at each step. It returns the
// final node (an Object, a []Object, a
// map[string]Object, or a plain value) and whether every segment matched.
func Resolve(root Object, p jsonref.Pointer) (interface{}, bool) {
	var cur interface{} = root
	for _, tok := range p.Tokens() {
		next, ok := descend(cur, tok)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// ResolveObject is Resolve plus a type assertion back to Object, for
// callers (the reference resolver) that require a spec object rather than
// an arbitrary node.
func ResolveObject(root Object, p jsonref.Pointer) (Object, bool) {
	node, ok := Resolve(root, p)
	if !ok {
		return nil, false
	}
	obj, ok := node.(Object)
	return obj, ok
}

func descend(cur interface{}, tok string) (interface{}, bool) {
	switch v := cur.(type) {
	case Object:
		b := v.base()
		if child, ok := b.children[tok]; ok {
			return child, true
		}
		if field, ok := b.fields[tok]; ok {
			return field, true
		}
		if internal, ok := b.internal[tok]; ok {
			return internal, true
		}
		return nil, false
	case []Object:
		idx, err := strconv.Atoi(tok)
		if err != nil || idx < 0 || idx >= len(v) {
			return nil, false
		}
		return v[idx], true
	case map[string]Object:
		child, ok := v[tok]
		return child, ok
	default:
		return nil, false
	}
}

// Dump reverses construction, producing an untyped tree keyed by wire
// names (never renamed public names), skipping unset or default-equal
// values.
func Dump(o Object) map[string]interface{} {
	b := o.base()
	out := map[string]interface{}{}

	for _, cm := range b.meta.Children {
		child, ok := b.children[cm.Key]
		if !ok {
			continue
		}
		if dumped := dumpNode(child); dumped != nil {
			out[cm.Key] = dumped
		}
	}

	for _, fm := range b.meta.Fields {
		val, ok := b.fields[fm.Key]
		if !ok {
			continue
		}
		if fm.Default != nil && reflect.DeepEqual(val, fm.Default) {
			continue
		}
		if fm.Denormalize != nil {
			out[fm.Key] = fm.Denormalize(val)
			continue
		}
		out[fm.Key] = val
	}

	for key, val := range b.extensions {
		out[key] = val
	}

	return out
}

func dumpNode(node interface{}) interface{} {
	switch v := node.(type) {
	case Object:
		return Dump(v)
	case []Object:
		arr := make([]interface{}, 0, len(v))
		for _, e := range v {
			arr = append(arr, Dump(e))
		}
		return arr
	case map[string]Object:
		m := make(map[string]interface{}, len(v))
		for k, e := range v {
			m[k] = Dump(e)
		}
		return m
	case bool:
		return v
	default:
		return nil
	}
}

// Compare reports whether a and b dump to equivalent untyped trees,
// modulo key ordering. The returned diff is a human-readable
// pointer-keyed report, empty when equivalent.
func Compare(a, b Object) (bool, string) {
	da, db := Dump(a), Dump(b)
	diff := compareTree(da, db, jsonref.RootPointer())
	return diff == "", diff
}

func compareTree(a, b interface{}, at jsonref.Pointer) string {
	switch av := a.(type) {
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		if !ok {
			return fmt.Sprintf("%s: type mismatch", at)
		}
		for k, v := range av {
			if d := compareTree(v, bv[k], at.Child(k)); d != "" {
				return d
			}
		}
		for k := range bv {
			if _, ok := av[k]; !ok {
				return fmt.Sprintf("%s: missing key %q on left", at, k)
			}
		}
		return ""
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return fmt.Sprintf("%s: array mismatch", at)
		}
		for i := range av {
			if d := compareTree(av[i], bv[i], at.Child(itoa(i))); d != "" {
				return d
			}
		}
		return ""
	default:
		if !reflect.DeepEqual(a, b) {
			return fmt.Sprintf("%s: %v != %v", at, a, b)
		}
		return ""
	}
}

func itoa(i int) string { return strconv.Itoa(i) }

// FieldByPublicName looks up a field by its language-friendly renamed
// name (e.g. "Location" for Parameter's wire key "in"), falling back to
// treating name as a literal wire key if no rename is declared for it.
func FieldByPublicName(o Object, name string) (interface{}, bool) {
	b := o.base()
	wire, ok := b.meta.renamedWire(name)
	if !ok {
		wire = name
	}
	return b.Field(wire)
}

// ChildNode is one direct object-valued child of a node, with its fully
// composed pointer. List and map children are flattened to one ChildNode
// per element/value; map children are emitted in sorted key order so
// scanner traversal is deterministic.
type ChildNode struct {
	Pointer jsonref.Pointer
	Object  Object
}

// Children returns o's direct object-valued children in declaration
// order, the order the construction protocol itself visits them in.
// Bool-valued children (e.g. additionalProperties: false) are omitted
// since they carry no further object structure to traverse.
func Children(o Object) []ChildNode {
	b := o.base()
	var out []ChildNode
	for _, cm := range b.meta.Children {
		v, ok := b.children[cm.Key]
		if !ok {
			continue
		}
		base := b.id.Pointer.Child(cm.Key)
		switch t := v.(type) {
		case Object:
			out = append(out, ChildNode{base, t})
		case []Object:
			for i, e := range t {
				out = append(out, ChildNode{base.Child(itoa(i)), e})
			}
		case map[string]Object:
			keys := make([]string, 0, len(t))
			for k := range t {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				out = append(out, ChildNode{base.Child(k), t[k]})
			}
		}
	}
	return out
}

func errNotAnObject(ptr jsonref.Pointer) error {
	return fmt.Errorf("%s: expected a JSON object", ptr)
}

func errNotAnArray(ptr jsonref.Pointer) error {
	return fmt.Errorf("%s: expected a JSON array", ptr)
}
