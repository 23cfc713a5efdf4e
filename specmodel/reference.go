package specmodel

// Reference is a spec object whose only wire data is "$ref". After
// resolution, its "ref_obj" internal attribute
// holds a weak (non-owning) view of the target; "normalized_ref" holds
// the absolute "<url>#<pointer>" form computed in resolver phase 1.
type Reference struct {
	Base
}

var referenceMeta = &ClassMeta{
	Name: "Reference",
	Fields: []FieldMeta{
		{Key: "$ref"},
	},
	Renamed: []RenamedMeta{
		{Public: "Ref", Wire: "$ref"},
	},
	Internal: []InternalMeta{
		{Key: "ref_obj"},
		{Key: "normalized_ref"},
	},
	New: func() Object { return &Reference{} },
}

// ReferenceMeta exposes referenceMeta for packages that need to recognize
// or construct a bare Reference node directly. Nothing in this module
// calls it: the reference passes match *Reference by Go type instead.
func ReferenceMeta() *ClassMeta { return referenceMeta }

// Ref returns the raw "$ref" wire value.
func (r *Reference) Ref() string {
	v, _ := r.Field("$ref")
	s, _ := v.(string)
	return s
}

// NormalizedRef returns the absolute "<url>#<pointer>" form installed by
// the resolver's normalization phase, if it has run yet.
func (r *Reference) NormalizedRef() (string, bool) {
	v, ok := r.Internal("normalized_ref")
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, ok
}

// SetNormalizedRef installs the normalized form.
func (r *Reference) SetNormalizedRef(s string) { r.SetInternal("normalized_ref", s) }

// RefObj returns the resolved target, a weak (non-owning) view; the
// cache remains the sole strong owner.
func (r *Reference) RefObj() (Object, bool) {
	v, ok := r.Internal("ref_obj")
	if !ok {
		return nil, false
	}
	obj, ok := v.(Object)
	return obj, ok
}

// SetRefObj installs the resolved target.
func (r *Reference) SetRefObj(o Object) { r.SetInternal("ref_obj", o) }

// IsReference reports whether o is a Reference node.
func IsReference(o Object) bool {
	_, ok := o.(*Reference)
	return ok
}
