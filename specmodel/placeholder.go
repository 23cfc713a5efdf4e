package specmodel

// placeholderMeta describes Placeholder; it declares no fields/children of
// its own since a placeholder never carries real data.
var placeholderMeta = &ClassMeta{
	Name: "Placeholder",
	New:  func() Object { return &Placeholder{} },
}

// Placeholder occupies a cache slot for an object that is still being
// constructed, tolerating reference cycles in the link graph without
// recursing forever. The resolver replaces the cache slot with
// the real object once it lands; a caller holding a Reference into that
// slot observes the final object on its next resolve.
type Placeholder struct {
	Base
}

// NewPlaceholder creates a placeholder with the given identity, ready to
// be deposited into the cache ahead of the real object.
func NewPlaceholder(id Identity) *Placeholder {
	p := &Placeholder{}
	p.init(placeholderMeta, id)
	return p
}

// IsPlaceholder reports whether o is a cyclic-resolution stand-in rather
// than a fully constructed spec object.
func IsPlaceholder(o Object) bool {
	_, ok := o.(*Placeholder)
	return ok
}
