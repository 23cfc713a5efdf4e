// Package resolver implements the JSON Reference resolver: it
// normalizes every "$ref" found in a document tree into an absolute
// (url, pointer) form, and resolves each such form to a live spec
// object, loading external documents on demand. Reference cycles are
// tolerated because a reference resolves by descending into an
// already-constructed document tree, never by constructing its target,
// so a cycle of references does not recurse.
package resolver

import (
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"

	"github.com/oaspec/oaspec/cache"
	"github.com/oaspec/oaspec/errdefs"
	"github.com/oaspec/oaspec/jsonref"
	"github.com/oaspec/oaspec/scanner"
	"github.com/oaspec/oaspec/specmodel"
)

var referenceType = scanner.TypeOf[*specmodel.Reference]()

// Loader loads and constructs a document at url at the requested spec
// version, performing fetch+parse+construct (and, for externals, any
// migration toward version) in one step. The app façade supplies an
// implementation backed by fetch.Getter + specmodel.Construct +
// migrate.*; the resolver itself performs no I/O.
type Loader interface {
	Load(url string, version specmodel.Version) (specmodel.Object, error)
}

// BeforeReturn, if supplied to Resolve, post-processes a resolved object
// before it is handed back to the caller; it is also invoked for cache
// hits.
type BeforeReturn func(obj specmodel.Object) (specmodel.Object, error)

// Resolver resolves JSON References against a cache shared with the rest
// of the App. Its placeholder registry is filled only by
// beginCycleTolerant, which Resolve and ResolveRefs do not call.
type Resolver struct {
	Cache  *cache.ObjCache
	Loader Loader
	// Reloc, when set, rewrites a reference's pointer through the
	// relocation chain recorded for its target document:
	// a ref minted against a pre-migration pointer space
	// ("#/definitions/Order") still lands on the node's migrated home
	// ("#/components/schemas/Order").
	Reloc        *cache.Relocations
	placeholders map[string]*specmodel.Placeholder
}

// New creates a Resolver over the given cache and loader.
func New(c *cache.ObjCache, loader Loader) *Resolver {
	return &Resolver{Cache: c, Loader: loader, placeholders: map[string]*specmodel.Placeholder{}}
}

// Resolve resolves the reference string raw to a live spec object.
// siteURL is the document the reference was found in (used to resolve
// same-document/relative refs); version is the target spec version to
// resolve (and, for externals, migrate) to.
func (r *Resolver) Resolve(raw string, siteURL string, version specmodel.Version, before BeforeReturn) (specmodel.Object, error) {
	if raw == "" {
		return nil, errdefs.Reference(errdefs.ReferenceEmpty, raw, nil)
	}

	ref, err := jsonref.Normalize(raw, siteURL)
	if err != nil {
		return nil, errdefs.Reference(errdefs.ReferenceInvalid, raw, err)
	}

	ptr := r.relocated(ref.URL, version, ref.Pointer)
	if obj, ok := r.Cache.Get(cache.Key{URL: ref.URL, Pointer: ptr, Version: version}); ok {
		return r.wrap(obj, before)
	}

	root, err := r.rootFor(ref.URL, version)
	if err != nil {
		return nil, err
	}

	// Loading an external document may have just run its migration and
	// recorded relocation steps this reference needs, so rewrite again.
	ptr = r.relocated(ref.URL, version, ref.Pointer)
	obj, ok := specmodel.ResolveObject(root, ptr)
	if !ok {
		return nil, errdefs.Reference(errdefs.ReferenceUnresolved, raw, nil)
	}
	r.Cache.Put(cache.Key{URL: ref.URL, Pointer: ptr, Version: version}, obj)
	return r.wrap(obj, before)
}

func (r *Resolver) relocated(url string, version specmodel.Version, p jsonref.Pointer) jsonref.Pointer {
	if r.Reloc == nil {
		return p
	}
	return r.Reloc.Resolve(url, version, p)
}

func (r *Resolver) wrap(obj specmodel.Object, before BeforeReturn) (specmodel.Object, error) {
	if before == nil {
		return obj, nil
	}
	return before(obj)
}

// rootFor returns the cached root document for url at version, loading
// (and caching) it via the Loader if this is the first time url has been
// seen.
func (r *Resolver) rootFor(url string, version specmodel.Version) (specmodel.Object, error) {
	rootKey := cache.Key{URL: url, Pointer: jsonref.RootPointer(), Version: version}
	if root, ok := r.Cache.Get(rootKey); ok {
		return root, nil
	}
	if r.Loader == nil {
		return nil, errdefs.Fetch(fmt.Errorf("resolver: no loader configured for external document %s", url))
	}
	logrus.WithFields(logrus.Fields{"url": url, "version": version}).Debug("resolver: loading external document")
	root, err := r.Loader.Load(url, version)
	if err != nil {
		return nil, errdefs.Fetch(err)
	}
	r.Cache.Put(rootKey, root)
	return root, nil
}

// beginCycleTolerant deposits a Placeholder at key ahead of constructing
// the real object there, so a reference that loops back through key
// during construction resolves to the placeholder instead of recursing
// forever.
func (r *Resolver) beginCycleTolerant(key cache.Key) *specmodel.Placeholder {
	id := specmodel.Identity{URL: key.URL, Pointer: key.Pointer, Version: key.Version}
	p := specmodel.NewPlaceholder(id)
	r.Cache.Put(key, p)
	r.placeholders[key.URL+key.Pointer.String()+key.Version.String()] = p
	return p
}

// finishCycleTolerant installs the real object at key, completing any
// placeholder previously deposited there. References whose ref_obj
// already points at the placeholder continue to observe it directly;
// the placeholder itself is never mutated in place. Callers that want
// the final object must re-Resolve or consult the cache, which now
// reports obj at key.
func (r *Resolver) finishCycleTolerant(key cache.Key, obj specmodel.Object) {
	r.Cache.Put(key, obj)
	delete(r.placeholders, key.URL+key.Pointer.String()+key.Version.String())
}

// NormalizeRefs runs the first reference pass: it rewrites every
// Reference node under root to carry its absolute "<url>#<pointer>"
// normalized form in normalized_ref, relative to docURL (the document
// root was constructed against). A node already carrying a normalized
// form is left alone: the migrator relocates normalized refs through
// its relocation map, and re-deriving them from the raw "$ref" here
// would undo that rewrite.
func NormalizeRefs(root specmodel.Object, docURL string) error {
	route := scanner.NewRoute(scanner.Visitor{
		Name:       "normalize-ref",
		ExactTypes: []reflect.Type{referenceType},
		Handle: func(ptr jsonref.Pointer, node specmodel.Object, app interface{}) (scanner.VisitAction, error) {
			ref, ok := node.(*specmodel.Reference)
			if !ok {
				return scanner.Continue, nil
			}
			if _, done := ref.NormalizedRef(); done {
				return scanner.Continue, nil
			}
			normalized, err := jsonref.Normalize(ref.Ref(), docURL)
			if err != nil {
				return scanner.Continue, errdefs.Reference(errdefs.ReferenceInvalid, ref.Ref(), err)
			}
			ref.SetNormalizedRef(normalized.String())
			return scanner.Continue, nil
		},
	})
	s := scanner.NewSnapshotting(scanner.Options{})
	err := s.Walk(root, route, nil)
	if err != nil && !scanner.IsStop(err) {
		return err
	}
	return nil
}

// ResolveRefs runs the second reference pass: for every Reference node under
// root, resolve its normalized_ref via r and install the target as the
// node's ref_obj (weak link).
func (r *Resolver) ResolveRefs(root specmodel.Object, version specmodel.Version) error {
	route := scanner.NewRoute(scanner.Visitor{
		Name:       "resolve-ref",
		ExactTypes: []reflect.Type{referenceType},
		Handle: func(ptr jsonref.Pointer, node specmodel.Object, app interface{}) (scanner.VisitAction, error) {
			ref, ok := node.(*specmodel.Reference)
			if !ok {
				return scanner.Continue, nil
			}
			normalized, ok := ref.NormalizedRef()
			if !ok {
				normalized = ref.Ref()
			}
			target, err := r.Resolve(normalized, "", version, nil)
			if err != nil {
				return scanner.Continue, err
			}
			ref.SetRefObj(target)
			return scanner.Continue, nil
		},
	})
	s := scanner.NewSnapshotting(scanner.Options{})
	err := s.Walk(root, route, nil)
	if err != nil && !scanner.IsStop(err) {
		return err
	}
	return nil
}
