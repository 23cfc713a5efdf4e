// Package app implements the App façade: it orchestrates fetch -> typed
// construction -> migration -> reference resolution -> validation behind
// the Created -> Loaded -> Prepared lifecycle, and is the one exported
// entry point the rest of the system's packages are wired together
// through: a single struct, functional options, and small interface
// seams (Getter, Loader) rather than per-version sub-clients — version
// is data, not API surface.
package app

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/oaspec/oaspec/cache"
	"github.com/oaspec/oaspec/errdefs"
	"github.com/oaspec/oaspec/fetch"
	"github.com/oaspec/oaspec/jsonref"
	"github.com/oaspec/oaspec/migrate/v12to20"
	"github.com/oaspec/oaspec/migrate/v20to30"
	"github.com/oaspec/oaspec/resolver"
	"github.com/oaspec/oaspec/specmodel"
	"github.com/oaspec/oaspec/validate"
)

// State is the App's position in its lifecycle.
type State int

const (
	Created State = iota
	Loaded
	Prepared
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Loaded:
		return "loaded"
	case Prepared:
		return "prepared"
	default:
		return "unknown"
	}
}

// App loads, migrates, resolves, and validates one root document and
// answers lookups against the result. The zero value is not usable;
// construct one with New.
type App struct {
	opts options

	mu              sync.RWMutex
	state           State
	rootURL         string
	originalVersion specmodel.Version
	currentVersion  specmodel.Version
	root            specmodel.Object // current root, at currentVersion

	// Populated only while the root is still Swagger 1.2 (no single root
	// object exists yet; the 1.2 document is a listing plus N
	// declarations until the wholesale 1.2->2.0 transform runs).
	listing      *specmodel.ResourceListing
	declarations map[string]*specmodel.ApiDeclaration

	cache    *cache.ObjCache
	reloc    *cache.Relocations
	resolver *resolver.Resolver

	opIndex    map[validate.OperationKey]*specmodel.Operation30
	modelIndex map[string]*specmodel.Schema
}

// New creates an App configured by opts. The returned App starts in the
// Created state; call Load to reach Loaded.
func New(opts ...Option) *App {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	a := &App{
		opts:           o,
		state:          Created,
		currentVersion: o.defaultTargetVersion,
		cache:          cache.New(),
		reloc:          cache.NewRelocations(),
	}
	a.resolver = resolver.New(a.cache, loaderAdapter{a})
	a.resolver.Reloc = a.reloc
	return a
}

// loaderAdapter satisfies resolver.Loader by delegating to App.loadExternal,
// kept as a separate type since App's own public Load(url string) error
// and the Loader interface's Load(url, version) method cannot share one
// method name on the same receiver.
type loaderAdapter struct{ app *App }

func (l loaderAdapter) Load(url string, version specmodel.Version) (specmodel.Object, error) {
	return l.app.loadExternal(url, version)
}

func (a *App) requireState(want State) error {
	a.mu.RLock()
	got := a.state
	a.mu.RUnlock()
	if got != want {
		return errdefs.Validation(fmt.Errorf("%w: want %s, have %s", errdefs.ErrWrongState, want, got))
	}
	return nil
}

func (a *App) requireAtLeast(want State) error {
	a.mu.RLock()
	got := a.state
	a.mu.RUnlock()
	if got < want {
		return errdefs.Validation(fmt.Errorf("%w: want at least %s, have %s", errdefs.ErrWrongState, want, got))
	}
	return nil
}

// State reports the App's current lifecycle state.
func (a *App) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Load fetches and constructs the root document at url, carrying the
// App from Created to Loaded. The getter/hook are supplied at App
// construction via WithGetter/WithURLLoadHook rather than per-call,
// since every subsequent external
// document fetch during resolve/migrate must use the same collaborators.
func (a *App) Load(url string) error {
	if err := a.requireState(Created); err != nil {
		return err
	}

	normalized, err := jsonref.NormalizeURL(url)
	if err != nil {
		return errdefs.Fetch(err)
	}

	logrus.WithField("url", normalized).Debug("app: loading root document")

	root, version, err := a.loadRaw(normalized)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.rootURL = normalized
	a.originalVersion = version
	a.currentVersion = version
	switch v := root.(type) {
	case *specmodel.ResourceListing:
		a.listing = v
		if err := a.loadDeclarationsLocked(); err != nil {
			return err
		}
	case *specmodel.ApiDeclaration:
		// A bare 1.2 ApiDeclaration loaded as the root document (no
		// ResourceListing index above it): treat it as the sole
		// declaration migrateLocked folds into 2.0, same as the normal
		// listing+declarations case but with nothing to index by.
		a.declarations = map[string]*specmodel.ApiDeclaration{v.ResourcePath(): v}
	case specmodel.Object:
		a.root = v
		a.cache.Put(cache.Key{URL: normalized, Pointer: jsonref.RootPointer(), Version: version}, v)
	}
	a.state = Loaded
	return nil
}

// loadRaw fetches, parses, detects the spec version, and constructs the
// appropriate root class, without running any migration.
func (a *App) loadRaw(url string) (specmodel.Object, specmodel.Version, error) {
	tree, err := fetch.FetchAndParse(a.opts.getter, url)
	if err != nil {
		return nil, 0, err
	}
	return constructRaw(tree, url)
}

func constructRaw(tree map[string]interface{}, url string) (specmodel.Object, specmodel.Version, error) {
	switch detectKind(tree) {
	case kindResourceListing:
		obj, err := specmodel.Construct(specmodel.ResourceListingMeta(), tree, url, specmodel.V1_2)
		if err != nil {
			return nil, 0, errdefs.Schema(err)
		}
		return obj, specmodel.V1_2, nil
	case kindApiDeclaration:
		obj, err := specmodel.Construct(specmodel.ApiDeclarationMeta(), tree, url, specmodel.V1_2)
		if err != nil {
			return nil, 0, errdefs.Schema(err)
		}
		return obj, specmodel.V1_2, nil
	case kindSwagger20:
		obj, err := specmodel.Construct(specmodel.SwaggerMeta(), tree, url, specmodel.V2_0)
		if err != nil {
			return nil, 0, errdefs.Schema(err)
		}
		return obj, specmodel.V2_0, nil
	case kindOpenAPI30:
		obj, err := specmodel.Construct(specmodel.OpenAPIMeta(), tree, url, specmodel.V3_0_0)
		if err != nil {
			return nil, 0, errdefs.Schema(err)
		}
		return obj, specmodel.V3_0_0, nil
	default:
		return nil, 0, errdefs.UnsupportedVersionf("cannot determine spec version of %s", url)
	}
}

// loadDeclarationsLocked fetches every ApiDeclaration named by
// a.listing.Apis(), keyed by ApiDeclaration.ResourcePath() as
// migrate/v12to20.Migrate expects. Callers must hold a.mu.
func (a *App) loadDeclarationsLocked() error {
	a.declarations = map[string]*specmodel.ApiDeclaration{}
	for _, apiRefObj := range a.listing.Apis() {
		apiRef, ok := apiRefObj.(*specmodel.ApiRef)
		if !ok {
			continue
		}
		declURL, err := jsonref.URLJoin(a.rootURL, apiRef.Path())
		if err != nil {
			return errdefs.Fetch(err)
		}
		tree, err := fetch.FetchAndParse(a.opts.getter, declURL)
		if err != nil {
			return err
		}
		declObj, err := specmodel.Construct(specmodel.ApiDeclarationMeta(), tree, declURL, specmodel.V1_2)
		if err != nil {
			return errdefs.Schema(err)
		}
		decl := declObj.(*specmodel.ApiDeclaration)
		a.declarations[decl.ResourcePath()] = decl
	}
	return nil
}

// detectKind classifies an untyped tree by its version marker,
// distinguishing the two Swagger 1.2 document shapes (1.2 splits a
// document across a resource listing and per-resource declarations).
type docKind int

const (
	kindUnknown docKind = iota
	kindResourceListing
	kindApiDeclaration
	kindSwagger20
	kindOpenAPI30
)

func detectKind(tree map[string]interface{}) docKind {
	if sv, ok := tree["swaggerVersion"]; ok && fmt.Sprint(sv) == "1.2" {
		if _, hasResourcePath := tree["resourcePath"]; hasResourcePath {
			return kindApiDeclaration
		}
		return kindResourceListing
	}
	if sw, ok := tree["swagger"]; ok && fmt.Sprint(sw) == "2.0" {
		return kindSwagger20
	}
	if oa, ok := tree["openapi"]; ok && strings.HasPrefix(fmt.Sprint(oa), "3.") {
		return kindOpenAPI30
	}
	return kindUnknown
}

// loadExternal backs loaderAdapter: it is how the resolver fetches an
// external document the first time some "$ref" names it, constructing
// the external root at its own version and migrating it up to version
// before handing it back.
func (a *App) loadExternal(externalURL string, version specmodel.Version) (specmodel.Object, error) {
	root, sourceVersion, err := a.loadRaw(externalURL)
	if err != nil {
		return nil, err
	}
	if sourceVersion.Compare(version) > 0 {
		return nil, errdefs.UnsupportedVersionf("external document %s is at %s, newer than requested target %s", externalURL, sourceVersion, version)
	}
	return a.migrateTo(root, externalURL, sourceVersion, version)
}

// migrateTo runs whichever migration steps are needed to carry root from
// its source version up to target, chaining the two migrators in order;
// a no-op if the versions already match.
func (a *App) migrateTo(root specmodel.Object, url string, source, target specmodel.Version) (specmodel.Object, error) {
	if source.Compare(target) > 0 {
		return nil, errdefs.UnsupportedVersionf("cannot migrate %s from %s down to %s", url, source, target)
	}

	cur := root
	curVersion := source
	if curVersion == specmodel.V1_2 && target.Compare(specmodel.V2_0) >= 0 {
		// External Swagger 1.2 documents are rare (1.2's split-document
		// shape does not compose across "$ref" the way 2.0/3.0.0 do), so a
		// lone 1.2 ApiDeclaration reached via external $ref migrates
		// standalone, with no sibling declarations to merge in.
		decl, ok := cur.(*specmodel.ApiDeclaration)
		if !ok {
			return nil, errdefs.Schemaf("external Swagger 1.2 reference %s must name an ApiDeclaration", url)
		}
		swagger, err := v12to20.Migrate(nil, map[string]*specmodel.ApiDeclaration{decl.ResourcePath(): decl}, url, v12to20.Options{ScopeSeparator: a.opts.scopeSeparator})
		if err != nil {
			return nil, err
		}
		cur = swagger
		curVersion = specmodel.V2_0
		a.cache.Put(cache.Key{URL: url, Pointer: jsonref.RootPointer(), Version: curVersion}, cur)
	}
	if curVersion == specmodel.V2_0 && target.Compare(specmodel.V3_0_0) >= 0 {
		swagger, ok := cur.(*specmodel.Swagger)
		if !ok {
			return nil, errdefs.Schemaf("%s: expected a Swagger 2.0 root to migrate to 3.0.0", url)
		}
		openapi, err := v20to30.Migrate(swagger, url, a.cache, a.reloc, loaderAdapter{a})
		if err != nil {
			return nil, err
		}
		cur = openapi
		curVersion = specmodel.V3_0_0
	}
	return cur, nil
}
