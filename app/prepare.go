package app

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oaspec/oaspec/cache"
	"github.com/oaspec/oaspec/errdefs"
	"github.com/oaspec/oaspec/jsonref"
	"github.com/oaspec/oaspec/migrate/v12to20"
	"github.com/oaspec/oaspec/migrate/v20to30"
	"github.com/oaspec/oaspec/resolver"
	"github.com/oaspec/oaspec/specmodel"
	"github.com/oaspec/oaspec/validate"
)

// Prepare runs migrate -> resolve -> validate and reaches Prepared. A
// failing Prepare leaves the App at Loaded, never at a partial Prepared
// state.
func (a *App) Prepare(strict bool) error {
	if err := a.requireState(Loaded); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.migrateLocked(a.opts.defaultTargetVersion); err != nil {
		logrus.WithField("url", a.rootURL).WithError(err).Warn("app: prepare failed during migrate")
		return err
	}

	if err := resolver.NormalizeRefs(a.root, a.rootURL); err != nil {
		logrus.WithField("url", a.rootURL).WithError(err).Warn("app: prepare failed during reference normalization")
		return err
	}
	if err := a.resolver.ResolveRefs(a.root, a.currentVersion); err != nil {
		logrus.WithField("url", a.rootURL).WithError(err).Warn("app: prepare failed during reference resolution")
		return err
	}

	if swagger, ok := a.root.(*specmodel.Swagger); ok {
		resolveInheritedLocked(swagger)
	}

	result := validate.Validate(a.root, a.currentVersion)
	a.buildIndexesLocked()
	if a.modelIndex != nil {
		result.Merge(validate.DetectSchemaCycles(a.modelIndex))
	}

	if strict {
		if err := result.Err(); err != nil {
			logrus.WithField("url", a.rootURL).WithError(err).Warn("app: prepare failed validation in strict mode")
			return err
		}
	} else if result.HasErrors() {
		logrus.WithField("url", a.rootURL).WithField("findings", len(result.Findings())).Debug("app: prepare completed with non-fatal findings")
	}

	a.state = Prepared
	return nil
}

// migrateLocked carries a.root from whatever version it is currently at
// up to target, running the 1.2->2.0 wholesale transform first (if the
// root is still a bare ResourceListing/declaration set) and then the
// 2.0->3.0.0 per-node migrator, recording relocations as it goes. The
// caller must hold a.mu.
func (a *App) migrateLocked(target specmodel.Version) error {
	if a.currentVersion.Compare(target) > 0 {
		return errdefs.UnsupportedVersionf("cannot migrate %s from %s down to %s", a.rootURL, a.currentVersion, target)
	}

	if a.listing != nil || (a.root == nil && a.declarations != nil) {
		if target.Compare(specmodel.V2_0) < 0 {
			return nil
		}
		swagger, err := v12to20.Migrate(a.listing, a.declarations, a.rootURL, v12to20.Options{ScopeSeparator: a.opts.scopeSeparator})
		if err != nil {
			return err
		}
		a.root = swagger
		a.currentVersion = specmodel.V2_0
		a.listing = nil
		a.declarations = nil
		a.cache.Put(cache.Key{URL: a.rootURL, Pointer: jsonref.RootPointer(), Version: specmodel.V2_0}, swagger)
	}

	if a.currentVersion == specmodel.V2_0 && target.Compare(specmodel.V3_0_0) >= 0 {
		swagger, ok := a.root.(*specmodel.Swagger)
		if !ok {
			return errdefs.Schemaf("%s: expected a Swagger 2.0 root to migrate to 3.0.0", a.rootURL)
		}
		openapi, err := v20to30.Migrate(swagger, a.rootURL, a.cache, a.reloc, loaderAdapter{a})
		if err != nil {
			return err
		}
		a.root = openapi
		a.currentVersion = specmodel.V3_0_0
	}

	return nil
}

// resolveInheritedLocked populates every 2.0 Operation's cached
// final_schemes/final_consumes/final_produces lists from the root
// Swagger: an Operation omitting those fields inherits the
// document-level ones. Only applies when preparation targets 2.0; the
// 3.0.0 migrator folds the same inheritance into content media types
// instead.
func resolveInheritedLocked(swagger *specmodel.Swagger) {
	for _, pathObj := range swagger.Paths() {
		pathItem, ok := pathObj.(*specmodel.PathItem)
		if !ok {
			continue
		}
		for _, op := range pathItem.Operations() {
			op.ResolveInherited(swagger)
		}
	}
}

// buildIndexesLocked populates opIndex/modelIndex from the current root,
// backing App.Op/App.Model. The caller must hold a.mu.
func (a *App) buildIndexesLocked() {
	switch root := a.root.(type) {
	case *specmodel.OpenAPI:
		a.opIndex = validate.OperationIndex(root)
		a.modelIndex = map[string]*specmodel.Schema{}
		if components, ok := root.Components(); ok {
			if c, ok := components.(*specmodel.Components); ok {
				for name, obj := range c.Schemas() {
					if s, ok := obj.(*specmodel.Schema); ok {
						a.modelIndex[name] = s
					}
				}
			}
		}
	case *specmodel.Swagger:
		a.modelIndex = map[string]*specmodel.Schema{}
		for name, obj := range root.Definitions() {
			if s, ok := obj.(*specmodel.Schema); ok {
				a.modelIndex[name] = s
			}
		}
	}
}

// Migrate re-runs migration to a different target version. Valid once
// the App has reached Loaded; calling it again after Prepare re-targets
// the already-prepared root (moving back down is rejected, up is
// allowed).
func (a *App) Migrate(target specmodel.Version) error {
	if err := a.requireAtLeast(Loaded); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.migrateLocked(target)
}

// Resolve resolves a JSON Reference, defaulting to the App's current
// version when targetVersion is omitted; the App's own root document is
// the resolve site.
func (a *App) Resolve(ref string, before resolver.BeforeReturn, targetVersion ...specmodel.Version) (specmodel.Object, error) {
	if err := a.requireAtLeast(Loaded); err != nil {
		return nil, err
	}
	a.mu.RLock()
	siteURL := a.rootURL
	version := a.currentVersion
	if len(targetVersion) > 0 {
		version = targetVersion[0]
	}
	a.mu.RUnlock()
	return a.resolver.Resolve(ref, siteURL, version, before)
}

// Dump reverses the typed root back to an untyped tree. Before the
// 1.2->2.0 transform has run, the root is still a bare ResourceListing
// with no merged declarations, so Dump reports that listing document
// instead.
func (a *App) Dump() (map[string]interface{}, error) {
	if err := a.requireAtLeast(Loaded); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.root != nil {
		return specmodel.Dump(a.root), nil
	}
	if a.listing != nil {
		return specmodel.Dump(a.listing), nil
	}
	return nil, errdefs.Validation(errdefs.ErrWrongState)
}

// Root returns the current typed root object, the caller's weak view
// into the cache-owned object graph.
func (a *App) Root() specmodel.Object {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.root
}

// Version reports the spec version the current root is at.
func (a *App) Version() specmodel.Version {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.currentVersion
}

// OriginalVersion reports the spec version the document was originally
// authored at, before any migration ran.
func (a *App) OriginalVersion() specmodel.Version {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.originalVersion
}

// DefaultStrict reports the strict-mode flag seeded by WithStrict (false
// unless overridden), for callers that want one place to read it from
// rather than threading a flag of their own down to Prepare.
func (a *App) DefaultStrict() bool { return a.opts.strict }

// Relocations exposes the App's relocation map, so a caller holding a
// legacy pointer into a pre-migration document can ask where that node
// lives now.
func (a *App) Relocations() *cache.Relocations { return a.reloc }

// Model looks up a Schema by its qualified definitions/components name:
// 2.0 definitions keys, 3.0.0 components/schemas
// keys, or a 1.2 resource-qualified "<Resource><sep><ModelId>" key, all
// already flattened into one namespace by the time Prepare has run.
func (a *App) Model(name string) (*specmodel.Schema, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s, ok := a.modelIndex[name]
	return s, ok
}

// Op looks up an Operation30 by "tag<sep>operationId". Passing just an
// operationId (no separator) succeeds only if exactly one tag carries
// that operationId.
func (a *App) Op(query string) (*specmodel.Operation30, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	sep := a.opts.scopeSeparator
	if idx := strings.Index(query, sep); idx >= 0 {
		tag, opID := query[:idx], query[idx+len(sep):]
		op, ok := a.opIndex[validate.OperationKey{Tag: tag, OperationID: opID}]
		return op, ok
	}

	var found *specmodel.Operation30
	matches := 0
	for k, op := range a.opIndex {
		if k.OperationID == query {
			found = op
			matches++
		}
	}
	if matches == 1 {
		return found, true
	}
	return nil, false
}
