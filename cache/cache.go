// Package cache implements the prepared-object cache and the relocation
// map composed across migration steps. The cache is the sole strong
// owner of every spec object it holds; every other reference into the
// object graph (a Reference's ref_obj, a migration's override map) is a
// weak, non-owning view.
package cache

import (
	"errors"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/oaspec/oaspec/jsonref"
	"github.com/oaspec/oaspec/specmodel"
)

// errRemoveUnderRoot is returned by RemoveUnder when asked to bulk-remove
// an entire document's cache entries via the root pointer.
var errRemoveUnderRoot = errors.New("cache: RemoveUnder forbids the empty/root pointer")

// Key identifies one cache slot: a document URL, a pointer within it, and
// the spec version the object at that pointer was constructed at (the
// same pointer in the same document can be cached once per version, since
// migration produces a parallel tree rather than mutating in place).
type Key struct {
	URL     string
	Pointer jsonref.Pointer
	Version specmodel.Version
}

func (k Key) versionKey() string { return k.URL + "\x00" + k.Version.String() }

// entry pairs a stored object with the token length of its pointer, kept
// alongside so ObjCache.Get's longest-prefix scan doesn't recompute it.
type entry struct {
	pointer jsonref.Pointer
	depth   int
	obj     specmodel.Object
}

// ObjCache is the prepared-object cache. Lookups resolve by longest
// matching pointer prefix (the deepest already-cached ancestor wins,
// with the remaining pointer suffix resolved locally off of it), so
// caching a root document also implicitly caches every sub-object
// reachable from it without a separate cache entry per node.
type ObjCache struct {
	mu   sync.RWMutex
	byVK map[string][]entry // versionKey() -> entries, unsorted order of insertion
}

// New creates an empty cache.
func New() *ObjCache {
	return &ObjCache{byVK: map[string][]entry{}}
}

// Put installs obj at key, evicting any existing entry at the exact same
// pointer (a re-resolve replacing a placeholder, most commonly).
func (c *ObjCache) Put(key Key, obj specmodel.Object) {
	c.mu.Lock()
	defer c.mu.Unlock()
	vk := key.versionKey()
	entries := c.byVK[vk]
	for i, e := range entries {
		if e.pointer.String() == key.Pointer.String() {
			entries[i] = entry{pointer: key.Pointer, depth: len(key.Pointer.Tokens()), obj: obj}
			return
		}
	}
	c.byVK[vk] = append(entries, entry{pointer: key.Pointer, depth: len(key.Pointer.Tokens()), obj: obj})
}

// Get resolves key by finding the deepest cached ancestor pointer (prefix
// match) in the same document+version and descending the remainder
// locally via specmodel.Resolve. It returns false if no ancestor,
// including key's own pointer, has been cached.
func (c *ObjCache) Get(key Key) (specmodel.Object, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	best, ok := c.longestPrefix(key.versionKey(), key.Pointer)
	if !ok {
		return nil, false
	}
	if best.pointer.String() == key.Pointer.String() {
		return best.obj, true
	}
	rest := key.Pointer.TrimPrefix(best.pointer)
	node, ok := specmodel.Resolve(best.obj, rest)
	if !ok {
		return nil, false
	}
	obj, ok := node.(specmodel.Object)
	return obj, ok
}

// longestPrefix scans entries for vk and returns the one whose pointer is
// a prefix of p with the greatest token depth (most specific match). The
// longest-prefix choice is logged at Debug when more than one candidate
// matched, so the tie-break stays observable.
func (c *ObjCache) longestPrefix(vk string, p jsonref.Pointer) (entry, bool) {
	var best entry
	found := false
	matches := 0
	for _, e := range c.byVK[vk] {
		if !p.HasPrefix(e.pointer) {
			continue
		}
		matches++
		if !found || e.depth > best.depth {
			best, found = e, true
		}
	}
	if matches > 1 {
		logrus.WithFields(logrus.Fields{
			"pointer":    p.String(),
			"candidates": matches,
			"chosen":     best.pointer.String(),
		}).Debug("cache: multiple prefix matches, using longest")
	}
	return best, found
}

// GetUnder returns every cached object (at this key's own document and
// version) whose pointer is key.Pointer or a descendant of it, keyed by
// the remainder pointer relative to key.Pointer. Unlike Get it never
// synthesizes an object via local resolution: it only reports pointers
// that were independently Put into the cache.
func (c *ObjCache) GetUnder(key Key) map[string]specmodel.Object {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := map[string]specmodel.Object{}
	for _, e := range c.byVK[key.versionKey()] {
		if e.pointer.HasPrefix(key.Pointer) {
			out[e.pointer.TrimPrefix(key.Pointer).String()] = e.obj
		}
	}
	return out
}

// RemoveUnder evicts every entry at or below key.Pointer in the same
// document+version, returning how many were removed. No package in this
// module calls it; the 2.0->3.0.0 migrator overwrites its partial-root
// entry with Put instead.
//
// Removing the whole document this way is forbidden: callers that mean
// to retire an entire document's cache entries must do so deliberately,
// not via a bulk subtree removal rooted at "#".
func (c *ObjCache) RemoveUnder(key Key) (int, error) {
	if key.Pointer.IsRoot() {
		return 0, errRemoveUnderRoot
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	vk := key.versionKey()
	entries := c.byVK[vk]
	kept := entries[:0]
	removed := 0
	for _, e := range entries {
		if e.pointer.HasPrefix(key.Pointer) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	c.byVK[vk] = kept
	logrus.WithFields(logrus.Fields{"pointer": key.Pointer.String(), "removed": removed}).Debug("cache: removed subtree entries")
	return removed, nil
}

// Pointers returns every pointer cached for key's document+version,
// sorted lexically; used by tests asserting cache contents
// deterministically.
func (c *ObjCache) Pointers(url string, version specmodel.Version) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	k := Key{URL: url, Version: version}
	entries := c.byVK[k.versionKey()]
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.pointer.String()
	}
	sort.Strings(out)
	return out
}

// Relocations composes pointer rewrites across a chain of migration
// steps, per document: each step records where a node that used to live
// at an old pointer now lives at a new one, and Resolve
// walks the chain so a reference minted against the pre-migration
// document still finds its target in the migrated one. Steps from
// different documents never interact, since the same pointer (say
// "#/definitions/Pet") can relocate independently in each.
type relocStep struct {
	version  specmodel.Version // the version this step migrated TO
	rewrites map[string]string // old pointer string -> new pointer string
}

type Relocations struct {
	mu    sync.RWMutex
	byURL map[string][]relocStep
}

// NewRelocations creates an empty relocation map.
func NewRelocations() *Relocations {
	return &Relocations{byURL: map[string][]relocStep{}}
}

// AddStep appends one migration step's pointer rewrites (old -> new,
// both as Pointer.String() forms) for the document at url. version is
// the spec version the step migrated the document to.
func (r *Relocations) AddStep(url string, version specmodel.Version, rewrites map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	step := relocStep{version: version, rewrites: make(map[string]string, len(rewrites))}
	for k, v := range rewrites {
		step.rewrites[k] = v
	}
	r.byURL[url] = append(r.byURL[url], step)
}

// Resolve walks p through every step recorded for url whose target
// version is at or below version, in recording order, rewriting it at
// each step that has an exact match, and returns the final pointer; the
// chain composes. A pointer untouched by a given step passes through
// unchanged at that step.
func (r *Relocations) Resolve(url string, version specmodel.Version, p jsonref.Pointer) jsonref.Pointer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cur := p.String()
	for _, step := range r.byURL[url] {
		if step.version.Compare(version) > 0 {
			continue
		}
		if next, ok := step.rewrites[cur]; ok {
			cur = next
		}
	}
	return jsonref.SplitPointer(cur)
}

// Steps reports how many migration steps have been recorded for url,
// used by tests asserting the chain grew as expected.
func (r *Relocations) Steps(url string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byURL[url])
}
