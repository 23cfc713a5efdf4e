package app

import (
	"net/http"
	"time"

	"github.com/oaspec/oaspec/fetch"
	"github.com/oaspec/oaspec/specmodel"
)

// Option configures an App at construction time.
type Option func(*options)

type options struct {
	getter               fetch.Getter
	scopeSeparator       string
	defaultTargetVersion specmodel.Version
	strict               bool
}

func defaultOptions() options {
	return options{
		getter: fetch.ChainGetter{
			Next: chainByScheme{},
		},
		scopeSeparator:       "##",
		defaultTargetVersion: specmodel.V3_0_0,
		strict:               false,
	}
}

// WithGetter overrides the document Getter used for every fetch (root
// load, external "$ref" documents, 1.2 per-resource declarations).
func WithGetter(g fetch.Getter) Option {
	return func(o *options) { o.getter = g }
}

// WithURLLoadHook installs a URL-remapping hook ahead of the configured
// Getter; tests use it to point fixture URLs at local documents.
func WithURLLoadHook(hook fetch.HookFunc) Option {
	return func(o *options) {
		o.getter = fetch.ChainGetter{Hook: hook, Next: o.getter}
	}
}

// WithHTTPClient installs a custom *http.Client for the http/https branch
// of the default Getter. It replaces whatever Getter is configured at
// that point with a fresh default Getter, so a Getter or hook installed
// by an earlier WithGetter/WithURLLoadHook is discarded; a later
// WithGetter in turn replaces this one.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.getter = fetch.ChainGetter{Next: chainByScheme{httpClient: client}}
	}
}

// WithTimeout is a convenience over WithHTTPClient for the common case of
// only needing to bound request duration; it replaces the configured
// Getter the same way WithHTTPClient does.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.getter = fetch.ChainGetter{Next: chainByScheme{httpClient: &http.Client{Timeout: d}}}
	}
}

// WithScopeSeparator overrides the 1.2 resource-scope/model-id join
// string used when flattening 1.2 models into 2.0 definitions keys
// (default "##").
func WithScopeSeparator(sep string) Option {
	return func(o *options) { o.scopeSeparator = sep }
}

// WithDefaultTargetVersion overrides the version Prepare migrates to
// (default 3.0.0).
func WithDefaultTargetVersion(v specmodel.Version) Option {
	return func(o *options) { o.defaultTargetVersion = v }
}

// WithStrict seeds the App's DefaultStrict value. Prepare itself always
// takes strict explicitly; this option exists so a
// cmd/specctl invocation can configure strictness once, at App
// construction, and read it back via App.DefaultStrict rather than
// threading a flag through to every Prepare call site.
func WithStrict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// chainByScheme is the default Getter: dispatches to fetch.FileGetter or
// fetch.HTTPGetter by the URL's scheme.
type chainByScheme struct {
	httpClient *http.Client
}

func (c chainByScheme) Load(rawURL string) ([]byte, fetch.ContentHint, error) {
	if isHTTPURL(rawURL) {
		return fetch.HTTPGetter{Client: c.httpClient}.Load(rawURL)
	}
	return fetch.FileGetter{}.Load(rawURL)
}

func isHTTPURL(u string) bool {
	return len(u) > 7 && (u[:7] == "http://" || (len(u) > 8 && u[:8] == "https://"))
}
