// Package fetch retrieves raw specification document bytes by URL and
// turns them into the untyped JSON tree specmodel.Construct consumes.
// It performs the only I/O in the system; everything
// downstream (specmodel, cache, resolver, migrate, validate) is pure.
package fetch

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/go-openapi/swag"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/oaspec/oaspec/errdefs"
)

// ContentHint tells the caller which parser to use on the retrieved
// bytes: "json" is the default, "yaml" is typical for hand-authored
// documents.
type ContentHint string

const (
	HintJSON ContentHint = "json"
	HintYAML ContentHint = "yaml"
)

// Getter retrieves raw bytes and a content hint for a URL. It is the
// seam embedders replace to control how documents are fetched.
type Getter interface {
	Load(url string) ([]byte, ContentHint, error)
}

// HookFunc lets tests remap a URL before it reaches the underlying
// Getter.
type HookFunc func(url string) string

// ChainGetter applies hook (if non-nil) before delegating to next.
type ChainGetter struct {
	Hook HookFunc
	Next Getter
}

func (c ChainGetter) Load(u string) ([]byte, ContentHint, error) {
	if c.Hook != nil {
		u = c.Hook(u)
	}
	return c.Next.Load(u)
}

// FileGetter reads from the local filesystem for "file" scheme URLs.
type FileGetter struct{}

func (FileGetter) Load(rawURL string) ([]byte, ContentHint, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", errdefs.Fetch(errors.Wrapf(err, "parsing file url %q", rawURL))
	}
	path := u.Path
	if path == "" {
		path = rawURL
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", errdefs.Fetch(errors.Wrapf(err, "reading %q", path))
	}
	return data, hintFromPath(path), nil
}

// HTTPGetter retrieves documents over http(s), following redirects until
// the request chain reaches MaxRedirects requests (the same count
// net/http's default policy uses), i.e. at most MaxRedirects-1
// redirects. A zero MaxRedirects means the default of 10.
type HTTPGetter struct {
	Client       *http.Client
	MaxRedirects int
}

const defaultMaxRedirects = 10

func (g HTTPGetter) Load(rawURL string) ([]byte, ContentHint, error) {
	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	maxRedirects := g.MaxRedirects
	if maxRedirects == 0 {
		maxRedirects = defaultMaxRedirects
	}
	limited := &http.Client{
		Transport: client.Transport,
		Timeout:   client.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errdefs.Fetch(errors.Errorf("stopped after %d redirects", maxRedirects))
			}
			return nil
		},
	}

	resp, err := limited.Get(rawURL)
	if err != nil {
		return nil, "", errdefs.Fetch(errors.Wrapf(err, "fetching %q", rawURL))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", errdefs.FromHTTPStatus(
			errors.Errorf("fetching %q: unexpected status %s", rawURL, resp.Status),
			resp.StatusCode,
		)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", errdefs.Fetch(errors.Wrapf(err, "reading response body for %q", rawURL))
	}
	return data, hintFromContentType(resp.Header.Get("Content-Type"), rawURL), nil
}

func hintFromPath(path string) ContentHint {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return HintYAML
	}
	return HintJSON
}

func hintFromContentType(contentType, rawURL string) ContentHint {
	lower := strings.ToLower(contentType)
	if strings.Contains(lower, "yaml") {
		return HintYAML
	}
	if strings.Contains(lower, "json") {
		return HintJSON
	}
	return hintFromPath(rawURL)
}

// Parse turns raw document bytes into the untyped tree specmodel.Construct
// expects, dispatching on hint. YAML documents are converted to JSON
// first via go-openapi/swag so both hints share one decode path.
func Parse(data []byte, hint ContentHint) (map[string]interface{}, error) {
	jsonData := data
	if hint == HintYAML {
		doc, err := swag.BytesToYAMLDoc(data)
		if err != nil {
			return nil, errdefs.Fetch(errors.Wrap(err, "converting yaml to json"))
		}
		converted, err := swag.YAMLToJSON(doc)
		if err != nil {
			return nil, errdefs.Fetch(errors.Wrap(err, "converting yaml to json"))
		}
		jsonData = converted
	}

	var tree map[string]interface{}
	if err := json.Unmarshal(jsonData, &tree); err != nil {
		return nil, errdefs.Fetch(errors.Wrap(err, "decoding document"))
	}
	return tree, nil
}

// FetchAndParse retrieves url via g and parses it in one step, the
// composition App.Load actually performs.
func FetchAndParse(g Getter, url string) (map[string]interface{}, error) {
	data, hint, err := g.Load(url)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"url": url, "hint": hint, "bytes": len(data)}).Debug("fetch: document retrieved")
	return Parse(data, hint)
}
