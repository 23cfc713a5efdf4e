package jsonref

import (
	"strings"

	"github.com/go-openapi/jsonreference"
)

// Ref is the (url, pointer) pair recovered by splitting a "$ref" string
// at its first "#". Either half may be empty:
// an empty URL means "same document as the reference site"; an empty
// Pointer means "document root".
type Ref struct {
	URL     string
	Pointer Pointer
}

// IsSameDocument reports whether r has no URL half, i.e. it refers within
// the document it was found in.
func (r Ref) IsSameDocument() bool { return r.URL == "" }

// String recomposes the canonical "<url>#<pointer>" form. When URL is
// empty the result is just the pointer ("#/a/b").
func (r Ref) String() string {
	if r.URL == "" {
		return r.Pointer.String()
	}
	return r.URL + r.Pointer.String()
}

// Split parses a raw "$ref" value into its URL and Pointer halves. It
// leans on go-openapi/jsonreference for the URL/fragment split (it already
// knows how to tell a bare fragment like "#/x" from a relative URL like
// "other.json#/x" from a full absolute URL), then hands the fragment to
// SplitPointer.
func Split(raw string) (Ref, error) {
	parsed, err := jsonreference.New(raw)
	if err != nil {
		return Ref{}, err
	}

	if parsed.HasFragmentOnly {
		return Ref{Pointer: SplitPointer(raw)}, nil
	}

	u := *parsed.GetURL()
	u.Fragment = ""
	frag := ""
	if idx := strings.IndexByte(raw, '#'); idx >= 0 {
		frag = raw[idx:]
	}
	return Ref{URL: u.String(), Pointer: SplitPointer(frag)}, nil
}

// Normalize rewrites a (possibly relative, possibly bare-fragment) ref
// found inside the document at siteURL into its absolute
// "<url>#<pointer>" form.
func Normalize(raw string, siteURL string) (Ref, error) {
	r, err := Split(raw)
	if err != nil {
		return Ref{}, err
	}
	if r.IsSameDocument() {
		r.URL = siteURL
		return r, nil
	}
	abs, err := URLJoin(siteURL, r.URL)
	if err != nil {
		return Ref{}, err
	}
	r.URL = abs
	return r, nil
}
