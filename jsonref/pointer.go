// Package jsonref implements the URL and JSON-pointer utilities (RFC 6901)
// that every other package in oaspec builds on: splitting a "$ref" string
// into its URL and pointer halves, escaping/unescaping pointer tokens, and
// normalizing document URLs. Nothing here performs I/O.
package jsonref

import (
	"strings"

	"github.com/go-openapi/jsonpointer"
)

// EmptyPointer is the canonical representation of "the document root".
const EmptyPointer = "#"

// Pointer is a parsed JSON Pointer: a sequence of unescaped reference
// tokens. An empty Pointer addresses the document root.
type Pointer struct {
	tokens []string
}

// RootPointer returns the pointer addressing the document root.
func RootPointer() Pointer { return Pointer{} }

// SplitPointer parses a string of the form "#/a/b~1c" (leading "#" is
// optional; it is stripped if present) into a Pointer. "" and "#" are
// equivalent and both yield the root pointer.
func SplitPointer(raw string) Pointer {
	raw = strings.TrimPrefix(raw, "#")
	if raw == "" {
		return Pointer{}
	}
	raw = strings.TrimPrefix(raw, "/")
	if raw == "" {
		return Pointer{}
	}
	parts := strings.Split(raw, "/")
	tokens := make([]string, len(parts))
	for i, p := range parts {
		tokens[i] = jsonpointer.Unescape(p)
	}
	return Pointer{tokens: tokens}
}

// Tokens returns the decoded reference tokens, in order.
func (p Pointer) Tokens() []string {
	out := make([]string, len(p.tokens))
	copy(out, p.tokens)
	return out
}

// IsRoot reports whether p addresses the document root.
func (p Pointer) IsRoot() bool { return len(p.tokens) == 0 }

// Child returns a new Pointer with token appended.
func (p Pointer) Child(token string) Pointer {
	tokens := make([]string, len(p.tokens)+1)
	copy(tokens, p.tokens)
	tokens[len(p.tokens)] = token
	return Pointer{tokens: tokens}
}

// Parent returns p with its last token removed, and true if p was not root.
func (p Pointer) Parent() (Pointer, bool) {
	if len(p.tokens) == 0 {
		return p, false
	}
	tokens := make([]string, len(p.tokens)-1)
	copy(tokens, p.tokens[:len(p.tokens)-1])
	return Pointer{tokens: tokens}, true
}

// String composes the canonical "#/a/b~1c" form, escaping each token per
// RFC 6901 ("~" -> "~0" before "/" -> "~1", handled by jsonpointer.Escape).
func (p Pointer) String() string {
	if len(p.tokens) == 0 {
		return EmptyPointer
	}
	var b strings.Builder
	b.WriteByte('#')
	for _, t := range p.tokens {
		b.WriteByte('/')
		b.WriteString(jsonpointer.Escape(t))
	}
	return b.String()
}

// HasPrefix reports whether p starts with the tokens of other, i.e. other
// names an ancestor node (or the same node) as p.
func (p Pointer) HasPrefix(other Pointer) bool {
	if len(other.tokens) > len(p.tokens) {
		return false
	}
	for i, t := range other.tokens {
		if p.tokens[i] != t {
			return false
		}
	}
	return true
}

// TrimPrefix removes the leading tokens shared with prefix, returning the
// remainder pointer. Behavior is undefined if !p.HasPrefix(prefix).
func (p Pointer) TrimPrefix(prefix Pointer) Pointer {
	rest := make([]string, len(p.tokens)-len(prefix.tokens))
	copy(rest, p.tokens[len(prefix.tokens):])
	return Pointer{tokens: rest}
}

// Compose joins unescaped tokens onto an optional base pointer.
func Compose(base Pointer, tokens ...string) Pointer {
	out := make([]string, 0, len(base.tokens)+len(tokens))
	out = append(out, base.tokens...)
	out = append(out, tokens...)
	return Pointer{tokens: out}
}
