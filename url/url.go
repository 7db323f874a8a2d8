// Package url parses HTTP request-targets and absolute URLs, normalizing
// paths with the RFC 3986 remove-dot-segments algorithm.
//
// Unlike net/url this package returns substrings of the input wherever
// possible and does not percent-decode; its callers only need the path,
// query, params and fragment boundaries, never a fully resolved URI.
package url

import (
	"github.com/pkg/errors"
)

// Url holds the parsed pieces of a request-target or absolute URL.
//
// Path always begins with "/" and is never empty, except for the asterisk
// form ("*"), in which case Path is the literal string "*" and every
// other field except FullRaw is empty.
type Url struct {
	FullRaw string // the original bytes, unmodified

	Path     string
	Query    string
	HasQuery bool
	Params   string
	HasParams bool
	Fragment string
	HasFragment bool

	// Scheme, Host and Port are never filled in by Parse, which consumes
	// the scheme and skips the authority. The client keeps scheme, host
	// and port in its own target type (client/target.go).
	Scheme string
	Host   string
	Port   string
}

// Asterisk is the distinct path value used for "OPTIONS *".
const Asterisk = "*"

var (
	ErrEmpty          = errors.New("url: empty input")
	ErrNoLeadingSlash = errors.New("url: remainder does not begin with '/'")
)

// Parse parses a server-observed request-target: origin-form, the
// asterisk form, or an absolute-URI with scheme and authority stripped to
// its path (spec §4.1).
func Parse(raw string) (Url, error) {
	full := raw

	if raw == Asterisk {
		return Url{FullRaw: full, Path: Asterisk}, nil
	}

	if raw == "" {
		return Url{}, ErrEmpty
	}

	var u Url
	u.FullRaw = full

	if i := indexByte(raw, '#'); i >= 0 {
		u.Fragment = raw[i+1:]
		u.HasFragment = true
		raw = raw[:i]
	}

	if i := schemeEnd(raw); i >= 0 {
		raw = raw[i+1:]
	}

	if len(raw) >= 2 && raw[0] == '/' && raw[1] == '/' {
		raw = skipAuthority(raw)
	}

	if i := indexByte(raw, '?'); i >= 0 {
		u.Query = raw[i+1:]
		u.HasQuery = true
		raw = raw[:i]
	}

	if i := indexByte(raw, ';'); i >= 0 {
		u.Params = raw[i+1:]
		u.HasParams = true
		raw = raw[:i]
	}

	if raw == "" {
		return Url{}, ErrEmpty
	}
	if raw[0] != '/' {
		return Url{}, ErrNoLeadingSlash
	}

	u.Path = RemoveDotSegments(raw)

	return u, nil
}

// schemeEnd returns the index of the ':' terminating a scheme per
// RFC 3986 ("scheme = ALPHA *( ALPHA / DIGIT / "+" / "-" / "." )"), or -1
// if no such colon is present. The original C++ source's equivalent
// helper had an off-by-typo ("ch >= 'A' || ch <= 'Z'") that accepted
// nearly every byte as a scheme character (spec §9); this implementation
// uses the correct charset.
func schemeEnd(s string) int {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ':' {
			if i == 0 {
				return -1
			}
			return i
		}
		if !isSchemeChar(c) {
			return -1
		}
	}
	return -1
}

func isSchemeChar(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z':
		return true
	case c >= 'a' && c <= 'z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '+' || c == '-' || c == '.':
		return true
	}
	return false
}

// skipAuthority discards the "//"-prefixed authority, returning the bytes
// starting at the next '/' (or "" if the authority runs to the end of the
// input). The original source bounded its scan from position 2 without
// discarding everything up to that bound, leaking trailing authority
// bytes into the path (spec §9); this implementation discards them.
func skipAuthority(s string) string {
	rest := s[2:]
	if i := indexByte(rest, '/'); i >= 0 {
		return rest[i:]
	}
	return ""
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
