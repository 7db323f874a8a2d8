package client

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	qurl "github.com/tveon/qhttp/url"
)

// ErrInvalidArgument classifies a target/argument the spec routes through
// the client's completion callback rather than a transport error (spec
// §7 "at the client boundary they surface via the single completion
// callback with an invalid_argument classification").
var ErrInvalidArgument = errors.New("client: invalid argument")

const (
	DefaultHTTPPort  = 80
	DefaultHTTPSPort = 443
)

// target is what Request() resolves an absolute URL string into: the
// scheme is consumed before the remainder is handed to url.Parse, per
// spec §4.1 step 3 ("for client use, the scheme is extracted separately
// before calling into this parser").
type target struct {
	tls  bool
	host string
	port int
	url  qurl.Url
}

func parseTarget(raw string) (target, error) {
	scheme, rest, ok := cutScheme(raw)
	if !ok {
		return target{}, errors.Wrap(ErrInvalidArgument, "missing scheme")
	}

	var tls bool
	var defaultPort int
	switch scheme {
	case "http":
		tls, defaultPort = false, DefaultHTTPPort
	case "https":
		tls, defaultPort = true, DefaultHTTPSPort
	default:
		return target{}, errors.Wrapf(ErrInvalidArgument, "unsupported scheme %q", scheme)
	}

	if !strings.HasPrefix(rest, "//") {
		return target{}, errors.Wrap(ErrInvalidArgument, "missing authority")
	}
	rest = rest[2:]

	authEnd := len(rest)
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		authEnd = i
	}
	authority := rest[:authEnd]
	path := rest[authEnd:]
	if path == "" {
		path = "/"
	}

	host, port := authority, defaultPort
	if i := strings.LastIndexByte(authority, ':'); i >= 0 {
		host = authority[:i]
		p, err := strconv.Atoi(authority[i+1:])
		if err != nil {
			return target{}, errors.Wrap(ErrInvalidArgument, "malformed port")
		}
		port = p
	}
	if host == "" {
		return target{}, errors.Wrap(ErrInvalidArgument, "missing host")
	}

	u, err := qurl.Parse(path)
	if err != nil {
		return target{}, errors.Wrap(ErrInvalidArgument, "parsing request-target")
	}

	return target{tls: tls, host: host, port: port, url: u}, nil
}

func cutScheme(s string) (scheme, rest string, ok bool) {
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// requestTarget rebuilds the origin-form target string for the wire
// (path + optional query/params/fragment), since the codec's request
// line carries only what the URL parser split out.
func (t target) requestTarget() string {
	var b strings.Builder
	b.WriteString(t.url.Path)
	if t.url.HasParams {
		b.WriteByte(';')
		b.WriteString(t.url.Params)
	}
	if t.url.HasQuery {
		b.WriteByte('?')
		b.WriteString(t.url.Query)
	}
	if t.url.HasFragment {
		b.WriteByte('#')
		b.WriteString(t.url.Fragment)
	}
	return b.String()
}
