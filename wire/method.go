package wire

import "github.com/pkg/errors"

// Method is the enumerated HTTP request method (spec §3).
type Method int

const (
	Get Method = iota
	Head
	Post
	Put
	Delete
	Connect
	Options
	Trace
	Patch
)

var methodNames = map[Method]string{
	Get:     "GET",
	Head:    "HEAD",
	Post:    "POST",
	Put:     "PUT",
	Delete:  "DELETE",
	Connect: "CONNECT",
	Options: "OPTIONS",
	Trace:   "TRACE",
	Patch:   "PATCH",
}

var namesToMethod = func() map[string]Method {
	m := make(map[string]Method, len(methodNames))
	for k, v := range methodNames {
		m[v] = k
	}
	return m
}()

func (m Method) String() string {
	if s, ok := methodNames[m]; ok {
		return s
	}
	return "UNKNOWN"
}

// ErrUnknownMethod is returned by ParseMethod for any token not in the
// fixed method table. Parsing is case-sensitive per spec §3.
var ErrUnknownMethod = errors.New("wire: unknown method")

// ParseMethod parses an uppercase ASCII method token.
func ParseMethod(s string) (Method, error) {
	m, ok := namesToMethod[s]
	if !ok {
		return 0, ErrUnknownMethod
	}
	return m, nil
}
