// Package wire implements the HTTP/1.1 message codec: parsing requests
// and responses out of a borrowed byte slice (spec §4.2) and serializing
// requests and responses to the wire. It deliberately does not implement
// the full RFC 9110 field-value grammar or chunked transfer-encoding —
// see the per-function notes below for the documented limitations this
// preserves from the specification.
package wire

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Request is produced by parsing a byte region and is only valid as long
// as that region is not mutated or released (spec §3).
type Request struct {
	Method      Method
	Target      string // raw request-target as it appeared on the wire
	Version     string // "HTTP/1.0" or "HTTP/1.1", verbatim
	RequestLine string // the full first line, retained for access logging
	Headers     *HeaderMap
	Body        []byte // bound by the caller once Content-Length is known
}

// Response is the client-observed counterpart. Body is owned, not
// borrowed, since client sessions construct responses from their own
// receive buffer only after the full body has arrived.
type Response struct {
	Status  StatusCode
	Headers *HeaderMap
	Body    []byte
}

var (
	ErrTruncated        = errors.New("wire: message truncated")
	ErrMalformedLine    = errors.New("wire: malformed request or status line")
	ErrMalformedHeader  = errors.New("wire: header line missing ':'")
	ErrMalformedVersion = errors.New("wire: malformed HTTP version")
	ErrURITooLong       = errors.New("wire: request-target exceeds maximum length")
)

const crlf = "\r\n"

// ParseVersion validates an 8-byte HTTP version token: it must begin with
// "HTTP/1." and its last byte must be '0' or '1' (spec §4.2 step 6).
func ParseVersion(b []byte) (string, error) {
	if len(b) != 8 {
		return "", ErrMalformedVersion
	}
	if string(b[:7]) != "HTTP/1." {
		return "", ErrMalformedVersion
	}
	if b[7] != '0' && b[7] != '1' {
		return "", ErrMalformedVersion
	}
	return string(b), nil
}

// ParseRequest parses the request line and headers out of data, which
// must contain at least the full header block (request line through the
// blank line terminating headers). It returns the parsed Request (with
// Body left nil — callers bind the body separately per spec §4.5 step 3)
// and the offset in data immediately following the blank line.
//
// maxURLLength bounds how far the request-target scan may run (spec §4.2
// step 4); pass 0 for no limit.
func ParseRequest(data []byte, maxURLLength int) (*Request, int, error) {
	lineEnd := indexCRLF(data, 0)
	if lineEnd < 0 {
		return nil, 0, ErrTruncated
	}
	line := data[:lineEnd]

	sp1 := indexByte(line, ' ', 0)
	if sp1 < 0 {
		return nil, 0, ErrMalformedLine
	}
	methodTok := string(line[:sp1])

	uriLimit := len(line)
	// The bound includes the SP that terminates a maximum-length target.
	if maxURLLength > 0 && sp1+2+maxURLLength < uriLimit {
		uriLimit = sp1 + 2 + maxURLLength
	}
	sp2 := indexByte(line[:uriLimit], ' ', sp1+1)
	if sp2 < 0 {
		if maxURLLength > 0 && uriLimit < len(line) {
			return nil, 0, ErrURITooLong
		}
		return nil, 0, ErrMalformedLine
	}
	target := string(line[sp1+1 : sp2])
	versionTok := line[sp2+1:]
	// A further SP inside versionTok would make it longer than the fixed
	// 8-byte version token and is rejected by ParseVersion below — this
	// is what enforces "exactly one SP per request-line token" (spec
	// §4.2 step 2) without a separate scan.

	method, err := ParseMethod(methodTok)
	if err != nil {
		return nil, 0, err
	}

	version, err := ParseVersion(versionTok)
	if err != nil {
		return nil, 0, err
	}

	headers, headerEnd, err := parseHeaders(data, lineEnd+2)
	if err != nil {
		return nil, 0, err
	}

	return &Request{
		Method:      method,
		Target:      target,
		Version:     version,
		RequestLine: string(line),
		Headers:     headers,
	}, headerEnd, nil
}

// ParseResponse is the client-side symmetric counterpart: status line is
// "HTTP/1.x SP code SP reason CRLF", headers as in ParseRequest, and the
// remainder (from headerEnd on) is unparsed — body assembly is the
// caller's responsibility, per Content-Length (spec §4.2 "Response
// parsing").
func ParseResponse(data []byte) (*Response, int, error) {
	lineEnd := indexCRLF(data, 0)
	if lineEnd < 0 {
		return nil, 0, ErrTruncated
	}
	line := data[:lineEnd]

	parts := splitSP(line, 3)
	if len(parts) < 2 {
		return nil, 0, ErrMalformedLine
	}

	if _, err := ParseVersion(parts[0]); err != nil {
		return nil, 0, err
	}

	codeStr := string(parts[1])
	code, err := strconv.Atoi(codeStr)
	if err != nil || len(codeStr) != 3 {
		return nil, 0, errors.Wrap(ErrMalformedLine, "status code")
	}

	headers, headerEnd, err := parseHeaders(data, lineEnd+2)
	if err != nil {
		return nil, 0, err
	}

	return &Response{
		Status:  StatusCode(code),
		Headers: headers,
	}, headerEnd, nil
}

// parseHeaders reads "\r\n"-terminated lines starting at offset until an
// empty line. Each line must contain ':'; the value is obtained by
// skipping HTTP whitespace (SP, HTAB) after the colon, then taking bytes
// up to the next whitespace byte. This deliberately does not implement
// the full RFC value grammar — values containing internal spaces (e.g.
// "User-Agent: Mozilla 5.0") are truncated at the first space. That is
// the behavior spec §4.2 step 7 specifies, not an oversight.
func parseHeaders(data []byte, offset int) (*HeaderMap, int, error) {
	h := NewHeaderMap()
	pos := offset
	for {
		lineEnd := indexCRLF(data, pos)
		if lineEnd < 0 {
			return nil, 0, ErrTruncated
		}
		line := data[pos:lineEnd]
		pos = lineEnd + 2

		if len(line) == 0 {
			return h, pos, nil
		}

		colon := indexByte(line, ':', 0)
		if colon < 0 {
			return nil, 0, ErrMalformedHeader
		}
		name := string(line[:colon])

		v := line[colon+1:]
		i := 0
		for i < len(v) && isHTTPWhitespace(v[i]) {
			i++
		}
		j := i
		for j < len(v) && !isHTTPWhitespace(v[j]) {
			j++
		}
		value := string(v[i:j])

		h.Add(name, value)
	}
}

func isHTTPWhitespace(c byte) bool { return c == ' ' || c == '\t' }

func indexCRLF(data []byte, from int) int {
	for i := from; i+1 < len(data); i++ {
		if data[i] == '\r' && data[i+1] == '\n' {
			return i
		}
	}
	return -1
}

func indexByte(b []byte, c byte, from int) int {
	for i := from; i < len(b); i++ {
		if b[i] == c {
			return i
		}
	}
	return -1
}

// splitSP splits line on single spaces into at most n parts, the last
// part retaining any embedded spaces (used for the status line, whose
// reason phrase may contain spaces).
func splitSP(line []byte, n int) [][]byte {
	var parts [][]byte
	start := 0
	for len(parts) < n-1 {
		i := indexByte(line, ' ', start)
		if i < 0 {
			break
		}
		parts = append(parts, line[start:i])
		start = i + 1
	}
	parts = append(parts, line[start:])
	return parts
}

// SerializeResponse writes "HTTP/1.1 <code>\r\n" followed by headers in
// insertion order, a blank line, and the body. The reason phrase is
// deliberately omitted — spec §4.2 "Response serialization" preserves
// this as observed behavior of the original source despite RFC 2616
// §6.1 requiring one (spec §9).
func SerializeResponse(resp *Response) []byte {
	var b strings.Builder
	b.WriteString("HTTP/1.1 ")
	b.WriteString(strconv.Itoa(int(resp.Status)))
	b.WriteString(crlf)
	if resp.Headers != nil {
		resp.Headers.Serialize(&b)
	}
	b.WriteString(crlf)
	out := make([]byte, 0, b.Len()+len(resp.Body))
	out = append(out, b.String()...)
	out = append(out, resp.Body...)
	return out
}

// SerializeRequest writes "<METHOD> SP <target> SP HTTP/1.1\r\n". If
// headers carry no Host entry, a Host header is prepended using host and,
// when it differs from the scheme's default, port (spec §4.2 "Request
// serialization").
func SerializeRequest(method Method, target string, headers *HeaderMap, host string, port int, defaultPort int, body []byte) []byte {
	var b strings.Builder
	b.WriteString(method.String())
	b.WriteByte(' ')
	b.WriteString(target)
	b.WriteString(" HTTP/1.1")
	b.WriteString(crlf)

	if headers == nil || !headers.Contains("Host") {
		b.WriteString("Host: ")
		b.WriteString(host)
		if port != 0 && port != defaultPort {
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(port))
		}
		b.WriteString(crlf)
	}

	if headers != nil {
		headers.Serialize(&b)
	}
	b.WriteString(crlf)

	out := make([]byte, 0, b.Len()+len(body))
	out = append(out, b.String()...)
	out = append(out, body...)
	return out
}
