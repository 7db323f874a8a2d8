package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRequest_Basic(t *testing.T) {
	raw := []byte("GET /x HTTP/1.1\r\nHost: h\r\n\r\n")
	req, headerEnd, err := ParseRequest(raw, 0)
	require.NoError(t, err)
	require.Equal(t, Get, req.Method)
	require.Equal(t, "/x", req.Target)
	require.Equal(t, "HTTP/1.1", req.Version)
	require.Equal(t, "GET /x HTTP/1.1", req.RequestLine)
	v, ok := req.Headers.Get("host")
	require.True(t, ok)
	require.Equal(t, "h", v)
	require.Equal(t, len(raw), headerEnd)
}

func TestParseRequest_RequestLineIsExactBytes(t *testing.T) {
	raw := []byte("POST /p HTTP/1.1\r\nHost: h\r\nContent-Length: 5\r\n\r\nhello")
	req, headerEnd, err := ParseRequest(raw, 0)
	require.NoError(t, err)
	require.Equal(t, "POST /p HTTP/1.1", req.RequestLine)
	require.Equal(t, "hello", string(raw[headerEnd:]))
}

func TestParseRequest_UnknownMethodFails(t *testing.T) {
	_, _, err := ParseRequest([]byte("FOO / HTTP/1.1\r\n\r\n"), 0)
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func TestParseRequest_MalformedVersionFails(t *testing.T) {
	_, _, err := ParseRequest([]byte("GET / HTTP/2.0\r\n\r\n"), 0)
	require.ErrorIs(t, err, ErrMalformedVersion)
}

func TestParseRequest_MissingColonInHeaderFails(t *testing.T) {
	_, _, err := ParseRequest([]byte("GET / HTTP/1.1\r\nBadHeader\r\n\r\n"), 0)
	require.ErrorIs(t, err, ErrMalformedHeader)
}

func TestParseRequest_HeaderValueTruncatesAtFirstSpace(t *testing.T) {
	// spec §4.2 step 7 is an intentional, documented limitation, not a
	// bug: values with internal spaces are truncated.
	req, _, err := ParseRequest([]byte("GET / HTTP/1.1\r\nUser-Agent: Mozilla 5.0\r\n\r\n"), 0)
	require.NoError(t, err)
	v, ok := req.Headers.Get("User-Agent")
	require.True(t, ok)
	require.Equal(t, "Mozilla", v)
}

func TestParseRequest_TruncatedFails(t *testing.T) {
	_, _, err := ParseRequest([]byte("GET / HTTP/1.1\r\nHost: h\r\n"), 0)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestParseRequest_URITooLong(t *testing.T) {
	raw := []byte("GET /aaaaaaaaaaaaaaaaaaaa HTTP/1.1\r\n\r\n")
	_, _, err := ParseRequest(raw, 4)
	require.ErrorIs(t, err, ErrURITooLong)
}

func TestParseResponse_Basic(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\n\r\nhi")
	resp, headerEnd, err := ParseResponse(raw)
	require.NoError(t, err)
	require.Equal(t, StatusOK, resp.Status)
	v, ok := resp.Headers.Get("Content-Type")
	require.True(t, ok)
	require.Equal(t, "text/plain", v)
	require.Equal(t, "hi", string(raw[headerEnd:]))
}

func TestSerializeResponse_OmitsReasonPhrase(t *testing.T) {
	h := NewHeaderMap()
	h.Set("Connection", "close")
	h.Set("Content-Type", "text/plain")
	resp := &Response{Status: StatusOK, Headers: h, Body: []byte("hi")}

	got := SerializeResponse(resp)
	want := "HTTP/1.1 200\r\nConnection: close\r\nContent-Type: text/plain\r\n\r\nhi"
	require.Equal(t, want, string(got))
}

func TestSerializeResponseParseResponse_RoundTrip(t *testing.T) {
	resp := NewResponse(StatusCreated, []byte("body"), nil)
	raw := SerializeResponse(resp)

	parsed, headerEnd, err := ParseResponse(raw)
	require.NoError(t, err)
	require.Equal(t, resp.Status, parsed.Status)
	require.Equal(t, "body", string(raw[headerEnd:]))
}

func TestSerializeRequest_PrependsHostWhenAbsent(t *testing.T) {
	got := SerializeRequest(Get, "/x", nil, "example.com", 8080, 80, nil)
	want := "GET /x HTTP/1.1\r\nHost: example.com:8080\r\n\r\n"
	require.Equal(t, want, string(got))
}

func TestSerializeRequest_OmitsPortWhenDefault(t *testing.T) {
	got := SerializeRequest(Get, "/x", nil, "example.com", 80, 80, nil)
	want := "GET /x HTTP/1.1\r\nHost: example.com\r\n\r\n"
	require.Equal(t, want, string(got))
}

func TestSerializeRequest_DoesNotOverrideExistingHost(t *testing.T) {
	h := NewHeaderMap()
	h.Set("Host", "custom")
	got := SerializeRequest(Get, "/x", h, "example.com", 80, 80, nil)
	want := "GET /x HTTP/1.1\r\nHost: custom\r\n\r\n"
	require.Equal(t, want, string(got))
}
