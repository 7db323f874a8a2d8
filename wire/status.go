package wire

// StatusCode is a numeric HTTP status code (spec §3). Serialization uses
// the numeric code only (spec §4.2); the reason-phrase table below exists
// for logging and documentation, not for the wire format.
type StatusCode int

const (
	StatusContinue           StatusCode = 100
	StatusSwitchingProtocols StatusCode = 101

	StatusOK                   StatusCode = 200
	StatusCreated              StatusCode = 201
	StatusAccepted             StatusCode = 202
	StatusNonAuthoritativeInfo StatusCode = 203
	StatusNoContent            StatusCode = 204
	StatusResetContent         StatusCode = 205
	StatusPartialContent       StatusCode = 206

	StatusMultipleChoices   StatusCode = 300
	StatusMovedPermanently  StatusCode = 301
	StatusFound             StatusCode = 302
	StatusSeeOther          StatusCode = 303
	StatusNotModified       StatusCode = 304
	StatusUseProxy          StatusCode = 305
	StatusTemporaryRedirect StatusCode = 307
	StatusPermanentRedirect StatusCode = 308

	StatusBadRequest       StatusCode = 400
	StatusUnauthorized     StatusCode = 401
	StatusForbidden        StatusCode = 403
	StatusNotFound         StatusCode = 404
	StatusMethodNotAllowed StatusCode = 405
	StatusRequestTimeout   StatusCode = 408
	StatusConflict         StatusCode = 409
	StatusGone             StatusCode = 410
	StatusLengthRequired   StatusCode = 411
	StatusContentTooLarge  StatusCode = 413
	StatusRequestURITooLong StatusCode = 414

	StatusInternalServerError     StatusCode = 500
	StatusNotImplemented          StatusCode = 501
	StatusBadGateway              StatusCode = 502
	StatusServiceUnavailable      StatusCode = 503
	StatusGatewayTimeout          StatusCode = 504
	StatusHTTPVersionNotSupported StatusCode = 505
)

// reasonPhrases carries the common table used by the demo routes and
// tests, grounded on original_source/src/http.cpp's status table (see
// SPEC_FULL.md §6.8). It need not round-trip — the serializer omits it.
var reasonPhrases = map[StatusCode]string{
	StatusContinue:           "Continue",
	StatusSwitchingProtocols: "Switching Protocols",

	StatusOK:                   "OK",
	StatusCreated:              "Created",
	StatusAccepted:             "Accepted",
	StatusNonAuthoritativeInfo: "Non-Authoritative Information",
	StatusNoContent:            "No Content",
	StatusResetContent:         "Reset Content",
	StatusPartialContent:       "Partial Content",

	StatusMultipleChoices:   "Multiple Choices",
	StatusMovedPermanently:  "Moved Permanently",
	StatusFound:             "Found",
	StatusSeeOther:          "See Other",
	StatusNotModified:       "Not Modified",
	StatusUseProxy:          "Use Proxy",
	StatusTemporaryRedirect: "Temporary Redirect",
	StatusPermanentRedirect: "Permanent Redirect",

	StatusBadRequest:        "Bad Request",
	StatusUnauthorized:      "Unauthorized",
	StatusForbidden:         "Forbidden",
	StatusNotFound:          "Not Found",
	StatusMethodNotAllowed:  "Method Not Allowed",
	StatusRequestTimeout:    "Request Timeout",
	StatusConflict:          "Conflict",
	StatusGone:              "Gone",
	StatusLengthRequired:    "Length Required",
	StatusContentTooLarge:   "Content Too Large",
	StatusRequestURITooLong: "Request URI Too Long",

	StatusInternalServerError:     "Internal Server Error",
	StatusNotImplemented:          "Not Implemented",
	StatusBadGateway:              "Bad Gateway",
	StatusServiceUnavailable:      "Service Unavailable",
	StatusGatewayTimeout:          "Gateway Timeout",
	StatusHTTPVersionNotSupported: "HTTP Version Not Supported",
}

// ReasonPhrase returns the standard reason phrase for code, or "" if code
// is not in the table.
func (c StatusCode) ReasonPhrase() string {
	return reasonPhrases[c]
}
