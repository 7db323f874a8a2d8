package wire

// NewResponse builds a Response defaulting Connection: close and, when
// body is non-empty and headers carries no Content-Type, Content-Type:
// text/plain (spec §3 "Response").
func NewResponse(status StatusCode, body []byte, headers *HeaderMap) *Response {
	if headers == nil {
		headers = NewHeaderMap()
	}
	if !headers.Contains("Connection") {
		headers.Set("Connection", "close")
	}
	if len(body) > 0 && !headers.Contains("Content-Type") {
		headers.Set("Content-Type", "text/plain")
	}
	return &Response{Status: status, Headers: headers, Body: body}
}
