// Package accesslog formats the per-request access log line spec §7
// describes, grounded on the original server's accessLog() (inspired,
// per its own comment, by github.com/expressjs/morgan's predefined
// formats): `<remote> "<request line>" <status> <resp-body-size>`.
package accesslog

import (
	"fmt"
	"log/slog"
)

// Logger writes one line per completed request when enabled.
type Logger struct {
	enabled bool
	logger  *slog.Logger
}

func New(logger *slog.Logger, enabled bool) *Logger {
	return &Logger{enabled: enabled, logger: logger}
}

// Log records one request. requestLine is the raw, unparsed request
// line (or a synthetic description such as "INVALID REQUEST" when
// parsing failed before a line could be captured).
func (l *Logger) Log(remoteAddr, requestLine string, status int, respBodySize int) {
	if l == nil || !l.enabled {
		return
	}
	l.logger.Info(fmt.Sprintf("%s \"%s\" %d %d", remoteAddr, requestLine, status, respBodySize))
}
