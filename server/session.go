package server

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/tveon/qhttp/internal/accesslog"
	"github.com/tveon/qhttp/internal/metrics"
	"github.com/tveon/qhttp/ioqueue"
	"github.com/tveon/qhttp/wire"
)

// badRequestResponse is the exact literal bytes spec §6 specifies for
// every 400 the server core emits on its own.
const badRequestResponse = "HTTP/1.1 400 Bad Request\r\nConnection: close\r\n\r\n"

// session implements the per-connection state machine (spec §4.5):
// ReadingHeaders → [ReadingBody] → Handling → Sending → (KeepAlive:
// ReadingHeaders | Closed). It is constructed by the listener with an
// owned connection and must not begin I/O until start() is called.
type session struct {
	conn       ioqueue.Conn
	remoteAddr string
	handler    HandleFunc
	cfg        Config
	clock      clock.Clock
	metrics    *metrics.Counters
	accessLog  *accesslog.Logger
	logger     *slog.Logger

	// req is the in-flight request, its Body borrowing from headerBuf
	// (or bodyBuf, once the body is copied out of the header buffer) for
	// the duration of one Handle/Respond cycle.
	req       *wire.Request
	headerBuf []byte
	bodyBuf   []byte

	// readDeadline is computed once per request cycle, in readHeaders,
	// and reused unchanged across any body-continuation reads: a
	// trickling client must not be able to extend its own window by
	// spacing bytes out.
	readDeadline time.Time
	startedAt    time.Time
}

func newSession(conn ioqueue.Conn, remoteAddr string, handler HandleFunc, cfg Config, clk clock.Clock, m *metrics.Counters, al *accesslog.Logger, logger *slog.Logger) *session {
	return &session{
		conn:       conn,
		remoteAddr: remoteAddr,
		handler:    handler,
		cfg:        cfg,
		clock:      clk,
		metrics:    m,
		accessLog:  al,
		logger:     logger,
	}
}

// start begins the first read. It must be called exactly once,
// immediately after construction (spec §4.5).
func (s *session) start() {
	s.readHeaders()
}

func (s *session) readHeaders() {
	s.headerBuf = make([]byte, s.cfg.MaxRequestHeaderSize)
	s.bodyBuf = nil
	s.req = nil

	s.readDeadline = s.clock.Now().Add(s.cfg.FullReadTimeout)
	s.conn.Recv(s.headerBuf, s.readDeadline, func(ok bool, n int, err error) {
		if errors.Is(err, ioqueue.ErrCancelled) {
			s.conn.Shutdown(func(error) { s.conn.Close(nil) })
			return
		}
		if err != nil {
			s.metrics.Incr(err.Error())
			s.logger.Error("error receiving request headers", "error", err, "remote", s.remoteAddr)
			s.conn.Close(nil)
			return
		}
		if !ok || n == 0 {
			s.conn.Close(nil)
			return
		}

		s.headerBuf = s.headerBuf[:n]
		req, headerEnd, perr := wire.ParseRequest(s.headerBuf, s.cfg.MaxURLLength)
		if perr != nil {
			s.metrics.Incr("parse error")
			s.accessLog.Log(s.remoteAddr, "INVALID REQUEST", int(wire.StatusBadRequest), 0)
			s.sendFixed(badRequestResponse, false)
			return
		}
		s.req = req
		s.handleContentLength(headerEnd)
	})
}

func (s *session) handleContentLength(headerEnd int) {
	raw, present := s.req.Headers.Get("Content-Length")
	if !present {
		s.req.Body = nil
		s.handle()
		return
	}

	length, err := strconv.Atoi(raw)
	if err != nil || length < 0 {
		s.metrics.Incr("invalid length")
		s.accessLog.Log(s.remoteAddr, s.req.RequestLine, int(wire.StatusBadRequest), 0)
		s.sendFixed(badRequestResponse, false)
		return
	}
	if length > s.cfg.MaxRequestBodySize {
		s.metrics.Incr("body too large")
		s.accessLog.Log(s.remoteAddr, s.req.RequestLine, int(wire.StatusBadRequest), 0)
		s.sendFixed(badRequestResponse, false)
		return
	}

	alreadyRead := s.headerBuf[headerEnd:]
	if len(alreadyRead) >= length {
		s.req.Body = alreadyRead[:length]
		s.handle()
		return
	}

	s.bodyBuf = make([]byte, len(alreadyRead), length)
	copy(s.bodyBuf, alreadyRead)
	s.req.Body = nil
	s.readBody(length)
}

func (s *session) readBody(contentLength int) {
	remaining := contentLength - len(s.bodyBuf)
	readInto := make([]byte, remaining)
	s.conn.Recv(readInto, s.readDeadline, func(ok bool, n int, err error) {
		if errors.Is(err, ioqueue.ErrCancelled) {
			s.conn.Shutdown(func(error) { s.conn.Close(nil) })
			return
		}
		if err != nil {
			s.metrics.Incr(err.Error())
			s.logger.Error("error receiving request body", "error", err, "remote", s.remoteAddr)
			s.conn.Close(nil)
			return
		}
		if !ok || n == 0 {
			s.conn.Close(nil)
			return
		}

		s.bodyBuf = append(s.bodyBuf, readInto[:n]...)
		if len(s.bodyBuf) < contentLength {
			s.readBody(contentLength)
			return
		}

		s.req.Body = s.bodyBuf[:contentLength]
		s.handle()
	})
}

func (s *session) handle() {
	s.startedAt = s.clock.Now()
	r := &Responder{sess: s}
	s.handler(r, s.req)
}

// respond is invoked by Responder.Respond exactly once per request.
func (s *session) respond(resp *wire.Response) {
	keepAlive := s.keepAlive()
	s.accessLog.Log(s.remoteAddr, s.req.RequestLine, int(resp.Status), len(resp.Body))

	out := wire.SerializeResponse(resp)
	s.sendAll(out, keepAlive)
}

// keepAlive decides from the REQUEST's Connection header, not the
// response's (the request is what the client actually asked for).
func (s *session) keepAlive() bool {
	if v, ok := s.req.Headers.Get("Connection"); ok {
		if strings.Contains(v, "close") {
			return false
		}
		if strings.Contains(v, "keep-alive") {
			return true
		}
	}
	return s.req.Version == "HTTP/1.1"
}

// sendFixed writes a literal byte string (the server's own 400
// responses) and then applies keepAlive; every caller passes false, so
// the connection is shut down and closed.
func (s *session) sendFixed(literal string, keepAlive bool) {
	s.sendAll([]byte(literal), keepAlive)
}

// sendAll loops over partial sends until the full buffer has gone out
// (spec §4.5 step 5: "Partial sends loop"), then applies the keep-alive
// decision.
func (s *session) sendAll(buf []byte, keepAlive bool) {
	cursor := 0
	var loop func()
	loop = func() {
		if cursor >= len(buf) {
			s.afterSend(keepAlive)
			return
		}
		s.conn.Send(buf[cursor:], func(ok bool, n int, err error) {
			if !ok || err != nil {
				s.metrics.Incr(errOrDefault(err))
				s.logger.Error("error sending response", "error", err, "remote", s.remoteAddr)
				s.conn.Close(nil)
				return
			}
			if n == 0 {
				s.conn.Close(nil)
				return
			}
			cursor += n
			loop()
		})
	}
	loop()
}

func errOrDefault(err error) string {
	if err != nil {
		return err.Error()
	}
	return "send error"
}

func (s *session) afterSend(keepAlive bool) {
	if keepAlive {
		s.readHeaders()
		return
	}
	s.conn.Shutdown(func(error) { s.conn.Close(nil) })
}
