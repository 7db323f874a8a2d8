package server

import (
	"log/slog"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
	"github.com/tveon/qhttp/internal/accesslog"
	"github.com/tveon/qhttp/internal/metrics"
	"github.com/tveon/qhttp/ioqueue"
	"github.com/tveon/qhttp/wire"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, nil))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func newTestSession(t *testing.T, clientConn, serverConn ioqueue.Conn, handler HandleFunc, cfg Config) *session {
	t.Helper()
	return newSession(serverConn, serverConn.RemoteAddr(), handler, cfg, clock.New(), metrics.New(), accesslog.New(testLogger(), false), testLogger())
}

func readAll(t *testing.T, conn ioqueue.Conn, timeout time.Duration) []byte {
	t.Helper()
	var out []byte
	for {
		buf := make([]byte, 4096)
		done := make(chan struct{})
		var n int
		var ok bool
		var err error
		conn.Recv(buf, time.Now().Add(timeout), func(o bool, nn int, e error) {
			ok, n, err = o, nn, e
			close(done)
		})
		select {
		case <-done:
		case <-time.After(timeout + time.Second):
			t.Fatal("readAll timed out")
		}
		if err != nil || !ok || n == 0 {
			return out
		}
		out = append(out, buf[:n]...)
		// Return after the first chunk: the session writes each response
		// with one Send, which the stub delivers as one Recv.
		return out
	}
}

func echoHandler(t *testing.T) HandleFunc {
	return func(r *Responder, req *wire.Request) {
		h := wire.NewHeaderMap()
		h.Set("Content-Length", itoa(len(req.Body)))
		require.NoError(t, r.Respond(wire.NewResponse(wire.StatusOK, req.Body, h)))
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func baseConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxRequestHeaderSize = 4096
	cfg.MaxRequestBodySize = 64
	cfg.FullReadTimeout = 2 * time.Second
	return cfg
}

func TestSession_GET_KeepAlive(t *testing.T) {
	clientConn, serverConn := ioqueue.NewStubConnPair("client:1", "server:1")
	sess := newTestSession(t, clientConn, serverConn, echoHandler(t), baseConfig())
	sess.start()

	clientConn.Send([]byte("GET /widgets HTTP/1.1\r\nHost: example.test\r\n\r\n"), func(bool, int, error) {})

	out := readAll(t, clientConn, time.Second)
	resp, _, err := wire.ParseResponse(out)
	require.NoError(t, err)
	require.Equal(t, wire.StatusOK, resp.Status)

	// Keep-alive means the session re-armed a header read; a second
	// request on the same connection should also succeed.
	clientConn.Send([]byte("GET /more HTTP/1.1\r\nHost: example.test\r\n\r\n"), func(bool, int, error) {})
	out2 := readAll(t, clientConn, time.Second)
	resp2, _, err := wire.ParseResponse(out2)
	require.NoError(t, err)
	require.Equal(t, wire.StatusOK, resp2.Status)
}

func TestSession_POST_BodyEqualToContentLength(t *testing.T) {
	clientConn, serverConn := ioqueue.NewStubConnPair("client:1", "server:1")
	sess := newTestSession(t, clientConn, serverConn, echoHandler(t), baseConfig())
	sess.start()

	req := "POST /widgets HTTP/1.1\r\nHost: example.test\r\nContent-Length: 5\r\n\r\nhowdy"
	clientConn.Send([]byte(req), func(bool, int, error) {})

	out := readAll(t, clientConn, time.Second)
	resp, headerEnd, err := wire.ParseResponse(out)
	require.NoError(t, err)
	require.Equal(t, wire.StatusOK, resp.Status)
	require.Equal(t, "howdy", string(out[headerEnd:]))
}

func TestSession_POST_BodyLargerThanInitialRead(t *testing.T) {
	clientConn, serverConn := ioqueue.NewStubConnPair("client:1", "server:1")
	sess := newTestSession(t, clientConn, serverConn, echoHandler(t), baseConfig())
	sess.start()

	head := "POST /widgets HTTP/1.1\r\nHost: example.test\r\nContent-Length: 13\r\n\r\nhow"
	clientConn.Send([]byte(head), func(bool, int, error) {})
	time.Sleep(20 * time.Millisecond)
	clientConn.Send([]byte("dy-partner"), func(bool, int, error) {})

	out := readAll(t, clientConn, time.Second)
	resp, headerEnd, err := wire.ParseResponse(out)
	require.NoError(t, err)
	require.Equal(t, wire.StatusOK, resp.Status)
	require.Equal(t, "howdy-partner", string(out[headerEnd:]))
}

func TestSession_InvalidContentLength(t *testing.T) {
	clientConn, serverConn := ioqueue.NewStubConnPair("client:1", "server:1")
	sess := newTestSession(t, clientConn, serverConn, echoHandler(t), baseConfig())
	sess.start()

	clientConn.Send([]byte("POST /x HTTP/1.1\r\nHost: example.test\r\nContent-Length: notanumber\r\n\r\n"), func(bool, int, error) {})

	out := readAll(t, clientConn, time.Second)
	require.Equal(t, badRequestResponse, string(out))
}

func TestSession_OversizeBody(t *testing.T) {
	clientConn, serverConn := ioqueue.NewStubConnPair("client:1", "server:1")
	cfg := baseConfig()
	cfg.MaxRequestBodySize = 8
	sess := newTestSession(t, clientConn, serverConn, echoHandler(t), cfg)
	sess.start()

	clientConn.Send([]byte("POST /x HTTP/1.1\r\nHost: example.test\r\nContent-Length: 9\r\n\r\n123456789"), func(bool, int, error) {})

	out := readAll(t, clientConn, time.Second)
	require.Equal(t, badRequestResponse, string(out))
}

func TestSession_ReadTimeout_ClosesWithoutResponse(t *testing.T) {
	clientConn, serverConn := ioqueue.NewStubConnPair("client:1", "server:1")
	cfg := baseConfig()
	cfg.FullReadTimeout = 30 * time.Millisecond
	sess := newTestSession(t, clientConn, serverConn, echoHandler(t), cfg)
	sess.start()

	// Send nothing; the session's header read should expire and the
	// connection should be torn down without a response.
	out := readAll(t, clientConn, 200*time.Millisecond)
	require.Empty(t, out)
}
