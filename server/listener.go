package server

import (
	"log/slog"

	"github.com/benbjohnson/clock"
	"github.com/tveon/qhttp/internal/accesslog"
	"github.com/tveon/qhttp/internal/metrics"
	"github.com/tveon/qhttp/ioqueue"
)

// Server owns a Listener and runs the accept chain described in spec
// §4.6: submit accept, on completion start a session and submit the
// next accept, forever.
//
// Spec §5 describes the acceptor retrying accept submission in a tight
// loop until the I/O queue's submission ring accepts the work item. In
// this goroutine-backed rendering, ioqueue.Listener.Accept always
// succeeds at submission time (it just starts a goroutine), so that
// busy loop collapses to the single unconditional call below — the
// retry has nothing to wait on here, unlike a real io_uring submission
// queue that can be transiently full.
type Server struct {
	listener ioqueue.Listener
	cfg      Config
	handler  HandleFunc
	clock    clock.Clock
	metrics  *metrics.Counters
	access   *accesslog.Logger
	logger   *slog.Logger

	stop chan struct{}
}

// New constructs a Server bound to an already-listening Listener. The
// listener is created by the caller's connection factory (plain TCP via
// ioqueue.TCPListener, or TLS via ioqueue.NewTLSListener) so accept-side
// refusals (e.g. TLS context not loaded) happen before a Server exists
// to own them, matching spec §4.6's "if the connection factory refuses,
// log and close the accepted fd without constructing a session".
func New(listener ioqueue.Listener, handler HandleFunc, cfg Config, clk clock.Clock, m *metrics.Counters, logger *slog.Logger) *Server {
	if clk == nil {
		clk = clock.New()
	}
	if m == nil {
		m = metrics.New()
	}
	return &Server{
		listener: listener,
		cfg:      cfg,
		handler:  handler,
		clock:    clk,
		metrics:  m,
		access:   accesslog.New(logger, cfg.AccessLog),
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Serve runs the accept chain. It returns once Close is called.
func (srv *Server) Serve() {
	var acceptNext func()
	acceptNext = func() {
		select {
		case <-srv.stop:
			return
		default:
		}

		srv.listener.Accept(func(conn ioqueue.Conn, err error) {
			if err != nil {
				srv.metrics.Incr(err.Error())
				srv.logger.Error("accept failed", "error", err)
				acceptNext()
				return
			}
			sess := newSession(conn, conn.RemoteAddr(), srv.handler, srv.cfg, srv.clock, srv.metrics, srv.access, srv.logger)
			sess.start()
			acceptNext()
		})
	}
	acceptNext()
	<-srv.stop
}

// Close stops submitting new accepts and closes the listening socket.
func (srv *Server) Close() error {
	close(srv.stop)
	return srv.listener.Close()
}
