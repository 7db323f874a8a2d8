package ioqueue

import (
	"crypto/tls"
	"net"
	"time"

	"github.com/pkg/errors"
)

// ErrTLSNotReady is returned by a TLS factory when the TLS context (e.g.
// certificates) is not yet loaded, matching spec §4.3's "not ready"
// failure signal. NewTLSListener returns it instead of a listener, so no
// connection is ever accepted without a usable TLS context.
var ErrTLSNotReady = errors.New("ioqueue: tls context not loaded")

// tlsConn is the TLS variant of Conn (spec §4.3). The hostname for SNI
// and certificate validation is bound by TLSDialer before the handshake.
type tlsConn struct {
	tc *tls.Conn
}

func NewTLSConn(tc *tls.Conn) Conn {
	return &tlsConn{tc: tc}
}

func (c *tlsConn) Recv(buf []byte, deadline time.Time, cb RecvCallback) {
	go func() {
		if !deadline.IsZero() {
			_ = c.tc.SetReadDeadline(deadline)
		} else {
			_ = c.tc.SetReadDeadline(time.Time{})
		}
		n, err := c.tc.Read(buf)
		if err != nil {
			if isTimeout(err) {
				cb(false, 0, ErrCancelled)
				return
			}
			if isEOF(err) {
				cb(true, 0, nil)
				return
			}
			cb(false, n, err)
			return
		}
		cb(true, n, nil)
	}()
}

func (c *tlsConn) Send(buf []byte, cb SendCallback) {
	go func() {
		n, err := c.tc.Write(buf)
		if err != nil {
			if isEOF(err) {
				cb(true, 0, nil)
				return
			}
			cb(false, n, err)
			return
		}
		cb(true, n, nil)
	}()
}

// Shutdown emits close-notify. Per spec §7, a post-error shutdown is
// unsafe in most TLS states — callers invoke Shutdown on the read
// timeout path and after a completed send that ends the connection,
// never after a generic transport error.
func (c *tlsConn) Shutdown(cb Callback) {
	go func() {
		cb(c.tc.CloseWrite())
	}()
}

func (c *tlsConn) Close(cb Callback) {
	err := c.tc.Close()
	if cb != nil {
		cb(err)
	}
}

func (c *tlsConn) RemoteAddr() string {
	if a := c.tc.RemoteAddr(); a != nil {
		return a.String()
	}
	return ""
}

// TLSDialer dials TLS connections, binding hostname for SNI before any
// I/O, as spec §4.3 requires of the TLS connection variant.
type TLSDialer struct {
	Config *tls.Config
}

func (d TLSDialer) Dial(network, address, hostname string) (Conn, error) {
	cfg := d.Config
	if cfg == nil {
		cfg = &tls.Config{}
	}
	if cfg.ServerName == "" {
		cfg = cfg.Clone()
		cfg.ServerName = hostname
	}
	nc, err := tls.Dial(network, address, cfg)
	if err != nil {
		return nil, err
	}
	return NewTLSConn(nc), nil
}

// TLSListener owns a TLS listening socket. NewTLSListener fails with
// ErrTLSNotReady when config is nil or carries no certificates, matching
// the "connection factory refuses" contract of spec §4.3/§4.6.
type TLSListener struct {
	ln net.Listener
}

func NewTLSListener(address string, config *tls.Config) (*TLSListener, error) {
	if config == nil || len(config.Certificates) == 0 {
		return nil, ErrTLSNotReady
	}
	ln, err := tls.Listen("tcp", address, config)
	if err != nil {
		return nil, err
	}
	return &TLSListener{ln: ln}, nil
}

func (l *TLSListener) Addr() string { return l.ln.Addr().String() }

func (l *TLSListener) Accept(cb AcceptCallback) {
	go func() {
		nc, err := l.ln.Accept()
		if err != nil {
			cb(nil, err)
			return
		}
		tc, ok := nc.(*tls.Conn)
		if !ok {
			cb(nil, errors.New("ioqueue: accepted connection is not TLS"))
			return
		}
		cb(NewTLSConn(tc), nil)
	}()
}

func (l *TLSListener) Close() error { return l.ln.Close() }
