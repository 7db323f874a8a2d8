package ioqueue

import (
	"errors"
	"io"
	"net"
	"time"
)

// tcpConn adapts a net.Conn to the Conn contract. Each suspension point
// (spec §5) is expressed as a goroutine that performs the blocking
// syscall and then delivers its single callback — the Go-idiomatic
// rendering of the "submit then complete on the dispatcher" model spec
// §9 design note 3 says is semantically interchangeable with literal
// callback chains, since the caller never has two such goroutines for
// the same Conn alive at once (the single-inflight-per-session
// invariant, spec §4.5/§5, is enforced one layer up by the session).
type tcpConn struct {
	nc net.Conn
}

// NewTCPConn wraps an already-connected or already-accepted net.Conn.
func NewTCPConn(nc net.Conn) Conn {
	return &tcpConn{nc: nc}
}

func (c *tcpConn) Recv(buf []byte, deadline time.Time, cb RecvCallback) {
	go func() {
		if !deadline.IsZero() {
			_ = c.nc.SetReadDeadline(deadline)
		} else {
			_ = c.nc.SetReadDeadline(time.Time{})
		}
		n, err := c.nc.Read(buf)
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

func (c *tcpConn) Send(buf []byte, cb SendCallback) {
	go func() {
		n, err := c.nc.Write(buf)
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

func (c *tcpConn) Shutdown(cb Callback) {
	go func() {
		var err error
		if tc, ok := c.nc.(*net.TCPConn); ok {
			err = tc.CloseWrite()
		}
		cb(err)
	}()
}

func (c *tcpConn) Close(cb Callback) {
	err := c.nc.Close()
	if cb != nil {
		cb(err)
	}
}

func (c *tcpConn) RemoteAddr() string {
	if a := c.nc.RemoteAddr(); a != nil {
		return a.String()
	}
	return ""
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	te, ok := err.(timeouter)
	return ok && te.Timeout()
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}

// TCPDialer dials plain TCP connections (spec §4.4 "Connect").
type TCPDialer struct{}

func (TCPDialer) Dial(network, address, _hostname string) (Conn, error) {
	nc, err := net.Dial(network, address)
	if err != nil {
		return nil, err
	}
	return NewTCPConn(nc), nil
}

// TCPListener owns a plain-TCP listening socket (spec §4.6).
type TCPListener struct {
	ln net.Listener
}

// ListenTCP binds address. It takes no backlog argument: Go's net package
// does not expose backlog sizing, so the OS/runtime default applies.
func ListenTCP(address string) (*TCPListener, error) {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}
	return &TCPListener{ln: ln}, nil
}

func (l *TCPListener) Addr() string { return l.ln.Addr().String() }

func (l *TCPListener) Accept(cb AcceptCallback) {
	go func() {
		nc, err := l.ln.Accept()
		if err != nil {
			cb(nil, err)
			return
		}
		cb(NewTCPConn(nc), nil)
	}()
}

func (l *TCPListener) Close() error { return l.ln.Close() }
