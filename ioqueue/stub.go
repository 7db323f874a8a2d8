package ioqueue

import (
	"bytes"
	"sync"
	"time"
)

// stubConn is an in-memory Conn used by tests to drive client/server
// session scenarios (spec §8) without opening real sockets. Adapted from
// the teacher's transport/conn_stub.go: a pair of stubConns are wired to
// each other's stream channel so writes on one side arrive as reads on
// the other.
type stubConn struct {
	mu        sync.Mutex
	closed    bool // this side called Close
	inboxShut bool // our stream channel has been closed by the peer's Close

	remoteAddr string

	buf         *bytes.Buffer
	stream      chan []byte
	counterpart *stubConn
}

var _ Conn = (*stubConn)(nil)

// NewStubConnPair returns two connected in-memory Conns: writes to a are
// delivered as reads on b, and vice versa.
func NewStubConnPair(addrA, addrB string) (a, b Conn) {
	ca := &stubConn{buf: bytes.NewBuffer(nil), stream: make(chan []byte, 16), remoteAddr: addrB}
	cb := &stubConn{buf: bytes.NewBuffer(nil), stream: make(chan []byte, 16), remoteAddr: addrA}
	ca.counterpart = cb
	cb.counterpart = ca
	return ca, cb
}

func (s *stubConn) Recv(buf []byte, deadline time.Time, cb RecvCallback) {
	go func() {
		var timer *time.Timer
		var timeoutCh <-chan time.Time
		if !deadline.IsZero() {
			d := time.Until(deadline)
			if d <= 0 {
				cb(false, 0, ErrCancelled)
				return
			}
			timer = time.NewTimer(d)
			timeoutCh = timer.C
			defer timer.Stop()
		}

		s.mu.Lock()
		if s.buf.Len() > 0 {
			n, _ := s.buf.Read(buf)
			s.mu.Unlock()
			cb(true, n, nil)
			return
		}
		closed := s.closed
		s.mu.Unlock()
		if closed {
			cb(true, 0, nil)
			return
		}

		select {
		case b, ok := <-s.stream:
			if !ok {
				cb(true, 0, nil)
				return
			}
			n := copy(buf, b)
			if remain := len(b) - n; remain > 0 {
				s.mu.Lock()
				s.buf.Write(b[n:])
				s.mu.Unlock()
			}
			cb(true, n, nil)
		case <-timeoutCh:
			cb(false, 0, ErrCancelled)
		}
	}()
}

func (s *stubConn) Send(buf []byte, cb SendCallback) {
	go func() {
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed {
			cb(true, 0, nil)
			return
		}

		c := make([]byte, len(buf))
		copy(c, buf)

		defer func() {
			if r := recover(); r != nil {
				// counterpart's stream channel was closed concurrently.
				cb(true, 0, nil)
			}
		}()
		s.counterpart.stream <- c
		cb(true, len(c), nil)
	}()
}

func (s *stubConn) Shutdown(cb Callback) {
	go func() { cb(nil) }()
}

// Close hangs up this side. Per TCP's half-close semantics, the peer
// observes this as an orderly close on ITS next Recv, not on ours — so
// Close closes the counterpart's inbox channel, not our own.
func (s *stubConn) Close(cb Callback) {
	s.mu.Lock()
	alreadyClosed := s.closed
	s.closed = true
	s.mu.Unlock()

	if !alreadyClosed {
		cp := s.counterpart
		cp.mu.Lock()
		if !cp.inboxShut {
			cp.inboxShut = true
			close(cp.stream)
		}
		cp.mu.Unlock()
	}
	if cb != nil {
		cb(nil)
	}
}

func (s *stubConn) RemoteAddr() string { return s.remoteAddr }
