// Package ioqueue defines the pluggable byte-stream transport contract
// (spec §4.3) and the asynchronous completion-callback primitives session
// state machines are built from (spec §5). Session code never imports
// net or crypto/tls directly; it only depends on Conn.
//
// The real async I/O submission queue and the TLS engine are external
// collaborators per spec §1 — this package specifies their contract
// (Conn, Dialer, Listener) and provides the one faithful
// implementation a standalone Go module can offer: goroutine-backed
// completions over net.Conn / crypto/tls.Conn, instead of reimplementing
// TCP or TLS from the wire up as the teacher repository does (see
// DESIGN.md for why that subtree was dropped rather than adapted).
package ioqueue

import (
	"time"

	"github.com/pkg/errors"
)

// ErrCancelled is reported to a Recv callback when its deadline expires
// before completion (spec §4.3 "recv"). Send takes no deadline.
var ErrCancelled = errors.New("ioqueue: operation cancelled (deadline exceeded)")

// RecvCallback is invoked exactly once when a Recv completes: ok is false
// on error (distinct from the zero-length "peer closed" case), n is the
// number of bytes written into the buffer passed to Recv.
type RecvCallback func(ok bool, n int, err error)

// SendCallback is invoked exactly once when a Send completes.
type SendCallback func(ok bool, n int, err error)

// Callback is invoked exactly once when an operation with no payload
// (Shutdown, Close) completes.
type Callback func(err error)

// Conn is the uniform byte-stream contract spec §4.3 describes: plain
// TCP and TLS connections implement it identically from the session's
// point of view. For the TLS variant the hostname for SNI/certificate
// validation is bound before first I/O by TLSDialer.
type Conn interface {
	// Recv reads up to len(buf) bytes. cb(true, 0, nil) means an orderly
	// close by the peer. Deadline, if non-zero, is an absolute instant;
	// expiry reports cb(false, 0, ErrCancelled).
	Recv(buf []byte, deadline time.Time, cb RecvCallback)

	// Send writes up to len(buf) bytes. Partial sends are expected; the
	// caller re-arms with the unsent remainder. cb(true, 0, nil) means
	// the peer closed its read side.
	Send(buf []byte, cb SendCallback)

	// Shutdown initiates an orderly shutdown (TLS: emits close-notify).
	// cb fires unconditionally, with any error; the caller closes next.
	Shutdown(cb Callback)

	// Close releases the underlying file descriptor.
	Close(cb Callback)

	// RemoteAddr returns the string form of the peer address, used for
	// access logging (spec §7).
	RemoteAddr() string
}

// Dialer produces an outbound Conn for the client session (spec §4.4
// "Connect"). A TLS dialer additionally binds the hostname for SNI
// before any I/O occurs, matching spec §4.3's TLS variant contract.
type Dialer interface {
	Dial(network, address, hostname string) (Conn, error)
}

// Listener owns a listening socket (spec §4.6) and yields accepted
// connections. Acceptor errors are reported through AcceptCallback with
// a nil Conn. "Not ready" (TLS context not loaded) is reported by
// NewTLSListener before any listener exists, not through Accept.
type Listener interface {
	Addr() string
	Accept(cb AcceptCallback)
	Close() error
}

// AcceptCallback is invoked once per accepted connection, or with an
// error to signal an accept-side failure (spec §4.6 "Accept-side
// errors").
type AcceptCallback func(conn Conn, err error)
