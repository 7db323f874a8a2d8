package server

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/tveon/qhttp/wire"
)

// HandleFunc is the user request handler. It receives the request by
// borrowed reference (spec §4.5 step 4: "the handler MUST NOT retain
// references to request bytes past the respond call unless it copies
// them") and a Responder it must call exactly once.
type HandleFunc func(r *Responder, req *wire.Request)

// ErrAlreadyResponded is returned by a second call to Responder.Respond
// on the same request (spec §4.5 step 4: "the handler MUST call
// respond(Response) exactly once").
var ErrAlreadyResponded = errors.New("server: respond called more than once")

// Responder holds a strong reference to the owning session so the
// handler may respond asynchronously, long after the handler function
// itself has returned (spec §4.5 step 4).
type Responder struct {
	sess *session
	used int32
}

// Respond sends resp and resumes the session's keep-alive/close
// decision. Calling it a second time returns ErrAlreadyResponded without
// touching the connection.
func (r *Responder) Respond(resp *wire.Response) error {
	if !atomic.CompareAndSwapInt32(&r.used, 0, 1) {
		return ErrAlreadyResponded
	}
	r.sess.respond(resp)
	return nil
}
