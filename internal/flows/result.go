package flows

import (
	"errors"

	"github.com/ravenhq/ravenauth/session"
	"github.com/ravenhq/ravenauth/transport"
)

// FailureKind names the class of failure a flow ended with. The root package
// maps kinds onto its sentinel errors and onto session state.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureNetwork
	FailureUnauthorized
	FailureServer
	FailureUnexpected
)

// User-visible messages for failures the server gave us nothing useful for.
const (
	networkMessage    = "Network error - please check your connection"
	unexpectedMessage = "An unexpected error occurred"
)

// Result is the outcome of a single flow run.
type Result struct {
	Failure FailureKind
	Err     error
	Message string
	User    *session.User
}

// Failed reports whether the flow ended in any failure.
func (r Result) Failed() bool { return r.Failure != FailureNone }

// classify buckets a transport error into a failure kind and picks the
// message shown to the user. Server-provided messages pass through verbatim.
func classify(err error) (FailureKind, string) {
	var netErr *transport.NetworkError
	if errors.As(err, &netErr) {
		return FailureNetwork, networkMessage
	}
	var authErr *transport.AuthError
	if errors.As(err, &authErr) {
		msg := authErr.Message
		if msg == "" {
			msg = "Unauthorized"
		}
		return FailureUnauthorized, msg
	}
	var srvErr *transport.ServerError
	if errors.As(err, &srvErr) {
		return FailureServer, srvErr.Message
	}
	return FailureUnexpected, unexpectedMessage
}

func failureResult(err error) Result {
	kind, msg := classify(err)
	return Result{Failure: kind, Err: err, Message: msg}
}
