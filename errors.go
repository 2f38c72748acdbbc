package ravenauth

import (
	"errors"

	"github.com/ravenhq/ravenauth/transport"
)

var (
	// ErrClientNotReady is returned when an operation runs on a nil or
	// unbuilt client.
	ErrClientNotReady = errors.New("client not initialized")
	// ErrInvalidRequest wraps every request validation failure.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnauthorized matches every AuthError via errors.Is: it is the
	// errors.Is target for any operation the server rejected with a 401
	// that refresh could not absorb.
	ErrUnauthorized = transport.ErrUnauthorized
)

// The transport error types are part of the public surface: callers use
// errors.As against them to tell network faults, auth rejections and server
// faults apart.
type (
	NetworkError    = transport.NetworkError
	AuthError       = transport.AuthError
	ServerError     = transport.ServerError
	UnexpectedError = transport.UnexpectedError
)
