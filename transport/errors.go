package transport

import (
	"encoding/json"
	"errors"
	"fmt"
)

const fallbackServerMessage = "An unknown error occurred"

// ErrUnauthorized is matched by every [AuthError] through errors.Is, so
// callers can branch on 401 semantics without naming the concrete type.
var ErrUnauthorized = errors.New("unauthorized")

// NetworkError reports that no response was received at all: connection
// refused, DNS failure, timeout and the like.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// AuthError reports a 401 response. The refresh coordinator absorbs it for
// the single-retry path; callers see it only when refresh was not attempted
// or did not help.
type AuthError struct {
	Message string
	Path    string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}
	return "unauthorized: " + e.Message
}

func (e *AuthError) Unwrap() error {
	return ErrUnauthorized
}

// ServerError reports a non-2xx, non-401 response. Message is taken verbatim
// from the response body when present.
type ServerError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
}

// UnexpectedError reports anything that is neither a transport failure nor a
// classified server response, e.g. a malformed response envelope.
type UnexpectedError struct {
	Message string
	Err     error
}

func (e *UnexpectedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected error: %s: %v", e.Message, e.Err)
	}
	return "unexpected error: " + e.Message
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

// messageFromBody pulls the backend's {message} field out of an error body,
// falling back to a generic message when the body is absent or unreadable.
func messageFromBody(body []byte) string {
	if len(body) == 0 {
		return fallbackServerMessage
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message == "" {
		return fallbackServerMessage
	}
	return payload.Message
}
