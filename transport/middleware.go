package transport

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ravenhq/ravenauth/credstore"
)

// Header names attached by the built-in middlewares.
const (
	HeaderAppVersion = "x-app-version"
	HeaderClientID   = "x-client-id"
	HeaderRequestID  = "x-request-id"
	HeaderCredential = "x-auth-user"
)

// Middleware transforms an outgoing request. Implementations must treat the
// input as immutable and return a new (or cloned) request, never mutate a
// request another middleware already observed.
type Middleware func(req *http.Request) (*http.Request, error)

// Chain composes middlewares left to right into a single Middleware.
func Chain(mws ...Middleware) Middleware {
	return func(req *http.Request) (*http.Request, error) {
		var err error
		for _, mw := range mws {
			if mw == nil {
				continue
			}
			req, err = mw(req)
			if err != nil {
				return nil, err
			}
		}
		return req, nil
	}
}

// StandardHeaders attaches the Accept/Content-Type pair and the client
// identification headers expected by the Raven backend. clientID is a stable
// per-process identifier, the analog of the browser tab's session id.
func StandardHeaders(appVersion, clientID string) Middleware {
	return func(req *http.Request) (*http.Request, error) {
		out := req.Clone(req.Context())
		out.Header.Set("Accept", "application/json")
		out.Header.Set("Content-Type", "application/json; charset=utf-8")
		if appVersion != "" {
			out.Header.Set(HeaderAppVersion, appVersion)
		}
		if clientID != "" {
			out.Header.Set(HeaderClientID, clientID)
		}
		return out, nil
	}
}

// RequestID stamps every request with a fresh correlation id.
func RequestID() Middleware {
	return func(req *http.Request) (*http.Request, error) {
		out := req.Clone(req.Context())
		out.Header.Set(HeaderRequestID, uuid.NewString())
		return out, nil
	}
}

// CredentialHeader attaches the stored credential reference to the request.
// Requests sent while no credential is stored go out without the header.
func CredentialHeader(store credstore.Store) Middleware {
	return func(req *http.Request) (*http.Request, error) {
		cred, err := store.Get(req.Context())
		if err != nil {
			return nil, &UnexpectedError{Message: "credential store read failed", Err: err}
		}
		if cred == "" {
			return req, nil
		}
		out := req.Clone(req.Context())
		out.Header.Set(HeaderCredential, cred)
		return out, nil
	}
}
