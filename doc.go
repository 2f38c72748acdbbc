// Package ravenauth is the client-side session engine for the Raven backend.
//
// It owns the full authentication lifecycle of a Raven client process: the
// in-memory session state, the HTTP transport with its deterministic query
// serialization, transparent credential refresh on 401 with single-flight
// coordination, route guarding, and the sign-in/sign-up/sign-out flows.
//
// Construct a client through the builder:
//
//	client, err := ravenauth.New().
//		WithConfig(cfg).
//		WithLogger(log).
//		Build()
//
// The client is safe for concurrent use. Session state is observed through
// [Client.Session] snapshots and [Client.Watch] callbacks; the credential
// itself stays opaque and never leaves the configured credential store.
package ravenauth
