// Package flows runs the auth operations against the transport without any
// root package dependencies. Each runner returns a Result carrying a failure
// kind and a user-visible message; the root package maps those onto session
// state transitions and its public error surface.
package flows
