// Package guard decides whether a navigation target may render given the
// current session state. Protected views require an authenticated session;
// public-only views (login, register) reject one. Until the session is
// initialized the guard asks the caller to wait rather than navigate, so a
// slow startup probe never causes a redirect flicker.
//
// Decisions are pure functions of a session snapshot. The package holds no
// state of its own beyond the registered route rules.
package guard
