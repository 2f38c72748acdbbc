// Package session holds the client-side authentication state: the signed-in
// user, the authenticated/initialized/loading flags, and the last
// human-readable failure message.
//
// The [Store] is the single writer for this state. Every mutation is atomic
// behind one mutex, and watchers observe consistent snapshots only. There is
// no way to read a half-applied transition.
//
// # What this package must NOT do
//
//   - Perform I/O. State transitions are pure; network effects live in the
//     transport and flow layers.
//   - Hold the credential reference. Credentials are owned by the transport
//     through the credstore package and never appear in session state.
//   - Invoke watcher callbacks while holding the store lock.
package session
