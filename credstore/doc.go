// Package credstore stores the opaque credential reference that proves the
// current session to the Raven backend.
//
// The credential is owned exclusively by the transport layer: it attaches the
// value to outgoing requests and rotates it after a refresh. Presentation
// code never reads it, which keeps the only mutable shared secret confined to
// one module.
//
// Two implementations are provided. [MemoryStore] scopes the credential to
// the process, the closest Go analog of tab-scoped browser storage.
// [RedisStore] persists it with a TTL so headless deployments (daemons, CLI
// tools) keep their session across restarts.
//
// # What this package must NOT do
//
//   - Inspect or decode the credential. It is an opaque string end to end.
//   - Decide when to refresh or clear. That policy belongs to the transport's
//     refresh coordinator.
package credstore
