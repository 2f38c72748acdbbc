// Package transport wraps outbound HTTP requests to the Raven backend: it
// serializes query parameters deterministically, applies the request
// middleware pipeline (standard headers, credential attachment, request
// IDs), decodes the response envelope, and classifies failures.
//
// The refresh [Coordinator] lives here too. It intercepts 401 responses,
// serializes concurrent refresh attempts so at most one is ever in flight,
// and replays the failed request exactly once after a successful rotation.
// A second request that hits 401 while a refresh is already running is
// rejected immediately with its original error; nothing is queued. That
// occasionally surfaces a spurious failure to the losing caller, which is
// the documented trade-off for bounded memory under bursty traffic.
//
// # What this package must NOT do
//
//   - Touch session state. Callers observe outcomes through returned errors;
//     the flow layer owns state transitions.
//   - Inspect credential contents. The credential reference is an opaque
//     string read from and written to the credstore.
//   - Retry on network failure. Retry-by-resubmission is the caller's job.
package transport
