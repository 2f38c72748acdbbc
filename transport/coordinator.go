package transport

import "sync"

// Coordinator serializes refresh attempts. It is a two-state machine, idle
// or refreshing, guarded by a mutex: TryBegin claims the refreshing state
// and End releases it. Callers must pair every successful TryBegin with a
// deferred End so the idle transition survives panics and error paths.
type Coordinator struct {
	mu         sync.Mutex
	refreshing bool
}

// NewCoordinator returns an idle coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// TryBegin attempts the idle->refreshing transition. It returns false when a
// refresh is already in flight; the caller must then reject its request
// rather than queue it.
func (c *Coordinator) TryBegin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.refreshing {
		return false
	}
	c.refreshing = true
	return true
}

// End performs the refreshing->idle transition. Calling End while idle is a
// no-op.
func (c *Coordinator) End() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshing = false
}

// Refreshing reports whether a refresh attempt is currently in flight.
func (c *Coordinator) Refreshing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshing
}
