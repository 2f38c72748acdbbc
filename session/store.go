package session

import "sync"

// Store defines a public type used by ravenauth APIs.
//
// Store instances are safe for concurrent use. All mutations are applied
// atomically and watchers are notified with the resulting snapshot.
type Store struct {
	mu       sync.Mutex
	state    State
	watchers []func(State)
}

// NewStore returns an empty, uninitialized session store.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns a copy of the current session state. The returned User
// pointer, when set, must be treated as read-only.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Watch registers fn to be called with the new snapshot after every
// mutation. Callbacks run outside the store lock, in registration order, on
// the goroutine that performed the mutation.
func (s *Store) Watch(fn func(State)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

// BeginRequest marks an auth-affecting request as in flight and clears any
// prior failure message.
func (s *Store) BeginRequest() {
	s.apply(func(st *State) {
		st.Loading = true
		st.Err = ""
	})
}

// CompleteSuccess records a successful authentication outcome.
func (s *Store) CompleteSuccess(user *User) {
	s.apply(func(st *State) {
		st.User = user
		st.Authenticated = true
		st.Initialized = true
		st.Loading = false
		st.Err = ""
	})
}

// CompleteFailure records a failed authentication outcome. Failure is a
// valid terminal initialization state: the session is initialized even
// though nobody is signed in.
func (s *Store) CompleteFailure(message string) {
	s.apply(func(st *State) {
		st.User = nil
		st.Authenticated = false
		st.Initialized = true
		st.Loading = false
		st.Err = message
	})
}

// CompleteUnauthenticated records the expected not-signed-in outcome of the
// startup session probe. Unlike [Store.CompleteFailure] it stores no failure
// message; an anonymous visitor is not an error.
func (s *Store) CompleteUnauthenticated() {
	s.apply(func(st *State) {
		st.User = nil
		st.Authenticated = false
		st.Initialized = true
		st.Loading = false
	})
}

// Clear removes the signed-in user and any failure message while keeping the
// session initialized. Used on sign-out and on session expiry.
func (s *Store) Clear() {
	s.apply(func(st *State) {
		st.User = nil
		st.Authenticated = false
		st.Initialized = true
		st.Loading = false
		st.Err = ""
	})
}

// Reset returns the store to its zero state, including Initialized=false.
// Only explicit logout-and-reinitialize paths should call it.
func (s *Store) Reset() {
	s.apply(func(st *State) {
		*st = State{}
	})
}

// ClearError drops the stored failure message without touching anything else.
func (s *Store) ClearError() {
	s.apply(func(st *State) {
		st.Err = ""
	})
}

// TryBeginInit claims the one-shot initialization slot. It returns false
// when the session is already initialized or another initialization attempt
// is in flight, so concurrent callers collapse into a single probe.
func (s *Store) TryBeginInit() bool {
	s.mu.Lock()
	if s.state.Initialized || s.state.Initializing {
		s.mu.Unlock()
		return false
	}
	s.state.Initializing = true
	snapshot, watchers := s.state, s.watchers
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(snapshot)
	}
	return true
}

// EndInit releases the initialization slot claimed by [Store.TryBeginInit].
func (s *Store) EndInit() {
	s.apply(func(st *State) {
		st.Initializing = false
	})
}

func (s *Store) apply(mutate func(*State)) {
	s.mu.Lock()
	mutate(&s.state)
	snapshot, watchers := s.state, s.watchers
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(snapshot)
	}
}
