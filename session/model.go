package session

// User is the identity record returned by the Raven backend. It is present
// in session state only while the session is authenticated.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// State is a point-in-time snapshot of the session.
//
// Invariants:
//   - Authenticated implies User != nil, except transiently while Loading.
//   - Initialized transitions false to true exactly once per session
//     lifetime; only [Store.Reset] takes it back to false.
type State struct {
	User          *User
	Authenticated bool
	Initialized   bool
	Initializing  bool
	Loading       bool
	Err           string
}
