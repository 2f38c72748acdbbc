package ravenauth

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/ravenhq/ravenauth/credstore"
	"github.com/ravenhq/ravenauth/internal/events"
	"github.com/ravenhq/ravenauth/internal/flows"
	"github.com/ravenhq/ravenauth/internal/metrics"
	"github.com/ravenhq/ravenauth/session"
	"github.com/ravenhq/ravenauth/transport"
)

// Client is the assembled session engine. It is safe for concurrent use.
//
// Auth operations follow a three-phase pattern against the session store:
// mark the request in flight, run the flow, then record the outcome. Watchers
// registered with [Client.Watch] observe every phase.
type Client struct {
	cfg        Config
	sessions   *session.Store
	creds      credstore.Store
	transport  *transport.Client
	service    flows.Service
	routes     flows.Routes
	metrics    *metrics.Metrics
	dispatcher *events.Dispatcher
	onExpired  func()
	log        zerolog.Logger
}

// Session returns a snapshot of the current session state.
func (c *Client) Session() State {
	return c.sessions.Snapshot()
}

// Watch registers fn to observe every session state change. Callbacks run on
// the goroutine performing the mutation and must not block.
func (c *Client) Watch(fn func(State)) {
	c.sessions.Watch(fn)
}

// Transport exposes the underlying HTTP client so callers can reach the rest
// of the backend API with the same headers, credential handling and 401
// recovery the auth flows get.
func (c *Client) Transport() *transport.Client {
	return c.transport
}

// Initialize runs the one-shot startup session probe. Concurrent and repeat
// callers collapse into a single probe; losers get the current snapshot and
// a nil error. A 401 answer is the normal anonymous-visitor outcome and is
// not reported as an error.
func (c *Client) Initialize(ctx context.Context) (State, error) {
	if err := c.ready(); err != nil {
		return State{}, err
	}
	if !c.sessions.TryBeginInit() {
		return c.sessions.Snapshot(), nil
	}
	defer c.sessions.EndInit()

	c.metrics.IncSessionProbe()
	res := c.service.CurrentUser(ctx)

	switch {
	case !res.Failed():
		c.sessions.CompleteSuccess(res.User)
		c.emit(ctx, events.TypeSessionProbe, "", true, nil)
		return c.sessions.Snapshot(), nil
	case res.Failure == flows.FailureUnauthorized:
		c.sessions.CompleteUnauthenticated()
		c.emit(ctx, events.TypeSessionProbe, "", false, nil)
		return c.sessions.Snapshot(), nil
	default:
		c.sessions.CompleteFailure(res.Message)
		c.emit(ctx, events.TypeSessionProbe, "", false, res.Err)
		return c.sessions.Snapshot(), res.Err
	}
}

// SignIn authenticates with email and password. On success the session holds
// the signed-in user; on failure the session carries the user-visible message
// and the typed error is returned.
func (c *Client) SignIn(ctx context.Context, req LoginRequest) (State, error) {
	if err := c.ready(); err != nil {
		return State{}, err
	}
	if err := req.Validate(); err != nil {
		return c.sessions.Snapshot(), err
	}

	c.sessions.BeginRequest()
	res := c.service.SignIn(ctx, flows.Credentials{Email: req.Email, Password: req.Password})
	c.metrics.IncSignIn(!res.Failed())
	c.emit(ctx, events.TypeSignIn, req.Email, !res.Failed(), res.Err)

	if res.Failed() {
		c.sessions.CompleteFailure(res.Message)
		return c.sessions.Snapshot(), res.Err
	}
	c.sessions.CompleteSuccess(res.User)
	return c.sessions.Snapshot(), nil
}

// SignUp registers a new account. The backend signs the account in as part
// of registration, so a successful sign-up leaves the session authenticated.
func (c *Client) SignUp(ctx context.Context, req RegisterRequest) (State, error) {
	if err := c.ready(); err != nil {
		return State{}, err
	}
	if err := req.Validate(); err != nil {
		return c.sessions.Snapshot(), err
	}

	c.sessions.BeginRequest()
	res := c.service.SignUp(ctx, flows.Registration{Email: req.Email, Password: req.Password, Name: req.Name})
	c.metrics.IncRegistration(!res.Failed())
	c.emit(ctx, events.TypeSignUp, req.Email, !res.Failed(), res.Err)

	if res.Failed() {
		c.sessions.CompleteFailure(res.Message)
		return c.sessions.Snapshot(), res.Err
	}
	c.sessions.CompleteSuccess(res.User)
	return c.sessions.Snapshot(), nil
}

// SignOut ends the session. Local state and the stored credential are
// cleared whether or not the backend call succeeds; a remote failure is
// still returned so callers can log it.
func (c *Client) SignOut(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}

	c.sessions.BeginRequest()
	res := c.service.SignOut(ctx)
	c.metrics.IncSignOut()
	c.emit(ctx, events.TypeSignOut, "", !res.Failed(), res.Err)

	c.sessions.Clear()
	return res.Err
}

// CurrentUser re-probes the backend for the session's user and updates the
// session on success. A 401 clears the session quietly.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	c.sessions.BeginRequest()
	c.metrics.IncSessionProbe()
	res := c.service.CurrentUser(ctx)

	switch {
	case !res.Failed():
		c.sessions.CompleteSuccess(res.User)
		return res.User, nil
	case res.Failure == flows.FailureUnauthorized:
		c.sessions.CompleteUnauthenticated()
		return nil, res.Err
	default:
		c.sessions.CompleteFailure(res.Message)
		return nil, res.Err
	}
}

// RefreshSession rotates the credential ahead of need. The transport already
// rotates transparently on 401; most callers never need this.
func (c *Client) RefreshSession(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}
	res := c.service.Refresh(ctx)
	c.emit(ctx, events.TypeRefresh, "", !res.Failed(), res.Err)
	return res.Err
}

// ForgotPassword asks the backend to mail a reset link. The returned message
// is the backend's confirmation text.
func (c *Client) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}
	if err := req.Validate(); err != nil {
		return "", err
	}
	res := c.service.ForgotPassword(ctx, req.Email)
	c.emit(ctx, events.TypePasswordReset, req.Email, !res.Failed(), res.Err)
	return res.Message, res.Err
}

// ResetPassword completes a mailed reset with a new password.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}
	if err := req.Validate(); err != nil {
		return "", err
	}
	res := c.service.ResetPassword(ctx, flows.PasswordReset{
		Token:           req.Token,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	c.emit(ctx, events.TypePasswordReset, "", !res.Failed(), res.Err)
	return res.Message, res.Err
}

// ChangePassword changes the signed-in user's password.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}
	if err := req.Validate(); err != nil {
		return "", err
	}
	res := c.service.ChangePassword(ctx, flows.PasswordChange{
		CurrentPassword:    req.CurrentPassword,
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
	})
	c.emit(ctx, events.TypePasswordReset, "", !res.Failed(), res.Err)
	return res.Message, res.Err
}

// ClearError drops the session's stored failure message. The presentation
// shell calls it when the user dismisses the error or edits the form.
func (c *Client) ClearError() {
	c.sessions.ClearError()
}

// MetricsRegistry returns the prometheus registry holding the client's
// counters, or nil when metrics are disabled.
func (c *Client) MetricsRegistry() *prometheus.Registry {
	return c.metrics.Registry()
}

// EventsDropped reports how many events the dispatcher discarded under
// backpressure.
func (c *Client) EventsDropped() uint64 {
	return c.dispatcher.Dropped()
}

// Close drains and stops the event dispatcher. The client must not be used
// after Close.
func (c *Client) Close() {
	c.dispatcher.Close()
}

// sessionExpired reacts to the transport declaring the session dead: a
// refresh failed and the credential is already cleared. Local state is
// cleared here, then the registered handler routes the user to login.
func (c *Client) sessionExpired() {
	c.sessions.Clear()
	c.emit(context.Background(), events.TypeSessionExpired, "", false, nil)
	c.log.Warn().Msg("session expired, local state cleared")
	if c.onExpired != nil {
		c.onExpired()
	}
}

func (c *Client) ready() error {
	if c == nil || c.transport == nil {
		return ErrClientNotReady
	}
	return nil
}

func (c *Client) emit(ctx context.Context, eventType, email string, success bool, err error) {
	if c.dispatcher == nil {
		return
	}
	event := events.Event{
		Timestamp: time.Now().UTC(),
		Type:      eventType,
		Email:     email,
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}
	c.dispatcher.Emit(ctx, event)
}
