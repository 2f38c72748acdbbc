package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ravenhq/ravenauth/credstore"
	"github.com/ravenhq/ravenauth/internal/metrics"
)

const defaultTimeout = 30 * time.Second

// Config wires a transport Client to one backend.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	// BaseURL is the scheme://host[:port] prefix of the Raven backend.
	BaseURL string
	// RefreshPath is the versioned path of the credential refresh endpoint.
	// A 401 from this path always expires the session and is never retried.
	RefreshPath string
	// SessionProbePath is the versioned path of the current-user endpoint.
	// A 401 from it is the expected anonymous-visitor outcome: no refresh,
	// no session-expired signal.
	SessionProbePath string
	// AppVersion is sent as the x-app-version header.
	AppVersion string
	// ClientID is the stable per-process x-client-id header value. A fresh
	// UUID is generated when empty.
	ClientID string
	// Timeout bounds each HTTP round trip. Defaults to 30s.
	Timeout time.Duration
}

// Option customizes a Client at construction time.
type Option func(*Client)

// WithHTTPClient substitutes the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithLogger attaches a structured logger. The default logger discards
// everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithMetrics attaches request/refresh counters. A nil Metrics is valid and
// records nothing.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithSessionExpiredHandler registers the callback invoked when a refresh
// fails and the session is declared expired. The presentation shell
// registers exactly one handler at startup; it is called once per expiry.
func WithSessionExpiredHandler(fn func()) Option {
	return func(c *Client) { c.onExpired = fn }
}

// WithMiddleware appends mw to the request pipeline, after the built-in
// header, request-id and credential middlewares.
func WithMiddleware(mw Middleware) Option {
	return func(c *Client) { c.extra = append(c.extra, mw) }
}

// Client issues requests against the Raven backend. It is safe for
// concurrent use; the credential store and the refresh coordinator are the
// only mutable state it shares between requests.
type Client struct {
	cfg        Config
	httpClient *http.Client
	creds      credstore.Store
	coord      *Coordinator
	pipeline   Middleware
	extra      []Middleware
	metrics    *metrics.Metrics
	onExpired  func()
	log        zerolog.Logger
}

// New validates cfg and returns a ready Client.
func New(cfg Config, creds credstore.Store, opts ...Option) (*Client, error) {
	if creds == nil {
		return nil, errors.New("transport: credential store required")
	}
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.New("transport: invalid base URL")
	}
	if cfg.RefreshPath == "" || cfg.SessionProbePath == "" {
		return nil, errors.New("transport: refresh and session probe paths required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.ClientID == "" {
		cfg.ClientID = uuid.NewString()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &Client{
		cfg:   cfg,
		creds: creds,
		coord: NewCoordinator(),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	mws := []Middleware{
		StandardHeaders(cfg.AppVersion, cfg.ClientID),
		RequestID(),
		CredentialHeader(creds),
	}
	mws = append(mws, c.extra...)
	c.pipeline = Chain(mws...)

	return c, nil
}

// Meta is the success marker of the response envelope.
type Meta struct {
	Success bool `json:"success"`
}

// Envelope is the backend's uniform response wrapper.
type Envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Meta    Meta            `json:"meta"`
}

// Response is a decoded successful reply.
type Response struct {
	Status   int
	Header   http.Header
	Envelope Envelope
}

// DecodeData unmarshals the envelope's data payload into v.
func (r *Response) DecodeData(v any) error {
	if len(r.Envelope.Data) == 0 {
		return &UnexpectedError{Message: "response carried no data"}
	}
	if err := json.Unmarshal(r.Envelope.Data, v); err != nil {
		return &UnexpectedError{Message: "malformed response data", Err: err}
	}
	return nil
}

// Send issues one request and returns the decoded envelope. A 401 response
// is routed through the refresh coordinator; every other failure maps to one
// of the error types in this package.
func (c *Client) Send(ctx context.Context, method, path string, body any, params Params) (*Response, error) {
	return c.send(ctx, method, path, body, params, false)
}

func (c *Client) send(ctx context.Context, method, path string, body any, params Params, retried bool) (*Response, error) {
	c.metrics.IncRequest()

	status, header, raw, err := c.roundTrip(ctx, method, path, body, params)
	if err != nil {
		c.metrics.IncRequestFailure(failureKind(err))
		return nil, err
	}

	c.log.Debug().Str("method", method).Str("path", path).Int("status", status).Msg("request completed")

	if isSuccessStatus(status) {
		resp, err := decodeResponse(status, header, raw)
		if err != nil {
			c.metrics.IncRequestFailure(metrics.KindUnexpected)
		}
		return resp, err
	}

	if status != http.StatusUnauthorized {
		c.metrics.IncRequestFailure(metrics.KindServer)
		return nil, &ServerError{Status: status, Message: messageFromBody(raw), Body: raw}
	}

	c.metrics.IncRequestFailure(metrics.KindAuth)
	return c.handleUnauthorized(ctx, method, path, body, params, raw, retried)
}

// handleUnauthorized implements the 401 state machine. It either returns the
// original AuthError, or absorbs it by refreshing once and replaying.
func (c *Client) handleUnauthorized(ctx context.Context, method, path string, body any, params Params, raw []byte, retried bool) (*Response, error) {
	authErr := &AuthError{Message: authMessage(raw), Path: path}

	// A 401 from the refresh endpoint itself means the backend no longer
	// honors the credential at all.
	if path == c.cfg.RefreshPath {
		c.expireSession(ctx)
		return nil, authErr
	}

	// The startup session probe is expected to 401 for anonymous visitors.
	if path == c.cfg.SessionProbePath {
		return nil, authErr
	}

	// Replays are never re-intercepted.
	if retried {
		return nil, authErr
	}

	cred, err := c.creds.Get(ctx)
	if err != nil {
		return nil, &UnexpectedError{Message: "credential store read failed", Err: err}
	}
	if cred == "" {
		// Nothing to refresh with.
		return nil, authErr
	}

	if !c.coord.TryBegin() {
		// Another request is mid-refresh. Reject instead of queuing; the
		// caller resubmits if it still cares.
		c.metrics.IncRefreshRejected()
		c.log.Debug().Str("path", path).Msg("refresh in flight, rejecting concurrent 401")
		return nil, authErr
	}

	refreshErr := func() error {
		defer c.coord.End()
		c.metrics.IncRefreshAttempt()
		return c.refresh(ctx)
	}()

	if refreshErr != nil {
		c.metrics.IncRefreshFailure()
		c.log.Warn().Err(refreshErr).Msg("session refresh failed")
		c.expireSession(ctx)
		return nil, authErr
	}

	c.metrics.IncRefreshSuccess()
	c.log.Debug().Str("path", path).Msg("credential rotated, replaying request")

	return c.send(ctx, method, path, body, params, true)
}

// refresh exchanges the current credential for a rotated one. It calls the
// refresh endpoint directly so the 401 interception above never recurses.
func (c *Client) refresh(ctx context.Context) error {
	status, _, raw, err := c.roundTrip(ctx, http.MethodPost, c.cfg.RefreshPath, nil, nil)
	if err != nil {
		return err
	}
	if !isSuccessStatus(status) {
		return &ServerError{Status: status, Message: messageFromBody(raw), Body: raw}
	}

	resp, err := decodeResponse(status, nil, raw)
	if err != nil {
		return err
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := resp.DecodeData(&payload); err != nil {
		return err
	}
	if payload.Token == "" {
		return &UnexpectedError{Message: "refresh response carried no credential"}
	}
	return c.creds.Set(ctx, payload.Token)
}

// expireSession clears the credential and fires the session-expired signal
// exactly once for this expiry.
func (c *Client) expireSession(ctx context.Context) {
	if err := c.creds.Clear(ctx); err != nil {
		c.log.Warn().Err(err).Msg("credential clear failed during session expiry")
	}
	c.metrics.IncSessionExpired()
	c.log.Warn().Msg("session expired")
	if c.onExpired != nil {
		c.onExpired()
	}
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body any, params Params) (int, http.Header, []byte, error) {
	req, err := c.newRequest(ctx, method, path, body, params)
	if err != nil {
		return 0, nil, nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, nil, &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, &NetworkError{Err: err}
	}
	return resp.StatusCode, resp.Header, raw, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any, params Params) (*http.Request, error) {
	target := c.cfg.BaseURL + path
	if q := EncodeQuery(params); q != "" {
		target += "?" + q
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, &UnexpectedError{Message: "request body serialization failed", Err: err}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &UnexpectedError{Message: "request construction failed", Err: err}
	}
	return c.pipeline(req)
}

func decodeResponse(status int, header http.Header, raw []byte) (*Response, error) {
	resp := &Response{Status: status, Header: header}
	if status == http.StatusNoContent || len(raw) == 0 {
		return resp, nil
	}
	if err := json.Unmarshal(raw, &resp.Envelope); err != nil {
		return nil, &UnexpectedError{Message: "malformed response envelope", Err: err}
	}
	return resp, nil
}

func isSuccessStatus(status int) bool {
	switch status {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent:
		return true
	}
	return false
}

func authMessage(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return payload.Message
}

func failureKind(err error) string {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return metrics.KindNetwork
	}
	return metrics.KindUnexpected
}
