package ravenauth

import (
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ravenhq/ravenauth/credstore"
	"github.com/ravenhq/ravenauth/internal/events"
	"github.com/ravenhq/ravenauth/internal/flows"
	"github.com/ravenhq/ravenauth/internal/metrics"
	"github.com/ravenhq/ravenauth/session"
	"github.com/ravenhq/ravenauth/transport"
)

// Builder assembles a [Client]. A Builder is single-use: Build may be called
// once.
type Builder struct {
	config Config

	httpClient *http.Client
	creds      credstore.Store
	redis      *redis.Client
	log        zerolog.Logger
	sink       events.Sink
	onExpired  func()
	middleware []transport.Middleware

	built bool
}

// New returns a Builder preloaded with defaults.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
		log:    zerolog.Nop(),
	}
}

// WithConfig replaces the builder's configuration wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseURL sets only the backend URL, keeping the remaining defaults.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.API.BaseURL = baseURL
	return b
}

// WithHTTPClient substitutes the underlying HTTP client.
func (b *Builder) WithHTTPClient(h *http.Client) *Builder {
	b.httpClient = h
	return b
}

// WithCredentialStore substitutes the credential store. The default is an
// in-memory store scoped to the process.
func (b *Builder) WithCredentialStore(store credstore.Store) *Builder {
	b.creds = store
	return b
}

// WithRedis persists the credential in redis so headless clients survive
// restarts. Mutually exclusive with [Builder.WithCredentialStore].
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithLogger attaches a structured logger. The default discards everything.
func (b *Builder) WithLogger(log zerolog.Logger) *Builder {
	b.log = log
	return b
}

// WithEventSink registers the sink receiving auth events. Setting a sink
// enables the event dispatcher.
func (b *Builder) WithEventSink(sink Sink) *Builder {
	b.sink = sink
	b.config.Events.Enabled = true
	return b
}

// WithSessionExpiredHandler registers the callback invoked once per session
// expiry, after local state has been cleared. The presentation shell uses it
// to route to the login screen.
func (b *Builder) WithSessionExpiredHandler(fn func()) *Builder {
	b.onExpired = fn
	return b
}

// WithMetricsEnabled toggles the prometheus counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithMiddleware appends a request middleware to the transport pipeline.
func (b *Builder) WithMiddleware(mw transport.Middleware) *Builder {
	b.middleware = append(b.middleware, mw)
	return b
}

// Build validates the configuration, wires the transport, session store and
// flows together and returns the ready Client.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.creds != nil && b.redis != nil {
		return nil, errors.New("WithCredentialStore and WithRedis are mutually exclusive")
	}

	// -------- CREDENTIAL STORE --------
	creds := b.creds
	switch {
	case creds != nil:
	case b.redis != nil:
		creds = credstore.NewRedisStore(b.redis, cfg.Credential.RedisPrefix, cfg.Credential.TTL)
	default:
		creds = credstore.NewMemoryStore()
	}

	// -------- AMBIENT --------
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}
	dispatcher := events.NewDispatcher(events.Config{
		Enabled:    cfg.Events.Enabled,
		BufferSize: cfg.Events.BufferSize,
		DropIfFull: cfg.Events.DropIfFull,
	}, b.sink)

	sessions := session.NewStore()
	routes := newRoutes(cfg.API.Version)

	client := &Client{
		cfg:        cfg,
		sessions:   sessions,
		creds:      creds,
		routes:     routes,
		metrics:    m,
		dispatcher: dispatcher,
		log:        b.log,
	}

	// -------- TRANSPORT --------
	opts := []transport.Option{
		transport.WithLogger(b.log),
		transport.WithMetrics(m),
		transport.WithSessionExpiredHandler(func() { client.sessionExpired() }),
	}
	if b.httpClient != nil {
		opts = append(opts, transport.WithHTTPClient(b.httpClient))
	}
	for _, mw := range b.middleware {
		opts = append(opts, transport.WithMiddleware(mw))
	}

	tr, err := transport.New(transport.Config{
		BaseURL:          cfg.API.BaseURL,
		RefreshPath:      routes.Refresh,
		SessionProbePath: routes.CurrentUser,
		AppVersion:       cfg.API.AppVersion,
		ClientID:         cfg.API.ClientID,
		Timeout:          cfg.API.Timeout,
	}, creds, opts...)
	if err != nil {
		return nil, err
	}

	client.transport = tr
	client.service = flows.NewService(flows.Deps{
		Transport: tr,
		Creds:     creds,
		Routes:    routes,
		Log:       b.log,
	})
	client.onExpired = b.onExpired

	b.built = true

	return client, nil
}
