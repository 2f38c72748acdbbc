package ravenauth

import (
	"errors"
	"net/url"
	"time"
)

// Config defines a public type used by ravenauth APIs.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable unless documented otherwise.
type Config struct {
	API        APIConfig
	Credential CredentialConfig
	Features   FeaturesConfig
	Events     EventsConfig
	Metrics    MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig locates and versions the Raven backend.
type APIConfig struct {
	// BaseURL is the scheme://host[:port] prefix of the backend.
	BaseURL string
	// Version selects the versioned API prefix, "v1" by default.
	Version string
	// Timeout bounds each HTTP round trip.
	Timeout time.Duration
	// AppVersion is reported to the backend in the x-app-version header.
	AppVersion string
	// ClientID is the stable x-client-id header value. Generated when empty.
	ClientID string
}

/*
====================================
CREDENTIAL CONFIG
====================================
*/

// CredentialConfig tunes the optional redis-backed credential store used by
// headless clients that persist the session across process restarts.
type CredentialConfig struct {
	RedisPrefix string
	TTL         time.Duration
}

/*
====================================
FEATURES CONFIG
====================================
*/

// FeaturesConfig mirrors the backend's feature switches so the client can
// hide forms the backend would reject anyway.
type FeaturesConfig struct {
	TwoFactor   bool
	SocialLogin bool
}

/*
====================================
EVENTS CONFIG
====================================
*/

// EventsConfig tunes the async event dispatcher feeding the registered sink.
type EventsConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig enables the prometheus counters.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			Version: "v1",
			Timeout: 30 * time.Second,
		},
		Credential: CredentialConfig{
			RedisPrefix: "ravenauth:",
			TTL:         7 * 24 * time.Hour,
		},
		Events: EventsConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the configuration for values the client cannot run with.
func (c *Config) Validate() error {
	// API
	parsed, err := url.Parse(c.API.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return errors.New("API BaseURL must be a scheme://host URL")
	}
	if c.API.Version == "" {
		return errors.New("API Version must be set")
	}
	if c.API.Timeout < 0 {
		return errors.New("API Timeout must be >= 0")
	}

	// Credential
	if c.Credential.TTL < 0 {
		return errors.New("Credential TTL must be >= 0")
	}

	// Events
	if c.Events.Enabled && c.Events.BufferSize <= 0 {
		return errors.New("Events BufferSize must be > 0 when Events are enabled")
	}

	return nil
}
