// Package config loads ravenctl configuration from a YAML file with
// command-line flag overrides.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/ravenhq/ravenauth"
)

// File is the on-disk configuration shape.
type File struct {
	API     APISection     `koanf:"api"`
	Redis   RedisSection   `koanf:"redis"`
	Events  EventsSection  `koanf:"events"`
	Metrics MetricsSection `koanf:"metrics"`
	Log     LogSection     `koanf:"log"`
}

type APISection struct {
	BaseURL    string        `koanf:"base_url"`
	Version    string        `koanf:"version"`
	Timeout    time.Duration `koanf:"timeout"`
	AppVersion string        `koanf:"app_version"`
}

// RedisSection enables credential persistence across ravenctl invocations.
type RedisSection struct {
	Enabled  bool          `koanf:"enabled"`
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	Prefix   string        `koanf:"prefix"`
	TTL      time.Duration `koanf:"ttl"`
}

type EventsSection struct {
	Enabled    bool   `koanf:"enabled"`
	BufferSize int    `koanf:"buffer_size"`
	Path       string `koanf:"path"`
}

type MetricsSection struct {
	Enabled bool `koanf:"enabled"`
}

type LogSection struct {
	Level string `koanf:"level"`
}

// Defaults returns the configuration used when neither file nor flags
// override a key.
func Defaults() File {
	return File{
		API: APISection{
			Version: "v1",
			Timeout: 30 * time.Second,
		},
		Redis: RedisSection{
			Addr:   "localhost:6379",
			Prefix: "ravenauth:",
			TTL:    7 * 24 * time.Hour,
		},
		Events: EventsSection{
			BufferSize: 1024,
		},
		Log: LogSection{
			Level: "info",
		},
	}
}

// Load reads the optional YAML file at path, applies flag overrides and
// returns the merged configuration. An empty path skips the file entirely;
// a configured path that does not exist is an error. Absent keys keep their
// defaults.
func Load(path string, flags *pflag.FlagSet) (File, error) {
	cfg := Defaults()

	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return cfg, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, oops.Code("CONFIG_INVALID").With("path", path).Wrap(err)
	}
	return cfg, nil
}

// ClientConfig maps the file shape onto the engine configuration.
func (f File) ClientConfig() ravenauth.Config {
	return ravenauth.Config{
		API: ravenauth.APIConfig{
			BaseURL:    f.API.BaseURL,
			Version:    f.API.Version,
			Timeout:    f.API.Timeout,
			AppVersion: f.API.AppVersion,
		},
		Credential: ravenauth.CredentialConfig{
			RedisPrefix: f.Redis.Prefix,
			TTL:         f.Redis.TTL,
		},
		Events: ravenauth.EventsConfig{
			Enabled:    f.Events.Enabled,
			BufferSize: f.Events.BufferSize,
			DropIfFull: true,
		},
		Metrics: ravenauth.MetricsConfig{
			Enabled: f.Metrics.Enabled,
		},
	}
}
