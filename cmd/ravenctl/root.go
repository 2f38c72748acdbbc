package main

import (
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/ravenhq/ravenauth"
	"github.com/ravenhq/ravenauth/internal/config"
	"github.com/ravenhq/ravenauth/internal/events"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the ravenctl CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ravenctl",
		Short: "ravenctl - command-line client for the Raven backend",
		Long: `ravenctl signs in against a Raven backend and keeps the session
alive across invocations when redis credential storage is enabled.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	cmd.PersistentFlags().String("api.base_url", "", "backend base URL")
	cmd.PersistentFlags().String("log.level", "info", "log level (trace, debug, info, warn, error)")

	cmd.AddCommand(NewLoginCmd())
	cmd.AddCommand(NewRegisterCmd())
	cmd.AddCommand(NewLogoutCmd())
	cmd.AddCommand(NewWhoamiCmd())

	return cmd
}

// buildClient loads configuration, assembles the session client and returns
// it together with a cleanup function.
func buildClient(cmd *cobra.Command) (*ravenauth.Client, func(), error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	log := newLogger(cfg.Log.Level)

	b := ravenauth.New().
		WithConfig(cfg.ClientConfig()).
		WithLogger(log).
		WithMetricsEnabled(cfg.Metrics.Enabled).
		WithSessionExpiredHandler(func() {
			log.Warn().Msg("session expired, sign in again with 'ravenctl login'")
		})

	cleanup := func() {}

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b = b.WithRedis(rdb)
		cleanup = func() { _ = rdb.Close() }
	}

	if cfg.Events.Enabled && cfg.Events.Path != "" {
		f, err := os.OpenFile(cfg.Events.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			cleanup()
			return nil, nil, oops.Code("EVENTS_OPEN_FAILED").With("path", cfg.Events.Path).Wrap(err)
		}
		b = b.WithEventSink(events.NewJSONWriterSink(f))
		prev := cleanup
		cleanup = func() { _ = f.Close(); prev() }
	}

	client, err := b.Build()
	if err != nil {
		cleanup()
		return nil, nil, oops.Code("CLIENT_BUILD_FAILED").Wrap(err)
	}

	prev := cleanup
	cleanup = func() {
		client.Close()
		prev()
	}
	return client, cleanup, nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().Logger()
}
