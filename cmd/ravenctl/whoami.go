package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/spf13/cobra"

	"github.com/ravenhq/ravenauth"
)

// NewWhoamiCmd creates the whoami subcommand.
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Long: `Probe the backend for the current session. Network faults are
retried with backoff by resubmitting the probe; an unauthenticated answer is
reported as not signed in.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, cleanup, err := buildClient(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			var user *ravenauth.User
			backoff := retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))
			err = retry.Do(cmd.Context(), backoff, func(ctx context.Context) error {
				u, err := client.CurrentUser(ctx)
				var netErr *ravenauth.NetworkError
				if errors.As(err, &netErr) {
					return retry.RetryableError(err)
				}
				if err != nil {
					return err
				}
				user = u
				return nil
			})

			var authErr *ravenauth.AuthError
			if errors.As(err, &authErr) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s> (id %d)\n", user.Name, user.Email, user.ID)
			return nil
		},
	}
}
