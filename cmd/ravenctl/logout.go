package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout subcommand.
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Long: `End the session on the backend and forget the stored credential.
The local credential is cleared even when the backend call fails.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, cleanup, err := buildClient(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := client.SignOut(cmd.Context()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Remote sign-out failed (%v), local credential cleared\n", err)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}
