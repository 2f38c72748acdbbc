package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ravenhq/ravenauth"
)

// NewLoginCmd creates the login subcommand.
func NewLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in against the Raven backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, cleanup, err := buildClient(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			state, err := client.SignIn(cmd.Context(), ravenauth.LoginRequest{
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", state.User.Name, state.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
