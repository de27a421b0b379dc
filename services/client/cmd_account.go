package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/02loveslollipop/arbor-inventory/services/client/internal/ui"
)

type credentialFlags struct {
	username string
	password string
}

func (f *credentialFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.username, "username", "u", "", "Account name")
	cmd.Flags().StringVarP(&f.password, "password", "p", "", "Password (default: $ARBOR_PASSWORD, else prompted)")
}

// resolve fills the missing values from the environment or the command input.
func (f *credentialFlags) resolve(c *cli, cmd *cobra.Command) (string, string) {
	username, password := f.username, f.password
	if username == "" {
		username = c.readLine(cmd.OutOrStdout(), "Username: ")
	}
	if password == "" {
		password = os.Getenv("ARBOR_PASSWORD")
	}
	if password == "" {
		password = c.readLine(cmd.OutOrStdout(), "Password: ")
	}
	return username, password
}

func newLoginCmd(c *cli) *cobra.Command {
	var creds credentialFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the token for later commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			username, password := creds.resolve(c, cmd)
			return c.dispatch(cmd.Context(), ui.Command{Intent: ui.IntentLogin, Username: username, Password: password})
		},
	}
	creds.bind(cmd)
	return cmd
}

func newRegisterCmd(c *cli) *cobra.Command {
	var creds credentialFlags
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			username, password := creds.resolve(c, cmd)
			return c.dispatch(cmd.Context(), ui.Command{Intent: ui.IntentRegister, Username: username, Password: password})
		},
	}
	creds.bind(cmd)
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.dispatch(cmd.Context(), ui.Command{Intent: ui.IntentLogout})
		},
	}
}
