// internal/cli/auth.go
package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"atsctl/internal/api"
)

var loginFlags struct {
	email    string
	password string
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the backend and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := appFromContext(cmd.Context())

		email := loginFlags.email
		if email == "" {
			var err error
			if email, err = promptLine(cmd, "Email: "); err != nil {
				return err
			}
		}
		password := loginFlags.password
		if password == "" {
			var err error
			if password, err = promptLine(cmd, "Password: "); err != nil {
				return err
			}
		}

		if err := app.Session.Login(cmd.Context(), email, password); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", email)
		return nil
	},
}

var registerFlags struct {
	email    string
	username string
	password string
	fullName string
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := appFromContext(cmd.Context())

		user, err := app.Session.Register(cmd.Context(), api.RegisterRequest{
			Email:    registerFlags.email,
			Username: registerFlags.username,
			Password: registerFlags.password,
			FullName: registerFlags.fullName,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Account %s created (id %d). Run `atsctl login` to sign in.\n",
			user.Username, user.ID)
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the account behind the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := appFromContext(cmd.Context())

		user, err := app.Session.CurrentUser(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.Username, user.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Drop the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := appFromContext(cmd.Context())

		if err := app.Session.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

func promptLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func init() {
	loginCmd.Flags().StringVar(&loginFlags.email, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginFlags.password, "password", "", "Account password (prompted when omitted)")

	registerCmd.Flags().StringVar(&registerFlags.email, "email", "", "Account email")
	registerCmd.Flags().StringVar(&registerFlags.username, "username", "", "Account username")
	registerCmd.Flags().StringVar(&registerFlags.password, "password", "", "Account password")
	registerCmd.Flags().StringVar(&registerFlags.fullName, "full-name", "", "Display name")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("username")
	_ = registerCmd.MarkFlagRequired("password")
}
