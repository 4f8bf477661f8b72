package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"game-hub/cmd/gamehub/output"
)

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email, err = a.prompt("Email", email); err != nil {
				return err
			}
			if password, err = a.prompt("Password", password); err != nil {
				return err
			}
			if err := a.session.SignIn(cmd.Context(), email, password); err != nil {
				return err
			}
			output.Success(a.out, "Signed in as %s", a.session.User().Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when empty)")
	return cmd
}

func (a *app) signupCmd() *cobra.Command {
	var email, password, username string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email, err = a.prompt("Email", email); err != nil {
				return err
			}
			if username, err = a.prompt("Username", username); err != nil {
				return err
			}
			if password, err = a.prompt("Password", password); err != nil {
				return err
			}
			if err := a.session.SignUp(cmd.Context(), email, password, username); err != nil {
				return err
			}
			output.Success(a.out, "Welcome, %s", a.session.User().Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&username, "username", "", "Display name")
	cmd.Flags().StringVar(&password, "password", "", "Password, at least 6 characters")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.SignOut(cmd.Context()); err != nil {
				return err
			}
			output.Success(a.out, "Signed out")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			user := a.session.User()
			if a.jsonOutput {
				return a.printJSON(user)
			}
			if user == nil {
				output.Muted(a.out, "Not signed in.")
				return nil
			}
			role := "member"
			if user.IsAdmin {
				role = "admin"
			}
			_, _ = fmt.Fprintf(a.out, "%s <%s> (%s)\n", user.Username, user.Email, role)
			return nil
		},
	}
}

// prompt returns value or, when it is empty, one line read from stdin.
func (a *app) prompt(label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	_, _ = fmt.Fprintf(a.out, "%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}
