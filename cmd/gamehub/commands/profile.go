package commands

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"game-hub/client"
	"game-hub/cmd/gamehub/output"
)

func (a *app) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your profile and your comments",
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.guard(cmd.Context(), client.ViewProfile)
			if !ok || err != nil {
				return err
			}
			user := a.session.User()
			comments, err := a.api.MyComments(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(map[string]any{"profile": user, "comments": comments})
			}
			output.Section(a.out, user.Username)
			_, _ = fmt.Fprintln(a.out, user.Email)
			if user.AvatarURL != nil {
				output.Muted(a.out, "avatar %s", *user.AvatarURL)
			}
			output.Section(a.out, "Your comments")
			output.Comments(a.out, comments)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <username>",
		Short: "Change your username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.guard(cmd.Context(), client.ViewProfile)
			if !ok || err != nil {
				return err
			}
			p, err := a.api.UpdateUsername(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			output.Success(a.out, "You are now %s", p.Username)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "avatar <image>",
		Short: "Replace your avatar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.guard(cmd.Context(), client.ViewProfile)
			if !ok || err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open avatar: %w", err)
			}
			defer f.Close() //nolint:errcheck
			name := filepath.Base(args[0])
			p, err := a.api.UploadAvatar(cmd.Context(), name, mime.TypeByExtension(filepath.Ext(name)), f)
			if err != nil {
				return err
			}
			if p.AvatarURL != nil {
				output.Success(a.out, "Avatar updated: %s", *p.AvatarURL)
			}
			return nil
		},
	})
	return cmd
}
