package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"game-hub/client"
	"game-hub/cmd/gamehub/output"
	"game-hub/models"
)

func (a *app) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Moderate users and games (admins only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.adminRun(cmd, func() error { return a.printStats(cmd) })
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "stats",
			Short: "Show hub totals",
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.adminRun(cmd, func() error { return a.printStats(cmd) })
			},
		},
		&cobra.Command{
			Use:   "profiles",
			Short: "List every profile",
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.adminRun(cmd, func() error {
					profiles, err := a.api.ListProfiles(cmd.Context())
					if err != nil {
						return err
					}
					if a.jsonOutput {
						return a.printJSON(profiles)
					}
					w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
					_, _ = fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tADMIN\tJOINED")
					for _, p := range profiles {
						_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", p.ID, p.Username, p.Email, p.IsAdmin, p.CreatedAt.Format("2006-01-02"))
					}
					return w.Flush()
				})
			},
		},
		&cobra.Command{
			Use:   "toggle-admin <profile-id>",
			Short: "Grant or revoke the admin flag",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.adminRun(cmd, func() error {
					p, err := a.api.ToggleAdmin(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					if p.IsAdmin {
						output.Success(a.out, "%s is now an admin", p.Username)
					} else {
						output.Success(a.out, "%s is no longer an admin", p.Username)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "games",
			Short: "List every game",
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.adminRun(cmd, func() error {
					games, err := a.api.AdminGames(cmd.Context())
					if err != nil {
						return err
					}
					if a.jsonOutput {
						return a.printJSON(games)
					}
					output.List(a.out, games)
					return nil
				})
			},
		},
		a.adminUpdateCmd(),
		&cobra.Command{
			Use:   "delete <game-id>",
			Short: "Delete a game and its comments",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.adminRun(cmd, func() error {
					if err := a.api.DeleteGame(cmd.Context(), args[0]); err != nil {
						return err
					}
					output.Success(a.out, "Deleted %s", args[0])
					return nil
				})
			},
		},
	)
	return cmd
}

func (a *app) adminUpdateCmd() *cobra.Command {
	var title, description, category string
	var rating float64
	cmd := &cobra.Command{
		Use:   "update <game-id>",
		Short: "Edit a game's title, description, category or rating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.adminRun(cmd, func() error {
				var req client.UpdateGameRequest
				if cmd.Flags().Changed("title") {
					req.Title = &title
				}
				if cmd.Flags().Changed("description") {
					req.Description = &description
				}
				if cmd.Flags().Changed("category") {
					c := models.Category(category)
					req.Category = &c
				}
				if cmd.Flags().Changed("rating") {
					req.Rating = &rating
				}
				game, err := a.api.UpdateGame(cmd.Context(), args[0], req)
				if err != nil {
					return err
				}
				output.Success(a.out, "Updated %s", game.Title)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&category, "category", "", "New category")
	cmd.Flags().Float64Var(&rating, "rating", 0, "Override the average rating")
	return cmd
}

// adminRun runs fn when the session may open the admin view.
func (a *app) adminRun(cmd *cobra.Command, fn func() error) error {
	ok, err := a.guard(cmd.Context(), client.ViewAdmin)
	if !ok || err != nil {
		return err
	}
	return fn()
}

func (a *app) printStats(cmd *cobra.Command) error {
	stats, err := a.api.Stats(cmd.Context())
	if err != nil {
		return err
	}
	if a.jsonOutput {
		return a.printJSON(stats)
	}
	output.Section(a.out, "Hub")
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Games\t%d\n", stats.TotalGames)
	_, _ = fmt.Fprintf(w, "Users\t%d\n", stats.TotalUsers)
	_, _ = fmt.Fprintf(w, "Downloads\t%d\n", stats.TotalDownloads)
	_, _ = fmt.Fprintf(w, "Average rating\t%.2f\n", stats.AvgRating)
	return w.Flush()
}
