package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"game-hub/client"
	"game-hub/cmd/gamehub/output"
	"game-hub/models"
)

type listOptions struct {
	category string
	sort     string
	term     string
	view     string
}

func (a *app) listCmd() *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "home"},
		Short:   "List games in the catalog",
		Long: `List games in the catalog.

Examples:
  gamehub list                                # newest first, grid view
  gamehub list --category rpg --sort rating   # filter and sort on the server
  gamehub list --search maze --view list      # title/description filter`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.home(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.category, "category", "c", string(models.CategoryAll), "Category filter (all, action, adventure, puzzle, rpg, strategy, simulation, arcade)")
	cmd.Flags().StringVarP(&opts.sort, "sort", "s", string(models.SortNewest), "Sort order (newest, rating, downloads)")
	cmd.Flags().StringVarP(&opts.term, "search", "q", "", "Case-insensitive title or description filter")
	cmd.Flags().StringVar(&opts.view, "view", string(client.ViewGrid), "Layout (grid, list)")
	return cmd
}

// home renders the catalog, the page every guarded command falls back to.
func (a *app) home(ctx context.Context, opts listOptions) error {
	cat := client.NewCatalog(a.api, a.opener)
	cat.SetViewMode(client.ViewMode(opts.view))
	cat.SetTerm(opts.term)

	var err error
	switch {
	case opts.category != "" && opts.category != string(models.CategoryAll):
		if opts.sort != "" {
			if err := cat.SetSort(ctx, models.ParseSort(opts.sort)); err != nil {
				return err
			}
		}
		err = cat.SetCategory(ctx, models.Category(opts.category))
	case opts.sort != "":
		err = cat.SetSort(ctx, models.ParseSort(opts.sort))
	default:
		err = cat.Refresh(ctx)
	}
	if err != nil {
		return err
	}

	games := cat.Visible()
	if a.jsonOutput {
		return a.printJSON(games)
	}
	if cat.Empty() {
		output.Muted(a.out, "No games found.")
		return nil
	}
	if cat.ViewMode() == client.ViewList {
		output.List(a.out, games)
	} else {
		output.Grid(a.out, games)
	}
	output.Muted(a.out, "%d games", len(games))
	return nil
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <game-id>",
		Short: "Show a game with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := client.NewDetail(a.api, a.opener)
			if err := d.Load(cmd.Context(), args[0]); err != nil {
				return err
			}
			if !d.Found() {
				output.Warning(a.out, "Game not found.")
				return nil
			}
			if a.jsonOutput {
				return a.printJSON(map[string]any{"game": d.Game(), "comments": d.Comments()})
			}
			output.Game(a.out, d.Game())
			output.Section(a.out, "Comments")
			output.Comments(a.out, d.Comments())
			return nil
		},
	}
}

func (a *app) downloadCmd() *cobra.Command {
	var printOnly, copyLink bool
	cmd := &cobra.Command{
		Use:   "download <game-id>",
		Short: "Count a download and open the direct link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opener := a.opener
			if printOnly {
				opener = client.OpenerFunc(func(string) error { return nil })
			}
			d := client.NewDetail(a.api, opener)
			if err := d.Load(cmd.Context(), args[0]); err != nil {
				return err
			}
			if !d.Found() {
				output.Warning(a.out, "Game not found.")
				return nil
			}
			link, err := d.Download(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(a.out, link)
			if copyLink {
				if err := clipboard.WriteAll(link); err != nil {
					output.Warning(a.out, "Could not copy the link: %v", err)
				} else {
					output.Muted(a.out, "Link copied to the clipboard.")
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&printOnly, "print", false, "Only print the link, do not open it")
	cmd.Flags().BoolVar(&copyLink, "copy", false, "Also copy the link to the clipboard")
	return cmd
}

func (a *app) commentCmd() *cobra.Command {
	var text string
	var rating int
	cmd := &cobra.Command{
		Use:   "comment <game-id>",
		Short: "Rate a game and leave a comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.session.User() == nil {
				output.Warning(a.out, "Sign in to leave a comment.")
				return nil
			}
			if strings.TrimSpace(text) == "" {
				output.Muted(a.out, "Nothing to post.")
				return nil
			}
			d := client.NewDetail(a.api, a.opener)
			if err := d.Load(cmd.Context(), args[0]); err != nil {
				return err
			}
			if !d.Found() {
				output.Warning(a.out, "Game not found.")
				return nil
			}
			d.SetForm(client.CommentForm{Content: text, Rating: rating})
			if err := d.Submit(cmd.Context()); err != nil {
				return err
			}
			output.Success(a.out, "Comment posted, rating is now %.1f", d.Game().Rating)
			return nil
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "Comment text")
	cmd.Flags().IntVarP(&rating, "rating", "r", 5, "Rating from 1 to 5")
	return cmd
}
