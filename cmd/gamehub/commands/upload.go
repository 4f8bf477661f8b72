package commands

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"game-hub/client"
	"game-hub/cmd/gamehub/output"
	"game-hub/models"
)

type uploadOptions struct {
	steam       string
	pick        int
	title       string
	description string
	category    string
	fileURL     string
	imagePath   string
	imageURL    string
}

func (a *app) uploadCmd() *cobra.Command {
	var opts uploadOptions
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Publish a game (admins only)",
		Long: `Publish a game listing.

The form can be filled from the Steam store. Pass a store link to fill it
directly, or a name to search; rerun with --pick N to use the Nth result.
Flags given explicitly override whatever the store returned.

Examples:
  gamehub upload --steam https://store.steampowered.com/app/620/ --url https://drive.google.com/file/d/ID/view
  gamehub upload --steam "portal" --pick 2 --url https://example.com/portal.zip
  gamehub upload --title "Pixel Quest" --description "Retro platformer" --category arcade --url ... --image cover.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.guard(cmd.Context(), client.ViewUpload)
			if !ok || err != nil {
				return err
			}
			return a.runUpload(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.steam, "steam", "", "Steam store link or game name to autofill from")
	f.IntVar(&opts.pick, "pick", 0, "Which search result to use (1-based)")
	f.StringVar(&opts.title, "title", "", "Title")
	f.StringVar(&opts.description, "description", "", "Short description")
	f.StringVar(&opts.category, "category", "", "Category (defaults to action)")
	f.StringVar(&opts.fileURL, "url", "", "Download link")
	f.StringVar(&opts.imagePath, "image", "", "Local cover image to upload")
	f.StringVar(&opts.imageURL, "image-url", "", "Remote cover image URL")
	return cmd
}

func (a *app) runUpload(cmd *cobra.Command, opts uploadOptions) error {
	ctx := cmd.Context()
	u := client.NewUploader(a.api)

	if opts.steam != "" {
		candidates, err := u.Autofill(ctx, opts.steam)
		if err != nil {
			return err
		}
		if len(candidates) > 0 {
			if opts.pick < 1 || opts.pick > len(candidates) {
				output.Section(a.out, "Steam results")
				for i, c := range candidates {
					_, _ = fmt.Fprintf(a.out, "%2d. %s (%d)\n", i+1, c.Name, c.AppID)
				}
				output.Muted(a.out, "Rerun with --pick N to use one of them.")
				return nil
			}
			if err := u.Select(ctx, candidates[opts.pick-1]); err != nil {
				output.Warning(a.out, "Store details unavailable: %s", client.Message(err))
			}
		}
	}

	if opts.title != "" {
		u.Form.Title = opts.title
	}
	if opts.description != "" {
		u.Form.Description = opts.description
	}
	if opts.category != "" {
		u.Form.Category = models.Category(opts.category)
	}
	if opts.fileURL != "" {
		u.Form.FileURL = opts.fileURL
	}
	if opts.imageURL != "" {
		u.Form.ImageURL = opts.imageURL
	}

	if opts.imagePath != "" {
		f, err := os.Open(opts.imagePath)
		if err != nil {
			return fmt.Errorf("open image: %w", err)
		}
		defer f.Close() //nolint:errcheck
		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("stat image: %w", err)
		}
		name := filepath.Base(opts.imagePath)
		u.Form.Image = &client.ImageSource{
			Filename:    name,
			ContentType: mime.TypeByExtension(filepath.Ext(name)),
			Body:        f,
			Size:        info.Size(),
		}
	}

	var progress client.ProgressFunc
	if u.Form.Image != nil && !a.jsonOutput {
		progress = func(p float64) { output.Progress(a.out, p) }
	}
	game, err := u.Submit(ctx, progress)
	if err != nil {
		return err
	}
	if a.jsonOutput {
		return a.printJSON(game)
	}
	output.Success(a.out, "Published %s (%s)", game.Title, game.ID)
	return nil
}
