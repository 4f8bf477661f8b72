package client

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"game-hub/models"
)

const defaultRating = 5

// CommentForm is the draft review on a detail page.
type CommentForm struct {
	Content string
	Rating  int
}

// Detail is one listing with its comments and the comment form.
type Detail struct {
	api    *Client
	opener Opener
	log    *slog.Logger

	mu       sync.Mutex
	id       string
	game     *models.Game
	comments []models.Comment
	form     CommentForm
}

func NewDetail(api *Client, opener Opener) *Detail {
	if opener == nil {
		opener = BrowserOpener
	}
	return &Detail{api: api, opener: opener, log: slog.Default(), form: CommentForm{Rating: defaultRating}}
}

// Load fetches the listing and its comments. A missing listing is not an
// error; Found reports false afterwards.
func (d *Detail) Load(ctx context.Context, id string) error {
	game, err := d.api.GetGame(ctx, id)
	if IsStatus(err, http.StatusNotFound) {
		d.mu.Lock()
		d.id, d.game, d.comments = id, nil, nil
		d.mu.Unlock()
		return nil
	}
	if err != nil {
		return err
	}

	comments, err := d.api.ListComments(ctx, id)
	if err != nil {
		d.log.Error("failed to load comments", "game_id", id, "error", err)
		comments = nil
	}

	d.mu.Lock()
	d.id, d.game, d.comments = id, game, comments
	d.mu.Unlock()
	return nil
}

func (d *Detail) Found() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.game != nil
}

// Game returns a copy of the loaded listing or nil.
func (d *Detail) Game() *models.Game {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.game == nil {
		return nil
	}
	g := *d.game
	return &g
}

func (d *Detail) Comments() []models.Comment {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.Comment(nil), d.comments...)
}

// Download works like Catalog.Download for the open listing.
func (d *Detail) Download(ctx context.Context) (string, error) {
	d.mu.Lock()
	if d.game == nil {
		d.mu.Unlock()
		return "", &ValidationError{Field: "id", Message: "game not found"}
	}
	d.game.DownloadCount++
	id, fileURL := d.game.ID, d.game.FileURL
	d.mu.Unlock()
	return download(ctx, d.api, d.opener, d.log, id, fileURL)
}

// SetForm replaces the comment draft.
func (d *Detail) SetForm(f CommentForm) {
	d.mu.Lock()
	d.form = f
	d.mu.Unlock()
}

func (d *Detail) Form() CommentForm {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.form
}

// Submit posts the comment form. Blank content is ignored without a request.
// On success the form is cleared and the comments and rating are reloaded.
func (d *Detail) Submit(ctx context.Context) error {
	d.mu.Lock()
	id := d.id
	form := d.form
	d.mu.Unlock()

	if strings.TrimSpace(form.Content) == "" || id == "" {
		return nil
	}
	if form.Rating == 0 {
		form.Rating = defaultRating
	}
	if form.Rating < 1 || form.Rating > 5 {
		return &ValidationError{Field: "rating", Message: "rating must be between 1 and 5"}
	}

	if _, err := d.api.CreateComment(ctx, id, strings.TrimSpace(form.Content), form.Rating); err != nil {
		return err
	}

	d.mu.Lock()
	d.form = CommentForm{Rating: defaultRating}
	d.mu.Unlock()

	comments, err := d.api.ListComments(ctx, id)
	if err != nil {
		d.log.Error("failed to reload comments", "game_id", id, "error", err)
		return nil
	}
	game, err := d.api.GetGame(ctx, id)
	if err != nil {
		d.log.Warn("failed to reload game", "game_id", id, "error", err)
	}

	d.mu.Lock()
	d.comments = comments
	if game != nil {
		d.game = game
	}
	d.mu.Unlock()
	return nil
}
