package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"game-hub/browser"
	"game-hub/catalog"
	"game-hub/models"
)

// ViewMode is how the catalog is laid out.
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// Opener hands a download link to something that can fetch it.
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(url string) error

func (f OpenerFunc) Open(url string) error { return f(url) }

// BrowserOpener opens links in the system browser.
var BrowserOpener Opener = OpenerFunc(browser.Open)

// Catalog is the home page state: the server query (category, sort), the
// local text filter and the last list the server returned.
type Catalog struct {
	api    *Client
	opener Opener
	log    *slog.Logger

	mu       sync.Mutex
	category models.Category
	sort     models.SortKey
	term     string
	mode     ViewMode
	games    []models.Game
	gen      uint64 // bumped per refresh; older responses are dropped
}

func NewCatalog(api *Client, opener Opener) *Catalog {
	if opener == nil {
		opener = BrowserOpener
	}
	return &Catalog{
		api:      api,
		opener:   opener,
		log:      slog.Default(),
		category: models.CategoryAll,
		sort:     models.SortNewest,
		mode:     ViewGrid,
	}
}

// Refresh re-runs the server query. On failure the previous list is kept.
func (c *Catalog) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	q := GameQuery{Category: c.category, Sort: c.sort}
	c.mu.Unlock()

	games, err := c.api.ListGames(ctx, q)
	if err != nil {
		c.log.Error("catalog refresh failed", "category", q.Category, "sort", q.Sort, "error", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.log.Debug("discarding stale catalog response", "gen", gen, "current", c.gen)
		return nil
	}
	c.games = games
	return nil
}

func (c *Catalog) SetCategory(ctx context.Context, cat models.Category) error {
	if cat != models.CategoryAll && !cat.Valid() {
		return &ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", cat)}
	}
	c.mu.Lock()
	c.category = cat
	c.mu.Unlock()
	return c.Refresh(ctx)
}

func (c *Catalog) SetSort(ctx context.Context, s models.SortKey) error {
	c.mu.Lock()
	c.sort = models.ParseSort(string(s))
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// SetTerm changes the text filter. It never touches the network.
func (c *Catalog) SetTerm(term string) {
	c.mu.Lock()
	c.term = term
	c.mu.Unlock()
}

func (c *Catalog) SetViewMode(m ViewMode) {
	if m != ViewList {
		m = ViewGrid
	}
	c.mu.Lock()
	c.mode = m
	c.mu.Unlock()
}

func (c *Catalog) ViewMode() ViewMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Catalog) Category() models.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.category
}

func (c *Catalog) Sort() models.SortKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sort
}

// Visible returns the listings that match the text filter, in server order.
func (c *Catalog) Visible() []models.Game {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := catalog.Filter(c.games, c.term)
	return append([]models.Game(nil), out...)
}

// Empty reports the "no games found" state.
func (c *Catalog) Empty() bool {
	return len(c.Visible()) == 0
}

// Download counts a download locally right away, records it on the server and
// opens the direct link. A failed server write does not stop the download.
func (c *Catalog) Download(ctx context.Context, id string) (string, error) {
	c.mu.Lock()
	var fileURL string
	found := false
	for i := range c.games {
		if c.games[i].ID == id {
			c.games[i].DownloadCount++
			fileURL = c.games[i].FileURL
			found = true
			break
		}
	}
	c.mu.Unlock()
	if !found {
		return "", &ValidationError{Field: "id", Message: "game is not in the current list"}
	}
	return download(ctx, c.api, c.opener, c.log, id, fileURL)
}

func download(ctx context.Context, api *Client, opener Opener, log *slog.Logger, id, fileURL string) (string, error) {
	if _, err := api.RecordDownload(ctx, id); err != nil {
		log.Error("failed to record download", "game_id", id, "error", err)
	}
	link := catalog.DirectDownloadURL(fileURL)
	if err := opener.Open(link); err != nil {
		return link, fmt.Errorf("open download link: %w", err)
	}
	return link, nil
}
