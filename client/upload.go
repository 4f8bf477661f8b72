package client

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/gosimple/unidecode"

	"game-hub/catalog"
	"game-hub/models"
)

// ImageSource is a local cover image waiting to be uploaded.
type ImageSource struct {
	Filename    string
	ContentType string
	Body        io.Reader
	Size        int64
}

// UploadForm is the listing being prepared by an uploader.
type UploadForm struct {
	Title        string
	Description  string
	About        string
	Category     models.Category
	FileURL      string
	ImageURL     string       // remote cover, e.g. from autofill
	Image        *ImageSource // local cover; takes precedence over ImageURL
	Screenshots  []string
	Requirements models.Requirements
	SteamAppID   *int
}

// Validate runs the required-field checks. It never touches the network.
func (f *UploadForm) Validate() error {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.FileURL = strings.TrimSpace(f.FileURL)
	if f.Category == "" {
		f.Category = models.CategoryAction
	}

	switch {
	case f.Title == "":
		return &ValidationError{Field: "title", Message: "Title is required"}
	case f.Description == "":
		return &ValidationError{Field: "description", Message: "Description is required"}
	case f.FileURL == "":
		return &ValidationError{Field: "file_url", Message: "Download link is required"}
	case !f.Category.Valid():
		return &ValidationError{Field: "category", Message: "Unknown category"}
	}
	return nil
}

// Uploader drives autofill from the Steam store and publishing.
type Uploader struct {
	api  *Client
	Form UploadForm
}

func NewUploader(api *Client) *Uploader {
	return &Uploader{api: api, Form: UploadForm{Category: models.CategoryAction}}
}

// Autofill fills the form from a Steam store URL, or searches the store by name.
// For a URL the form is filled and no candidates are returned; for a name the
// caller picks one of the candidates and passes it to Select.
func (u *Uploader) Autofill(ctx context.Context, text string) ([]SteamApp, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ValidationError{Field: "search", Message: "Enter a game name or Steam store link"}
	}

	if catalog.IsStoreURL(text) {
		app, err := u.api.ResolveApp(ctx, text)
		if err != nil {
			return nil, err
		}
		u.Form.Title = app.Title
		u.Form.Description = app.Description
		if app.ImageURL != "" {
			u.Form.ImageURL = app.ImageURL
		}
		if cat, ok := GenreCategory(app.Category); ok {
			u.Form.Category = cat
		}
		id := app.AppID
		u.Form.SteamAppID = &id
		return nil, u.applyDetails(ctx, app.AppID)
	}

	return u.api.SearchApps(ctx, text)
}

// Select fills the form from a search candidate.
func (u *Uploader) Select(ctx context.Context, app SteamApp) error {
	u.Form.Title = app.Name
	id := app.AppID
	u.Form.SteamAppID = &id
	return u.applyDetails(ctx, app.AppID)
}

func (u *Uploader) applyDetails(ctx context.Context, appID int) error {
	d, err := u.api.AppDetails(ctx, appID)
	if err != nil {
		return err
	}
	if d.AboutTheGame != "" {
		u.Form.About = d.AboutTheGame
	}
	if d.ShortDescription != "" {
		u.Form.Description = d.ShortDescription
	}
	if d.HeaderImage != "" {
		u.Form.ImageURL = d.HeaderImage
	}
	if len(d.Screenshots) > 0 {
		u.Form.Screenshots = u.Form.Screenshots[:0]
		for _, sc := range d.Screenshots {
			u.Form.Screenshots = append(u.Form.Screenshots, sc.URL)
		}
	}
	if d.PCRequirements != (models.Requirements{}) {
		u.Form.Requirements = d.PCRequirements
	}
	if len(d.Genres) > 0 {
		if cat, ok := GenreCategory(d.Genres[0].Description); ok {
			u.Form.Category = cat
		}
	}
	return nil
}

// Submit validates, uploads the local image if there is one and creates the listing.
// progress may be nil. Any failing step stops the rest, and an image uploaded for
// a listing that could not be created is deleted again.
func (u *Uploader) Submit(ctx context.Context, progress ProgressFunc) (*models.Game, error) {
	if err := u.Form.Validate(); err != nil {
		return nil, err
	}

	imageURL := strings.TrimSpace(u.Form.ImageURL)
	var uploaded *UploadedImage
	if img := u.Form.Image; img != nil {
		var err error
		uploaded, err = u.api.UploadImage(ctx, img.Filename, img.ContentType, img.Body, img.Size, progress)
		if err != nil {
			return nil, err
		}
		imageURL = uploaded.URL
	}

	game, err := u.api.CreateGame(ctx, CreateGameRequest{
		Title:        u.Form.Title,
		Description:  u.Form.Description,
		About:        u.Form.About,
		Category:     u.Form.Category,
		FileURL:      u.Form.FileURL,
		ImageURL:     imageURL,
		Screenshots:  u.Form.Screenshots,
		Requirements: u.Form.Requirements,
		SteamAppID:   u.Form.SteamAppID,
	})
	if err != nil {
		if uploaded != nil {
			if rmErr := u.api.DeleteImage(context.WithoutCancel(ctx), uploaded.Key); rmErr != nil {
				slog.Warn("failed to remove orphaned image", "key", uploaded.Key, "error", rmErr)
			}
		}
		return nil, err
	}
	return game, nil
}

var genreCategories = map[string]models.Category{
	"action":       models.CategoryAction,
	"aksiyon":      models.CategoryAction,
	"adventure":    models.CategoryAdventure,
	"macera":       models.CategoryAdventure,
	"puzzle":       models.CategoryPuzzle,
	"bulmaca":      models.CategoryPuzzle,
	"rpg":          models.CategoryRPG,
	"role-playing": models.CategoryRPG,
	"rol yapma":    models.CategoryRPG,
	"strategy":     models.CategoryStrategy,
	"strateji":     models.CategoryStrategy,
	"simulation":   models.CategorySimulation,
	"simulasyon":   models.CategorySimulation,
	"arcade":       models.CategoryArcade,
	"casual":       models.CategoryArcade,
	"gundelik":     models.CategoryArcade,
}

// GenreCategory maps a Steam genre name, English or Turkish, onto a hub category.
// Diacritics are dropped before the lookup, so "Simülasyon" and "Simulasyon" agree.
func GenreCategory(genre string) (models.Category, bool) {
	key := unidecode.Unidecode(catalog.Fold(strings.TrimSpace(genre)))
	cat, ok := genreCategories[key]
	return cat, ok
}
