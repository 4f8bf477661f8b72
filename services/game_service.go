package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"game-hub/apperror"
	"game-hub/catalog"
	"game-hub/models"
	"game-hub/storage"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GameService struct {
	DB     *gorm.DB
	Store  storage.Store
	Bucket string
	now    func() time.Time
}

func NewGameService(db *gorm.DB, store storage.Store, bucket string) *GameService {
	return &GameService{DB: db, Store: store, Bucket: bucket, now: time.Now}
}

// ListQuery is the catalog query. Zero values mean "no filter".
type ListQuery struct {
	Category  models.Category
	Sort      models.SortKey
	Term      string
	CreatedBy string
}

// CreateGameInput is what an uploader submits.
type CreateGameInput struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	About        string              `json:"about"`
	Category     models.Category     `json:"category"`
	FileURL      string              `json:"file_url"`
	ImageURL     string              `json:"image_url"`
	Screenshots  []string            `json:"screenshots"`
	Requirements models.Requirements `json:"requirements"`
	SteamAppID   *int                `json:"steam_appid"`
}

// UpdateGameInput is the admin edit. Nil fields are left alone.
type UpdateGameInput struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Category    *models.Category `json:"category"`
	Rating      *float64         `json:"rating"`
	FileURL     *string          `json:"file_url"`
}

type DownloadResult struct {
	DownloadURL   string `json:"download_url"`
	DownloadCount int64  `json:"download_count"`
}

// ImageFile is an image to be stored alongside a new listing.
type ImageFile struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

func (in *CreateGameInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.FileURL = strings.TrimSpace(in.FileURL)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if in.Category == "" {
		in.Category = models.CategoryAction
	}
}

func (in *CreateGameInput) Validate() error {
	switch {
	case in.Title == "":
		return apperror.ValidationFailed("title", "title is required")
	case in.Description == "":
		return apperror.ValidationFailed("description", "description is required")
	case in.FileURL == "":
		return apperror.ValidationFailed("file_url", "download link is required")
	case !in.Category.Valid():
		return apperror.ValidationFailed("category", fmt.Sprintf("unknown category %q", in.Category))
	}
	return nil
}

// List runs the catalog query: category equality and ordering happen in SQL,
// the text term is applied afterwards with the shared catalog filter.
func (s *GameService) List(ctx context.Context, q ListQuery) ([]models.Game, error) {
	tx := s.DB.WithContext(ctx).Model(&models.Game{})
	if q.Category != "" && q.Category != models.CategoryAll {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.CreatedBy != "" {
		tx = tx.Where("created_by = ?", q.CreatedBy)
	}
	switch q.Sort {
	case models.SortRating:
		tx = tx.Order("rating DESC").Order("created_at DESC")
	case models.SortDownloads:
		tx = tx.Order("download_count DESC").Order("created_at DESC")
	default:
		tx = tx.Order("created_at DESC")
	}

	var games []models.Game
	if err := tx.Find(&games).Error; err != nil {
		return nil, fmt.Errorf("games.List: %w", err)
	}
	return catalog.Filter(games, strings.TrimSpace(q.Term)), nil
}

func (s *GameService) Get(ctx context.Context, id string) (*models.Game, error) {
	var game models.Game
	err := s.DB.WithContext(ctx).
		Preload("Creator").
		First(&game, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("game", id)
	}
	if err != nil {
		return nil, fmt.Errorf("games.Get: %w", err)
	}
	return &game, nil
}

// Create inserts a new listing owned by userID with zero downloads and rating.
func (s *GameService) Create(ctx context.Context, userID string, in CreateGameInput) (*models.Game, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	game := &models.Game{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Slug:        slug.Make(in.Title),
		Description: in.Description,
		About:       in.About,
		Category:    in.Category,
		FileURL:     in.FileURL,
		CreatedBy:   userID,
		SteamAppID:  in.SteamAppID,
	}
	if in.ImageURL != "" {
		game.ImageURL = &in.ImageURL
	}
	if len(in.Screenshots) > 0 {
		game.Screenshots = in.Screenshots
	}
	game.Requirements = datatypes.NewJSONType(in.Requirements)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(game).Error
	})
	if err != nil {
		return nil, fmt.Errorf("games.Create: %w", err)
	}

	slog.Info("game created", "id", game.ID, "title", game.Title, "created_by", userID)
	return game, nil
}

// StoreImage puts an image into the images bucket and returns its key and public URL.
func (s *GameService) StoreImage(ctx context.Context, userID string, img ImageFile) (key, url string, err error) {
	if !strings.HasPrefix(img.ContentType, "image/") {
		return "", "", apperror.ValidationFailed("image", "file must be an image")
	}
	key = storage.ObjectKey(userID, img.Filename, s.now())
	if err := s.Store.Upload(ctx, s.Bucket, key, img.Body, img.ContentType); err != nil {
		return "", "", fmt.Errorf("games.StoreImage: %w", err)
	}
	return key, s.Store.PublicURL(s.Bucket, key), nil
}

// RemoveImage deletes an image the caller uploaded. Keys are prefixed with the
// uploader's id, so nobody can remove another user's object.
func (s *GameService) RemoveImage(ctx context.Context, userID, key string) error {
	if key == "" || strings.ContainsAny(key, "/\\") || !strings.HasPrefix(key, userID+"_") {
		return apperror.Forbidden("you can only remove your own images")
	}
	if err := s.Store.Remove(ctx, s.Bucket, key); err != nil {
		return fmt.Errorf("games.RemoveImage: %w", err)
	}
	return nil
}

// Publish stores the optional cover image and inserts the listing. If the insert
// fails the stored image is removed again.
func (s *GameService) Publish(ctx context.Context, userID string, in CreateGameInput, img *ImageFile) (*models.Game, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if img == nil {
		return s.Create(ctx, userID, in)
	}

	key, url, err := s.StoreImage(ctx, userID, *img)
	if err != nil {
		return nil, err
	}
	in.ImageURL = url

	game, err := s.Create(ctx, userID, in)
	if err != nil {
		if rmErr := s.Store.Remove(context.WithoutCancel(ctx), s.Bucket, key); rmErr != nil {
			slog.Error("failed to remove orphaned image", "key", key, "error", rmErr)
		}
		return nil, err
	}
	return game, nil
}

// RecordDownload bumps the counter in one UPDATE and returns the direct link.
func (s *GameService) RecordDownload(ctx context.Context, id string) (*DownloadResult, error) {
	var result DownloadResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Game{}).
			Where("id = ?", id).
			UpdateColumn("download_count", gorm.Expr("download_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("game", id)
		}

		var game models.Game
		if err := tx.Select("file_url", "download_count").First(&game, "id = ?", id).Error; err != nil {
			return err
		}
		result.DownloadURL = catalog.DirectDownloadURL(game.FileURL)
		result.DownloadCount = game.DownloadCount
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("games.RecordDownload: %w", err)
	}
	return &result, nil
}

// Update applies an admin edit.
func (s *GameService) Update(ctx context.Context, id string, in UpdateGameInput) (*models.Game, error) {
	updates := map[string]any{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "title is required")
		}
		updates["title"] = title
		updates["slug"] = slug.Make(title)
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		if desc == "" {
			return nil, apperror.ValidationFailed("description", "description is required")
		}
		updates["description"] = desc
	}
	if in.Category != nil {
		if !in.Category.Valid() {
			return nil, apperror.ValidationFailed("category", fmt.Sprintf("unknown category %q", *in.Category))
		}
		updates["category"] = *in.Category
	}
	if in.Rating != nil {
		if *in.Rating < 0 || *in.Rating > 5 {
			return nil, apperror.ValidationFailed("rating", "rating must be between 0 and 5")
		}
		updates["rating"] = *in.Rating
	}
	if in.FileURL != nil {
		link := strings.TrimSpace(*in.FileURL)
		if link == "" {
			return nil, apperror.ValidationFailed("file_url", "download link is required")
		}
		updates["file_url"] = link
	}

	if len(updates) > 0 {
		res := s.DB.WithContext(ctx).Model(&models.Game{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, fmt.Errorf("games.Update: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, apperror.NotFound("game", id)
		}
	}
	return s.Get(ctx, id)
}

// Delete removes a listing with its comments. A cover image stored in our
// bucket is removed afterwards; failing to do so only logs.
func (s *GameService) Delete(ctx context.Context, id string) error {
	var game models.Game
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&game, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("game", id)
			}
			return err
		}
		if err := tx.Where("game_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&game).Error
	})
	if err != nil {
		return fmt.Errorf("games.Delete: %w", err)
	}

	if game.ImageURL != nil && s.Store != nil {
		if key, ok := storage.KeyFromURL(s.Store, s.Bucket, *game.ImageURL); ok {
			if err := s.Store.Remove(ctx, s.Bucket, key); err != nil {
				slog.Warn("failed to remove game image", "game_id", id, "key", key, "error", err)
			}
		}
	}

	slog.Info("game deleted", "id", id)
	return nil
}

// RecomputeRatings sets every commented game's rating to its mean comment rating.
func (s *GameService) RecomputeRatings(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).Exec(`
		UPDATE games SET rating = (
			SELECT AVG(c.rating) FROM comments c WHERE c.game_id = games.id
		)
		WHERE EXISTS (SELECT 1 FROM comments c WHERE c.game_id = games.id)`)
	if res.Error != nil {
		return 0, fmt.Errorf("games.RecomputeRatings: %w", res.Error)
	}
	return res.RowsAffected, nil
}
