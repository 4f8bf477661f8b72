package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"game-hub/apperror"
	"game-hub/models"
	"game-hub/storage"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type ProfileService struct {
	DB     *gorm.DB
	Store  storage.Store
	Bucket string
	now    func() time.Time
}

func NewProfileService(db *gorm.DB, store storage.Store, bucket string) *ProfileService {
	return &ProfileService{DB: db, Store: store, Bucket: bucket, now: time.Now}
}

func (s *ProfileService) Get(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	err := s.DB.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("profile", id)
	}
	if err != nil {
		return nil, fmt.Errorf("profiles.Get: %w", err)
	}
	return &p, nil
}

// UpdateUsername changes the owner's display name.
func (s *ProfileService) UpdateUsername(ctx context.Context, id, username string) (*models.Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	res := s.DB.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Update("username", username)
	if res.Error != nil {
		return nil, fmt.Errorf("profiles.UpdateUsername: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperror.NotFound("profile", id)
	}
	return s.Get(ctx, id)
}

// ReplaceAvatar removes the current avatar object, uploads the new one under
// "<id>/" and points the profile at it.
func (s *ProfileService) ReplaceAvatar(ctx context.Context, id, filename, contentType string, body io.Reader) (*models.Profile, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperror.ValidationFailed("avatar", "avatar must be an image")
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.AvatarURL != nil {
		if oldKey, ok := storage.KeyFromURL(s.Store, s.Bucket, *p.AvatarURL); ok {
			if err := s.Store.Remove(ctx, s.Bucket, oldKey); err != nil {
				slog.Warn("failed to remove old avatar", "profile_id", id, "key", oldKey, "error", err)
			}
		}
	}

	base := slug.Make(strings.TrimSuffix(path.Base(filename), path.Ext(filename)))
	if base == "" {
		base = "avatar"
	}
	key := fmt.Sprintf("%s/%d_%s%s", id, s.now().UnixMilli(), base, strings.ToLower(path.Ext(filename)))
	if err := s.Store.Upload(ctx, s.Bucket, key, body, contentType); err != nil {
		return nil, fmt.Errorf("profiles.ReplaceAvatar: %w", err)
	}

	url := s.Store.PublicURL(s.Bucket, key)
	if err := s.DB.WithContext(ctx).Model(p).Update("avatar_url", url).Error; err != nil {
		return nil, fmt.Errorf("profiles.ReplaceAvatar: %w", err)
	}
	p.AvatarURL = &url
	return p, nil
}

// List returns every profile, newest first.
func (s *ProfileService) List(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("profiles.List: %w", err)
	}
	return profiles, nil
}

// ToggleAdmin flips the admin flag in a single statement.
func (s *ProfileService) ToggleAdmin(ctx context.Context, id string) (*models.Profile, error) {
	res := s.DB.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", id).
		UpdateColumn("is_admin", gorm.Expr("NOT is_admin"))
	if res.Error != nil {
		return nil, fmt.Errorf("profiles.ToggleAdmin: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperror.NotFound("profile", id)
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	slog.Info("admin flag toggled", "profile_id", id, "is_admin", p.IsAdmin)
	return p, nil
}

func (s *ProfileService) IsAdmin(ctx context.Context, id string) (bool, error) {
	var p models.Profile
	err := s.DB.WithContext(ctx).Select("is_admin").First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.IsAdmin, nil
}

// Stats summarises the catalog for the admin dashboard.
func (s *ProfileService) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	db := s.DB.WithContext(ctx)

	if err := db.Model(&models.Game{}).Count(&stats.TotalGames).Error; err != nil {
		return nil, fmt.Errorf("profiles.Stats: %w", err)
	}
	if err := db.Model(&models.Profile{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("profiles.Stats: %w", err)
	}

	var agg struct {
		Downloads int64
		Rating    float64
	}
	if err := db.Model(&models.Game{}).
		Select("COALESCE(SUM(download_count), 0) AS downloads, COALESCE(AVG(rating), 0) AS rating").
		Scan(&agg).Error; err != nil {
		return nil, fmt.Errorf("profiles.Stats: %w", err)
	}
	stats.TotalDownloads = agg.Downloads
	stats.AvgRating = agg.Rating
	return &stats, nil
}
