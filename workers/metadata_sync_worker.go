// workers/metadata_sync_worker.go
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"game-hub/apperror"
	"game-hub/models"
	"game-hub/services"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DetailsFetcher is the part of the Steam proxy the worker needs.
type DetailsFetcher interface {
	Details(ctx context.Context, appID int) (*services.AppDetails, error)
}

// MetadataSyncWorker backfills Steam metadata on listings that carry a
// steam_app_id but were saved without about text, cover, screenshots or requirements.
type MetadataSyncWorker struct {
	db       *gorm.DB
	steam    DetailsFetcher
	interval time.Duration
}

func NewMetadataSyncWorker(db *gorm.DB, steam DetailsFetcher, interval time.Duration) *MetadataSyncWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &MetadataSyncWorker{db: db, steam: steam, interval: interval}
}

func (w *MetadataSyncWorker) Start(ctx context.Context) {
	slog.Info("starting metadata sync worker", "interval", w.interval.String())
	go w.run(ctx)
}

func (w *MetadataSyncWorker) run(ctx context.Context) {
	if _, err := w.SyncOnce(ctx); err != nil {
		slog.Warn("initial metadata sync failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.SyncOnce(ctx); err != nil {
				slog.Error("metadata sync failed", "error", err)
			}
		case <-ctx.Done():
			slog.Info("metadata sync worker stopped")
			return
		}
	}
}

// SyncOnce runs a single pass and returns how many listings were updated.
// A failing listing is logged and skipped.
func (w *MetadataSyncWorker) SyncOnce(ctx context.Context) (int, error) {
	var games []models.Game
	if err := w.db.WithContext(ctx).
		Where("steam_app_id IS NOT NULL").
		Order("created_at ASC").
		Find(&games).Error; err != nil {
		return 0, fmt.Errorf("load steam-linked games: %w", err)
	}

	var updated, failed int
	for i := range games {
		if ctx.Err() != nil {
			return updated, ctx.Err()
		}
		game := &games[i]
		if !needsMetadata(game) {
			continue
		}

		details, err := w.steam.Details(ctx, *game.SteamAppID)
		if err != nil {
			failed++
			if errors.Is(err, apperror.ErrNotFound) {
				slog.Info("steam app no longer available", "game_id", game.ID, "appid", *game.SteamAppID)
			} else {
				slog.Warn("steam details fetch failed", "game_id", game.ID, "appid", *game.SteamAppID, "error", err)
			}
			continue
		}

		updates := missingFields(game, details)
		if len(updates) == 0 {
			continue
		}
		if err := w.db.WithContext(ctx).Model(game).Updates(updates).Error; err != nil {
			failed++
			slog.Warn("failed to save steam metadata", "game_id", game.ID, "error", err)
			continue
		}
		updated++
	}

	if updated > 0 || failed > 0 {
		slog.Info("metadata sync finished", "candidates", len(games), "updated", updated, "failed", failed)
	}
	return updated, nil
}

func needsMetadata(g *models.Game) bool {
	req := g.Requirements.Data()
	return g.About == "" ||
		g.ImageURL == nil || *g.ImageURL == "" ||
		len(g.Screenshots) == 0 ||
		(req.Minimum == "" && req.Recommended == "")
}

// missingFields only fills what is empty; uploader-provided values are never overwritten.
func missingFields(g *models.Game, d *services.AppDetails) map[string]any {
	updates := map[string]any{}
	if g.About == "" && d.AboutTheGame != "" {
		updates["about"] = d.AboutTheGame
	}
	if (g.ImageURL == nil || *g.ImageURL == "") && d.HeaderImage != "" {
		updates["image_url"] = d.HeaderImage
	}
	if len(g.Screenshots) == 0 && len(d.Screenshots) > 0 {
		urls := make(datatypes.JSONSlice[string], 0, len(d.Screenshots))
		for _, sc := range d.Screenshots {
			urls = append(urls, sc.URL)
		}
		updates["screenshots"] = urls
	}
	req := g.Requirements.Data()
	if req.Minimum == "" && req.Recommended == "" &&
		(d.PCRequirements.Minimum != "" || d.PCRequirements.Recommended != "") {
		updates["requirements"] = datatypes.NewJSONType(models.Requirements{
			Minimum:     d.PCRequirements.Minimum,
			Recommended: d.PCRequirements.Recommended,
		})
	}
	return updates
}
