package services

import (
	"testing"
	"time"

	"game-hub/database"
	"game-hub/models"
	"game-hub/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newTestStore(t *testing.T) (*storage.DiskStore, string) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewDisk(root, "http://hub.test/uploads")
	require.NoError(t, err)
	return store, root
}

func seedProfile(t *testing.T, db *gorm.DB, username string, admin bool) *models.Profile {
	t.Helper()
	p := &models.Profile{
		ID:           uuid.NewString(),
		Email:        username + "@example.com",
		Username:     username,
		IsAdmin:      admin,
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

type gameSeed struct {
	Title       string
	Description string
	Category    models.Category
	FileURL     string
	Rating      float64
	Downloads   int64
	Age         time.Duration
	SteamAppID  *int
}

func seedGame(t *testing.T, db *gorm.DB, owner *models.Profile, g gameSeed) *models.Game {
	t.Helper()
	if g.Category == "" {
		g.Category = models.CategoryAction
	}
	if g.FileURL == "" {
		g.FileURL = "https://example.com/" + g.Title + ".zip"
	}
	if g.Description == "" {
		g.Description = g.Title + " description"
	}
	game := &models.Game{
		ID:            uuid.NewString(),
		Title:         g.Title,
		Description:   g.Description,
		Category:      g.Category,
		FileURL:       g.FileURL,
		Rating:        g.Rating,
		DownloadCount: g.Downloads,
		CreatedBy:     owner.ID,
		SteamAppID:    g.SteamAppID,
		CreatedAt:     time.Now().Add(-g.Age),
	}
	require.NoError(t, db.Create(game).Error)
	return game
}

func titles(games []models.Game) []string {
	out := make([]string, 0, len(games))
	for _, g := range games {
		out = append(out, g.Title)
	}
	return out
}
