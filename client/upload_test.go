package client

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"game-hub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploader_ValidatesBeforeAnyRequest(t *testing.T) {
	hub := newFakeHub(t)
	u := NewUploader(New(hub.URL, ""))

	tests := []struct {
		name  string
		form  UploadForm
		field string
	}{
		{"no title", UploadForm{Description: "d", FileURL: "f"}, "title"},
		{"blank description", UploadForm{Title: "t", Description: "  ", FileURL: "f"}, "description"},
		{"no link", UploadForm{Title: "t", Description: "d"}, "file_url"},
		{"bad category", UploadForm{Title: "t", Description: "d", FileURL: "f", Category: "shooter"}, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u.Form = tt.form
			_, err := u.Submit(context.Background(), nil)
			var valErr *ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tt.field, valErr.Field)
		})
	}
	assert.Zero(t, hub.requests.Load())
}

func TestUploader_AutofillFromStoreURL(t *testing.T) {
	hub := newFakeHub(t)
	u := NewUploader(New(hub.URL, ""))

	candidates, err := u.Autofill(context.Background(), "https://store.steampowered.com/app/620/Portal_2/")
	require.NoError(t, err)
	assert.Nil(t, candidates)

	f := u.Form
	assert.Equal(t, "Portal 2", f.Title)
	assert.Equal(t, "Co-op puzzles", f.Description)
	assert.Equal(t, "<p>About</p>", f.About)
	assert.Equal(t, "https://cdn.test/header.jpg", f.ImageURL)
	assert.Equal(t, []string{"https://cdn.test/ss0.jpg"}, f.Screenshots)
	assert.Equal(t, models.Requirements{Minimum: "min", Recommended: "rec"}, f.Requirements)
	assert.Equal(t, models.CategoryPuzzle, f.Category, "Turkish genre names map onto categories")
	require.NotNil(t, f.SteamAppID)
	assert.Equal(t, 620, *f.SteamAppID)
}

func TestUploader_AutofillSearchThenSelect(t *testing.T) {
	hub := newFakeHub(t)
	u := NewUploader(New(hub.URL, ""))

	candidates, err := u.Autofill(context.Background(), "portal")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Empty(t, u.Form.Title, "search alone does not touch the form")

	require.NoError(t, u.Select(context.Background(), candidates[1]))
	assert.Equal(t, "Portal", u.Form.Title)
	assert.Equal(t, 400, *u.Form.SteamAppID)

	err = u.Select(context.Background(), SteamApp{AppID: 1, Name: "Ghost"})
	require.Error(t, err)
	assert.Equal(t, "Game details not found", Message(err))
	assert.Equal(t, "Ghost", u.Form.Title, "the form stays editable after a proxy failure")
}

func TestUploader_SubmitUploadsImageWithProgress(t *testing.T) {
	hub := newFakeHub(t)
	u := NewUploader(New(hub.URL, ""))
	payload := bytes.Repeat([]byte("p"), 256*1024)

	u.Form = UploadForm{
		Title:       "Pixel Quest",
		Description: "Retro",
		FileURL:     "https://x.test/pq.zip",
		ImageURL:    "https://cdn.test/ignored.jpg",
		Image: &ImageSource{
			Filename:    "cover.png",
			ContentType: "image/png",
			Body:        bytes.NewReader(payload),
			Size:        int64(len(payload)),
		},
	}

	var progress []float64
	game, err := u.Submit(context.Background(), func(p float64) { progress = append(progress, p) })
	require.NoError(t, err)

	require.NotEmpty(t, progress)
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i], progress[i-1], "progress never goes back")
	}
	assert.Equal(t, 100.0, progress[len(progress)-1])
	for _, p := range progress {
		assert.True(t, p >= 0 && p <= 100)
	}

	assert.Equal(t, payload, hub.uploadedBytes())
	require.NotNil(t, game.ImageURL)
	assert.Equal(t, "http://hub.test/uploads/game-images/u_1_cover.png", *game.ImageURL)
	require.NotNil(t, hub.createdGame())
	assert.Equal(t, models.CategoryAction, hub.createdGame().Category)
	assert.Empty(t, hub.removedKeys())
}

func TestUploader_RejectedListingRemovesImage(t *testing.T) {
	hub := newFakeHub(t)
	hub.set(func(h *fakeHub) { h.rejectCreate = true })
	u := NewUploader(New(hub.URL, ""))
	u.Form = UploadForm{
		Title: "t", Description: "d", FileURL: "f",
		Image: &ImageSource{Filename: "cover.png", ContentType: "image/png", Body: strings.NewReader("png"), Size: 3},
	}

	_, err := u.Submit(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, IsStatus(err, 400))
	assert.Equal(t, []byte("png"), hub.uploadedBytes())
	assert.Equal(t, []string{"u_1_cover.png"}, hub.removedKeys())
}

func TestUploader_FailedImageUploadStopsSubmit(t *testing.T) {
	hub := newFakeHub(t)
	u := NewUploader(New(hub.URL, ""))
	u.Form = UploadForm{
		Title: "t", Description: "d", FileURL: "f",
		Image: &ImageSource{Filename: "notes.txt", ContentType: "text/plain", Body: strings.NewReader("x"), Size: 1},
	}

	_, err := u.Submit(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, "file must be an image", Message(err))
	assert.Nil(t, hub.createdGame(), "the listing is not inserted")
	assert.Empty(t, hub.removedKeys())
}

func TestProgressReader_UnknownSize(t *testing.T) {
	var got []float64
	pr := newProgressReader(strings.NewReader("abcdef"), 0, func(p float64) { got = append(got, p) })
	_, err := io.Copy(io.Discard, pr)
	require.NoError(t, err)
	assert.Equal(t, []float64{100}, got)
}

func TestGenreCategory(t *testing.T) {
	tests := map[string]models.Category{
		"Action":     models.CategoryAction,
		"Macera":     models.CategoryAdventure,
		"RPG":        models.CategoryRPG,
		"Simülasyon": models.CategorySimulation,
		"Strategy":   models.CategoryStrategy,
		"Gündelik":   models.CategoryArcade,
		"Simulasyon": models.CategorySimulation,
	}
	for genre, want := range tests {
		got, ok := GenreCategory(genre)
		assert.True(t, ok, genre)
		assert.Equal(t, want, got, genre)
	}
	_, ok := GenreCategory("Massively Multiplayer")
	assert.False(t, ok)
}
