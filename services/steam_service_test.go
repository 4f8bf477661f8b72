package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"game-hub/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSteam serves GetAppList and appdetails for a fixed set of apps.
type fakeSteam struct {
	*httptest.Server
	appListHits atomic.Int32
	lastQuery   atomic.Value
}

func newFakeSteam(t *testing.T) *fakeSteam {
	t.Helper()
	f := &fakeSteam{}
	mux := http.NewServeMux()

	mux.HandleFunc("/ISteamApps/GetAppList/v2/", func(w http.ResponseWriter, r *http.Request) {
		f.appListHits.Add(1)
		apps := []SteamApp{{AppID: 620, Name: "Portal 2"}, {AppID: 400, Name: "Portal"}, {AppID: 70, Name: "Half-Life"}, {AppID: 1, Name: ""}}
		for i := range 30 {
			apps = append(apps, SteamApp{AppID: 1000 + i, Name: fmt.Sprintf("Portal Clone %d", i)})
		}
		var resp steamAppListResponse
		resp.AppList.Apps = apps
		_ = json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("/api/appdetails", func(w http.ResponseWriter, r *http.Request) {
		f.lastQuery.Store(r.URL.RawQuery)
		switch r.URL.Query().Get("appids") {
		case "620":
			_, _ = w.Write([]byte(`{"620":{"success":true,"data":{
				"name":"Portal 2",
				"about_the_game":"<p>About</p>",
				"short_description":"Puzzle co-op",
				"header_image":"https://cdn.steam.test/620/header.jpg",
				"screenshots":[{"id":0,"path_full":"https://cdn.steam.test/620/ss0.jpg"},{"id":1,"path_full":"https://cdn.steam.test/620/ss1.jpg"}],
				"pc_requirements":{"minimum":"<b>Min</b>","recommended":"<b>Rec</b>"},
				"genres":[{"id":"4","description":"Puzzle"},{"id":"1","description":"Action"}]
			}}}`))
		case "70":
			_, _ = w.Write([]byte(`{"70":{"success":true,"data":{"name":"Half-Life","short_description":"Classic","pc_requirements":[],"genres":[]}}}`))
		case "500":
			w.WriteHeader(http.StatusBadGateway)
		default:
			id := r.URL.Query().Get("appids")
			_, _ = w.Write([]byte(`{"` + id + `":{"success":false}}`))
		}
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeSteam) service() *SteamService {
	return NewSteamService(SteamConfig{
		StoreURL:   f.URL,
		APIURL:     f.URL,
		Country:    "tr",
		Language:   "turkish",
		AppListTTL: time.Hour,
	})
}

func TestSteamService_SearchCapsAndFolds(t *testing.T) {
	f := newFakeSteam(t)
	svc := f.service()

	results, err := svc.Search(context.Background(), "PORTAL")
	require.NoError(t, err)
	assert.Len(t, results, MaxSearchResults)
	assert.Equal(t, SteamApp{AppID: 620, Name: "Portal 2"}, results[0])

	results, err = svc.Search(context.Background(), "half")
	require.NoError(t, err)
	assert.Equal(t, []SteamApp{{AppID: 70, Name: "Half-Life"}}, results)

	results, err = svc.Search(context.Background(), "zelda")
	require.NoError(t, err)
	assert.Empty(t, results)

	assert.Equal(t, int32(1), f.appListHits.Load(), "app list is cached")

	_, err = svc.Search(context.Background(), "  ")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestSteamService_SearchCollapsesConcurrentFetches(t *testing.T) {
	f := newFakeSteam(t)
	svc := f.service()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Search(context.Background(), "portal")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, f.appListHits.Load(), int32(10))
	assert.GreaterOrEqual(t, f.appListHits.Load(), int32(1))

	// Once cached, no more fetches happen.
	before := f.appListHits.Load()
	_, err := svc.Search(context.Background(), "portal")
	require.NoError(t, err)
	assert.Equal(t, before, f.appListHits.Load())
}

func TestSteamService_Resolve(t *testing.T) {
	f := newFakeSteam(t)
	svc := f.service()

	app, err := svc.Resolve(context.Background(), "https://store.steampowered.com/app/620/Portal_2/")
	require.NoError(t, err)
	assert.Equal(t, &ResolvedApp{
		Success:     true,
		AppID:       620,
		Title:       "Portal 2",
		Description: "Puzzle co-op",
		ImageURL:    "https://cdn.steam.test/620/header.jpg",
		Category:    "Puzzle",
	}, app)
	assert.Contains(t, f.lastQuery.Load(), "cc=tr")
	assert.Contains(t, f.lastQuery.Load(), "l=turkish")

	app, err = svc.Resolve(context.Background(), "store.steampowered.com/app/70")
	require.NoError(t, err)
	assert.Equal(t, "Action", app.Category, "missing genres fall back to Action")

	_, err = svc.Resolve(context.Background(), "https://example.com/app/620")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestSteamService_Details(t *testing.T) {
	f := newFakeSteam(t)
	svc := f.service()

	d, err := svc.Details(context.Background(), 620)
	require.NoError(t, err)
	assert.True(t, d.Success)
	assert.Equal(t, "<p>About</p>", d.AboutTheGame)
	assert.Equal(t, []Screenshot{
		{ID: 0, URL: "https://cdn.steam.test/620/ss0.jpg"},
		{ID: 1, URL: "https://cdn.steam.test/620/ss1.jpg"},
	}, d.Screenshots)
	assert.Equal(t, PCRequirements{Minimum: "<b>Min</b>", Recommended: "<b>Rec</b>"}, d.PCRequirements)
	assert.Equal(t, "Puzzle", d.Genres[0].Description)

	d, err = svc.Details(context.Background(), 70)
	require.NoError(t, err)
	assert.Equal(t, PCRequirements{}, d.PCRequirements, "[] requirements decode to empty")
	assert.Empty(t, d.Screenshots)
	assert.NotNil(t, d.Genres)
}

func TestSteamService_DetailsErrors(t *testing.T) {
	f := newFakeSteam(t)
	svc := f.service()

	_, err := svc.Details(context.Background(), 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.Details(context.Background(), 500)
	assert.ErrorIs(t, err, apperror.ErrUpstream)

	_, err = svc.Details(context.Background(), 0)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
