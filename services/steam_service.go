package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"game-hub/apperror"
	"game-hub/catalog"

	"golang.org/x/sync/singleflight"
)

const (
	MaxSearchResults = 20
	defaultGenre     = "Action"
)

// SteamConfig points the service at the store and Web API hosts.
type SteamConfig struct {
	StoreURL   string
	APIURL     string
	Country    string
	Language   string
	AppListTTL time.Duration
}

// SteamService proxies the Steam store for metadata autofill.
// The full app list is cached and concurrent refreshes share one fetch.
type SteamService struct {
	cfg        SteamConfig
	httpClient *http.Client

	mu        sync.RWMutex
	apps      []SteamApp
	fetchedAt time.Time
	group     singleflight.Group
}

func NewSteamService(cfg SteamConfig) *SteamService {
	if cfg.AppListTTL <= 0 {
		cfg.AppListTTL = 6 * time.Hour
	}
	return &SteamService{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type SteamApp struct {
	AppID int    `json:"appid"`
	Name  string `json:"name"`
}

type ResolvedApp struct {
	Success     bool   `json:"success"`
	AppID       int    `json:"appid"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	Category    string `json:"category"`
}

type Screenshot struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

type Genre struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

type PCRequirements struct {
	Minimum     string `json:"minimum"`
	Recommended string `json:"recommended"`
}

type AppDetails struct {
	Success          bool           `json:"success"`
	AboutTheGame     string         `json:"about_the_game"`
	ShortDescription string         `json:"short_description"`
	Screenshots      []Screenshot   `json:"screenshots"`
	PCRequirements   PCRequirements `json:"pc_requirements"`
	HeaderImage      string         `json:"header_image"`
	Genres           []Genre        `json:"genres"`
}

// steamAppData is the "data" object of an appdetails entry.
type steamAppData struct {
	Name             string `json:"name"`
	AboutTheGame     string `json:"about_the_game"`
	ShortDescription string `json:"short_description"`
	HeaderImage      string `json:"header_image"`
	Screenshots      []struct {
		ID       int    `json:"id"`
		PathFull string `json:"path_full"`
	} `json:"screenshots"`
	// Steam sends [] instead of an object when there are no requirements.
	PCRequirements json.RawMessage `json:"pc_requirements"`
	Genres         []Genre         `json:"genres"`
}

type steamAppListResponse struct {
	AppList struct {
		Apps []SteamApp `json:"apps"`
	} `json:"applist"`
}

// Search returns up to MaxSearchResults apps whose name contains term.
func (s *SteamService) Search(ctx context.Context, term string) ([]SteamApp, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperror.ValidationFailed("searchTerm", "search term cannot be empty")
	}

	apps, err := s.appList(ctx)
	if err != nil {
		return nil, err
	}

	folded := catalog.Fold(term)
	results := make([]SteamApp, 0, MaxSearchResults)
	for _, app := range apps {
		if app.Name == "" || !strings.Contains(catalog.Fold(app.Name), folded) {
			continue
		}
		results = append(results, app)
		if len(results) == MaxSearchResults {
			break
		}
	}
	return results, nil
}

// Resolve turns a store URL into basic metadata.
func (s *SteamService) Resolve(ctx context.Context, storeURL string) (*ResolvedApp, error) {
	appID, ok := catalog.SteamAppID(storeURL)
	if !ok {
		return nil, apperror.ValidationFailed("url", "invalid Steam store URL")
	}

	data, err := s.fetchDetails(ctx, appID)
	if err != nil {
		return nil, err
	}

	category := defaultGenre
	if len(data.Genres) > 0 && data.Genres[0].Description != "" {
		category = data.Genres[0].Description
	}
	return &ResolvedApp{
		Success:     true,
		AppID:       appID,
		Title:       data.Name,
		Description: data.ShortDescription,
		ImageURL:    data.HeaderImage,
		Category:    category,
	}, nil
}

// Details returns the rich metadata used to fill the upload form.
func (s *SteamService) Details(ctx context.Context, appID int) (*AppDetails, error) {
	if appID <= 0 {
		return nil, apperror.ValidationFailed("appId", "a Steam app id is required")
	}
	data, err := s.fetchDetails(ctx, appID)
	if err != nil {
		return nil, err
	}

	details := &AppDetails{
		Success:          true,
		AboutTheGame:     data.AboutTheGame,
		ShortDescription: data.ShortDescription,
		HeaderImage:      data.HeaderImage,
		Genres:           data.Genres,
		Screenshots:      make([]Screenshot, 0, len(data.Screenshots)),
	}
	for _, sc := range data.Screenshots {
		details.Screenshots = append(details.Screenshots, Screenshot{ID: sc.ID, URL: sc.PathFull})
	}
	if trimmed := bytes.TrimSpace(data.PCRequirements); len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &details.PCRequirements); err != nil {
			slog.Warn("unexpected pc_requirements shape", "appid", appID, "error", err)
		}
	}
	if details.Genres == nil {
		details.Genres = []Genre{}
	}
	return details, nil
}

func (s *SteamService) fetchDetails(ctx context.Context, appID int) (*steamAppData, error) {
	id := strconv.Itoa(appID)
	q := url.Values{}
	q.Set("appids", id)
	if s.cfg.Country != "" {
		q.Set("cc", s.cfg.Country)
	}
	if s.cfg.Language != "" {
		q.Set("l", s.cfg.Language)
	}

	var payload map[string]struct {
		Success bool         `json:"success"`
		Data    steamAppData `json:"data"`
	}
	if err := s.getJSON(ctx, s.cfg.StoreURL+"/api/appdetails?"+q.Encode(), &payload); err != nil {
		return nil, err
	}

	entry, ok := payload[id]
	if !ok || !entry.Success {
		return nil, apperror.NotFound("steam app", id)
	}
	return &entry.Data, nil
}

// appList returns the cached app list, refreshing it when it is older than the TTL.
func (s *SteamService) appList(ctx context.Context) ([]SteamApp, error) {
	s.mu.RLock()
	apps, fetchedAt := s.apps, s.fetchedAt
	s.mu.RUnlock()
	if apps != nil && time.Since(fetchedAt) < s.cfg.AppListTTL {
		return apps, nil
	}

	v, err, _ := s.group.Do("applist", func() (any, error) {
		var resp steamAppListResponse
		if err := s.getJSON(context.WithoutCancel(ctx), s.cfg.APIURL+"/ISteamApps/GetAppList/v2/", &resp); err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.apps = resp.AppList.Apps
		s.fetchedAt = time.Now()
		s.mu.Unlock()
		slog.Info("steam app list refreshed", "apps", len(resp.AppList.Apps))
		return resp.AppList.Apps, nil
	})
	if err != nil {
		if apps != nil {
			slog.Warn("steam app list refresh failed, serving stale list", "error", err)
			return apps, nil
		}
		return nil, err
	}
	return v.([]SteamApp), nil
}

func (s *SteamService) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return apperror.Upstream("steam", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return apperror.Upstream("steam", fmt.Errorf("status %d: %s", resp.StatusCode, body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.Upstream("steam", fmt.Errorf("decode response: %w", err))
	}
	return nil
}
