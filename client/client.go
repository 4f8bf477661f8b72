package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"game-hub/models"
)

// Client is the game hub API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// New creates a new API client. apiKey may be empty when the hub does not require one.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken sets the bearer access token sent with every request. "" clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// GameQuery is the server-side catalog query.
type GameQuery struct {
	Category  models.Category
	Sort      models.SortKey
	Term      string
	CreatedBy string
}

// ListGames fetches the catalog for the given query.
func (c *Client) ListGames(ctx context.Context, q GameQuery) ([]models.Game, error) {
	params := url.Values{}
	if q.Category != "" && q.Category != models.CategoryAll {
		params.Set("category", string(q.Category))
	}
	if q.Sort != "" {
		params.Set("sort", string(q.Sort))
	}
	if q.Term != "" {
		params.Set("q", q.Term)
	}
	if q.CreatedBy != "" {
		params.Set("created_by", q.CreatedBy)
	}
	path := "/api/games"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var games []models.Game
	if err := c.get(ctx, path, &games); err != nil {
		return nil, fmt.Errorf("client.ListGames: %w", err)
	}
	return games, nil
}

// GetGame fetches a single listing by ID.
func (c *Client) GetGame(ctx context.Context, id string) (*models.Game, error) {
	var game models.Game
	if err := c.get(ctx, "/api/games/"+url.PathEscape(id), &game); err != nil {
		return nil, fmt.Errorf("client.GetGame: %w", err)
	}
	return &game, nil
}

// DownloadResult is the server's answer to a recorded download.
type DownloadResult struct {
	DownloadURL   string `json:"download_url"`
	DownloadCount int64  `json:"download_count"`
}

// RecordDownload increments the listing's download counter.
func (c *Client) RecordDownload(ctx context.Context, id string) (*DownloadResult, error) {
	var res DownloadResult
	if err := c.post(ctx, "/api/games/"+url.PathEscape(id)+"/download", nil, &res); err != nil {
		return nil, fmt.Errorf("client.RecordDownload: %w", err)
	}
	return &res, nil
}

// CreateGameRequest is the payload for publishing a listing.
type CreateGameRequest struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	About        string              `json:"about,omitempty"`
	Category     models.Category     `json:"category"`
	FileURL      string              `json:"file_url"`
	ImageURL     string              `json:"image_url,omitempty"`
	Screenshots  []string            `json:"screenshots,omitempty"`
	Requirements models.Requirements `json:"requirements"`
	SteamAppID   *int                `json:"steam_appid,omitempty"`
}

// CreateGame publishes a listing owned by the signed-in user.
func (c *Client) CreateGame(ctx context.Context, req CreateGameRequest) (*models.Game, error) {
	var game models.Game
	if err := c.post(ctx, "/api/games", req, &game); err != nil {
		return nil, fmt.Errorf("client.CreateGame: %w", err)
	}
	return &game, nil
}

// ListComments returns a listing's comments, newest first.
func (c *Client) ListComments(ctx context.Context, gameID string) ([]models.Comment, error) {
	var comments []models.Comment
	if err := c.get(ctx, "/api/games/"+url.PathEscape(gameID)+"/comments", &comments); err != nil {
		return nil, fmt.Errorf("client.ListComments: %w", err)
	}
	return comments, nil
}

// CreateComment posts a rated comment.
func (c *Client) CreateComment(ctx context.Context, gameID, content string, rating int) (*models.Comment, error) {
	body := map[string]any{"content": content, "rating": rating}
	var comment models.Comment
	if err := c.post(ctx, "/api/games/"+url.PathEscape(gameID)+"/comments", body, &comment); err != nil {
		return nil, fmt.Errorf("client.CreateComment: %w", err)
	}
	return &comment, nil
}

// MyComments returns the signed-in user's comments with the game titles.
func (c *Client) MyComments(ctx context.Context) ([]models.Comment, error) {
	var comments []models.Comment
	if err := c.get(ctx, "/api/profiles/me/comments", &comments); err != nil {
		return nil, fmt.Errorf("client.MyComments: %w", err)
	}
	return comments, nil
}

// --- Auth ---

// Tokens is the credential pair issued by sign-up, sign-in and refresh.
type Tokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponse carries the tokens and the profile they belong to.
type AuthResponse struct {
	Tokens
	User *models.Profile `json:"user"`
}

func (c *Client) SignUp(ctx context.Context, email, password, username string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password, "username": username}
	var resp AuthResponse
	if err := c.post(ctx, "/api/auth/signup", body, &resp); err != nil {
		return nil, fmt.Errorf("client.SignUp: %w", err)
	}
	return &resp, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp AuthResponse
	if err := c.post(ctx, "/api/auth/signin", body, &resp); err != nil {
		return nil, fmt.Errorf("client.SignIn: %w", err)
	}
	return &resp, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, "/api/auth/refresh", map[string]string{"refresh_token": refreshToken}, &resp); err != nil {
		return nil, fmt.Errorf("client.Refresh: %w", err)
	}
	return &resp, nil
}

func (c *Client) SignOut(ctx context.Context, refreshToken string) error {
	if err := c.post(ctx, "/api/auth/signout", map[string]string{"refresh_token": refreshToken}, nil); err != nil {
		return fmt.Errorf("client.SignOut: %w", err)
	}
	return nil
}

// CurrentUser returns the profile behind the current access token.
func (c *Client) CurrentUser(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	if err := c.get(ctx, "/api/auth/session", &p); err != nil {
		return nil, fmt.Errorf("client.CurrentUser: %w", err)
	}
	return &p, nil
}

// UpdateUsername renames the signed-in user.
func (c *Client) UpdateUsername(ctx context.Context, username string) (*models.Profile, error) {
	var p models.Profile
	if err := c.doRequest(ctx, http.MethodPatch, "/api/profiles/me", map[string]string{"username": username}, &p); err != nil {
		return nil, fmt.Errorf("client.UpdateUsername: %w", err)
	}
	return &p, nil
}

// UploadAvatar replaces the signed-in user's avatar with the given image.
func (c *Client) UploadAvatar(ctx context.Context, filename, contentType string, body io.Reader) (*models.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/profiles/me/avatar", body)
	if err != nil {
		return nil, fmt.Errorf("client.UploadAvatar: create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-File-Name", filename)

	var p models.Profile
	if err := c.send(req, &p); err != nil {
		return nil, fmt.Errorf("client.UploadAvatar: %w", err)
	}
	return &p, nil
}

// --- Admin ---

func (c *Client) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := c.get(ctx, "/api/admin/profiles", &profiles); err != nil {
		return nil, fmt.Errorf("client.ListProfiles: %w", err)
	}
	return profiles, nil
}

func (c *Client) ToggleAdmin(ctx context.Context, profileID string) (*models.Profile, error) {
	var p models.Profile
	if err := c.post(ctx, "/api/admin/profiles/"+url.PathEscape(profileID)+"/toggle-admin", nil, &p); err != nil {
		return nil, fmt.Errorf("client.ToggleAdmin: %w", err)
	}
	return &p, nil
}

// AdminGames lists every listing for moderation, newest first.
func (c *Client) AdminGames(ctx context.Context) ([]models.Game, error) {
	var games []models.Game
	if err := c.get(ctx, "/api/admin/games", &games); err != nil {
		return nil, fmt.Errorf("client.AdminGames: %w", err)
	}
	return games, nil
}

// UpdateGameRequest is an admin edit. Nil fields are left unchanged.
type UpdateGameRequest struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *models.Category `json:"category,omitempty"`
	Rating      *float64         `json:"rating,omitempty"`
}

func (c *Client) UpdateGame(ctx context.Context, id string, req UpdateGameRequest) (*models.Game, error) {
	var game models.Game
	if err := c.doRequest(ctx, http.MethodPatch, "/api/admin/games/"+url.PathEscape(id), req, &game); err != nil {
		return nil, fmt.Errorf("client.UpdateGame: %w", err)
	}
	return &game, nil
}

func (c *Client) DeleteGame(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/admin/games/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteGame: %w", err)
	}
	return nil
}

func (c *Client) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	if err := c.get(ctx, "/api/admin/stats", &stats); err != nil {
		return nil, fmt.Errorf("client.Stats: %w", err)
	}
	return &stats, nil
}

// --- Metadata proxies ---

// SteamApp is a search candidate.
type SteamApp struct {
	AppID int    `json:"appid"`
	Name  string `json:"name"`
}

// ResolvedApp is the basic metadata behind a store URL.
type ResolvedApp struct {
	Success     bool   `json:"success"`
	AppID       int    `json:"appid"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	Category    string `json:"category"`
}

// AppDetails is the rich metadata used to fill the upload form.
type AppDetails struct {
	Success          bool   `json:"success"`
	AboutTheGame     string `json:"about_the_game"`
	ShortDescription string `json:"short_description"`
	Screenshots      []struct {
		ID  int    `json:"id"`
		URL string `json:"url"`
	} `json:"screenshots"`
	PCRequirements models.Requirements `json:"pc_requirements"`
	HeaderImage    string              `json:"header_image"`
	Genres         []struct {
		ID          string `json:"id"`
		Description string `json:"description"`
	} `json:"genres"`
}

func (c *Client) SearchApps(ctx context.Context, term string) ([]SteamApp, error) {
	var apps []SteamApp
	if err := c.post(ctx, "/api/metadata/search", map[string]string{"searchTerm": term}, &apps); err != nil {
		return nil, fmt.Errorf("client.SearchApps: %w", err)
	}
	return apps, nil
}

func (c *Client) ResolveApp(ctx context.Context, storeURL string) (*ResolvedApp, error) {
	var app ResolvedApp
	if err := c.post(ctx, "/api/metadata/resolve", map[string]string{"url": storeURL}, &app); err != nil {
		return nil, fmt.Errorf("client.ResolveApp: %w", err)
	}
	return &app, nil
}

func (c *Client) AppDetails(ctx context.Context, appID int) (*AppDetails, error) {
	var d AppDetails
	if err := c.post(ctx, "/api/metadata/details", map[string]int{"appId": appID}, &d); err != nil {
		return nil, fmt.Errorf("client.AppDetails: %w", err)
	}
	return &d, nil
}

// --- transport ---

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

// send adds the credentials, performs the request and decodes a JSON answer into out.
func (c *Client) send(req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil {
			if apiErr.Error != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
			}
			if apiErr.Message != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
			}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
