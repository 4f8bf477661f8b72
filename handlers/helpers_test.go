package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"game-hub/config"
	"game-hub/database"
	"game-hub/models"
	"game-hub/services"
	"game-hub/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	app  *fiber.App
	db   *gorm.DB
	cfg  *config.Config
	root string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithConfig(t, &config.Config{
		JWTSecret:        "handler-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
		MaxImageBytes:    1 << 20,
		MetadataRPM:      1000,
		ImagesBucket:     "game-images",
		AvatarsBucket:    "avatars",
	})
}

func newTestServerWithConfig(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	root := t.TempDir()
	store, err := storage.NewDisk(root, "http://hub.test/uploads")
	require.NoError(t, err)

	steam := newFakeSteam(t)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	Setup(app, cfg, db, Services{
		Games:    services.NewGameService(db, store, cfg.ImagesBucket),
		Comments: services.NewCommentService(db),
		Profiles: services.NewProfileService(db, store, cfg.AvatarsBucket),
		Auth:     services.NewAuthService(db, cfg),
		Steam: services.NewSteamService(services.SteamConfig{
			StoreURL:   steam.URL,
			APIURL:     steam.URL,
			Country:    "tr",
			Language:   "turkish",
			AppListTTL: time.Hour,
		}),
	})
	return &testServer{app: app, db: db, cfg: cfg, root: root}
}

func newFakeSteam(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ISteamApps/GetAppList/v2/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"applist":{"apps":[{"appid":620,"name":"Portal 2"},{"appid":70,"name":"Half-Life"}]}}`))
	})
	mux.HandleFunc("/api/appdetails", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("appids")
		if id == "620" {
			_, _ = w.Write([]byte(`{"620":{"success":true,"data":{"name":"Portal 2","short_description":"Puzzle co-op","header_image":"https://cdn.steam.test/620.jpg","genres":[{"id":"4","description":"Puzzle"}],"pc_requirements":[]}}}`))
			return
		}
		_, _ = w.Write([]byte(`{"` + id + `":{"success":false}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type reqOpt func(*http.Request)

func withToken(token string) reqOpt {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withHeader(k, v string) reqOpt {
	return func(r *http.Request) { r.Header.Set(k, v) }
}

// do sends a JSON request (or raw bytes when body is []byte) through the app.
func (s *testServer) do(t *testing.T, method, path string, body any, opts ...reqOpt) *http.Response {
	t.Helper()
	var rdr io.Reader
	contentType := ""
	switch b := body.(type) {
	case nil:
	case []byte:
		rdr = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
		contentType = fiber.MIMEApplicationJSON
	}
	req := httptest.NewRequest(method, path, rdr)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, opt := range opts {
		opt(req)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// signUp registers a user and returns the access token and profile id.
func (s *testServer) signUp(t *testing.T, username string, admin bool) (string, string) {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/auth/signup", services.SignUpRequest{
		Email:    username + "@example.com",
		Password: "hunter22",
		Username: username,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	auth := decode[services.AuthResponse](t, resp)
	if admin {
		require.NoError(t, s.db.Model(&models.Profile{}).Where("id = ?", auth.User.ID).Update("is_admin", true).Error)
	}
	return auth.AccessToken, auth.User.ID
}

func (s *testServer) createGame(t *testing.T, token string, in services.CreateGameInput) models.Game {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/games", in, withToken(token))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[models.Game](t, resp)
}
