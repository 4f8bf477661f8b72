package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"game-hub/models"
)

// fakeHub is an in-memory stand-in for the hub API.
type fakeHub struct {
	*httptest.Server

	mu        sync.Mutex
	games     []models.Game
	comments  map[string][]models.Comment
	requests  atomic.Int32
	lastQuery string
	uploaded  []byte
	removed   []string
	created   *CreateGameRequest

	failList     bool
	failDownload bool
	rejectCreate bool
	listHook     func(r *http.Request) // runs before a list is answered
}

func newFakeHub(t *testing.T) *fakeHub {
	t.Helper()
	h := &fakeHub{comments: map[string][]models.Comment{}}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/games", func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		hook := h.listHook
		h.mu.Unlock()
		if hook != nil {
			hook(r)
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		h.lastQuery = r.URL.RawQuery
		if h.failList {
			writeErr(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		cat := r.URL.Query().Get("category")
		out := []models.Game{}
		for _, g := range h.games {
			if cat == "" || string(g.Category) == cat {
				out = append(out, g)
			}
		}
		writeJSON(w, http.StatusOK, out)
	})

	mux.HandleFunc("GET /api/games/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		defer h.mu.Unlock()
		for _, g := range h.games {
			if g.ID == r.PathValue("id") {
				writeJSON(w, http.StatusOK, g)
				return
			}
		}
		writeErr(w, http.StatusNotFound, "game not found with id "+r.PathValue("id"))
	})

	mux.HandleFunc("POST /api/games/{id}/download", func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.failDownload {
			writeErr(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		for i := range h.games {
			if h.games[i].ID == r.PathValue("id") {
				h.games[i].DownloadCount++
				writeJSON(w, http.StatusOK, DownloadResult{DownloadURL: h.games[i].FileURL, DownloadCount: h.games[i].DownloadCount})
				return
			}
		}
		writeErr(w, http.StatusNotFound, "not found")
	})

	mux.HandleFunc("GET /api/games/{id}/comments", func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		defer h.mu.Unlock()
		list := h.comments[r.PathValue("id")]
		if list == nil {
			list = []models.Comment{}
		}
		writeJSON(w, http.StatusOK, list)
	})

	mux.HandleFunc("POST /api/games/{id}/comments", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Content string `json:"content"`
			Rating  int    `json:"rating"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		h.mu.Lock()
		defer h.mu.Unlock()
		id := r.PathValue("id")
		c := models.Comment{ID: fmt.Sprintf("c%d", len(h.comments[id])), GameID: id, Content: in.Content, Rating: in.Rating}
		h.comments[id] = append([]models.Comment{c}, h.comments[id]...)
		writeJSON(w, http.StatusCreated, c)
	})

	mux.HandleFunc("POST /api/games", func(w http.ResponseWriter, r *http.Request) {
		var in CreateGameRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.rejectCreate {
			writeErr(w, http.StatusBadRequest, "invalid category")
			return
		}
		h.created = &in
		g := models.Game{ID: "new", Title: in.Title, Description: in.Description, Category: in.Category, FileURL: in.FileURL}
		if in.ImageURL != "" {
			g.ImageURL = &in.ImageURL
		}
		writeJSON(w, http.StatusCreated, g)
	})

	mux.HandleFunc("POST /api/storage/images", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "image/") {
			writeErr(w, http.StatusBadRequest, "file must be an image")
			return
		}
		body, _ := io.ReadAll(r.Body)
		h.mu.Lock()
		h.uploaded = body
		h.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]string{
			"key": "u_1_" + r.Header.Get("X-File-Name"),
			"url": "http://hub.test/uploads/game-images/u_1_" + r.Header.Get("X-File-Name"),
		})
	})

	mux.HandleFunc("DELETE /api/storage/images/{key}", func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		h.removed = append(h.removed, r.PathValue("key"))
		h.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /api/metadata/search", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []SteamApp{{AppID: 620, Name: "Portal 2"}, {AppID: 400, Name: "Portal"}})
	})
	mux.HandleFunc("POST /api/metadata/resolve", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ResolvedApp{Success: true, AppID: 620, Title: "Portal 2", Description: "Short", ImageURL: "https://cdn.test/620.jpg", Category: "Action"})
	})
	mux.HandleFunc("POST /api/metadata/details", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			AppID int `json:"appId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.AppID != 620 && in.AppID != 400 {
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Game details not found"})
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"about_the_game":"<p>About</p>","short_description":"Co-op puzzles",
			"screenshots":[{"id":0,"url":"https://cdn.test/ss0.jpg"}],
			"pc_requirements":{"minimum":"min","recommended":"rec"},
			"header_image":"https://cdn.test/header.jpg",
			"genres":[{"id":"4","description":"Bulmaca"}]}`))
	})

	h.Server = httptest.NewServer(countRequests(&h.requests, mux))
	t.Cleanup(h.Close)
	return h
}

func (h *fakeHub) setGames(games ...models.Game) {
	h.mu.Lock()
	h.games = games
	h.mu.Unlock()
}

func (h *fakeHub) set(fn func(h *fakeHub)) {
	h.mu.Lock()
	fn(h)
	h.mu.Unlock()
}

func (h *fakeHub) query() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastQuery
}

func (h *fakeHub) uploadedBytes() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.uploaded
}

func (h *fakeHub) removedKeys() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.removed
}

func (h *fakeHub) createdGame() *CreateGameRequest {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.created
}

func countRequests(n *atomic.Int32, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n.Add(1)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// recordingOpener remembers the links it was asked to open.
type recordingOpener struct {
	mu    sync.Mutex
	links []string
}

func (o *recordingOpener) Open(url string) error {
	o.mu.Lock()
	o.links = append(o.links, url)
	o.mu.Unlock()
	return nil
}
