package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"game-hub/models"
)

// TokenStore persists the credential pair between runs.
type TokenStore interface {
	Load() (*Tokens, error) // nil, nil when nothing is stored
	Save(t *Tokens) error
	Clear() error
}

// FileTokenStore keeps tokens as JSON in a file only the user can read.
type FileTokenStore struct {
	Path string
}

// DefaultTokenPath returns ~/.gamehub/session.json.
func DefaultTokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".gamehub", "session.json"), nil
}

func (s FileTokenStore) Load() (*Tokens, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	var t Tokens
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	if t.AccessToken == "" && t.RefreshToken == "" {
		return nil, nil
	}
	return &t, nil
}

func (s FileTokenStore) Save(t *Tokens) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal tokens: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func (s FileTokenStore) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// MemoryTokenStore is a TokenStore for tests and short-lived processes.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens *Tokens
}

func (s *MemoryTokenStore) Load() (*Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens == nil {
		return nil, nil
	}
	t := *s.tokens
	return &t, nil
}

func (s *MemoryTokenStore) Save(t *Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.tokens = &cp
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	s.tokens = nil
	s.mu.Unlock()
	return nil
}

// Session is the client-side identity: who is signed in, whether that is
// still being determined, and whether they are an admin.
type Session struct {
	api   *Client
	store TokenStore
	log   *slog.Logger

	mu      sync.RWMutex
	loading bool
	user    *models.Profile
	tokens  *Tokens
}

func NewSession(api *Client, store TokenStore) *Session {
	return &Session{api: api, store: store, log: slog.Default(), loading: true}
}

// Init restores a saved session. An expired access token is refreshed once;
// if that fails the saved tokens are discarded and the session is anonymous.
func (s *Session) Init(ctx context.Context) error {
	defer s.setLoading(false)

	tokens, err := s.store.Load()
	if err != nil {
		s.log.Warn("failed to load saved session", "error", err)
		return nil
	}
	if tokens == nil {
		return nil
	}

	s.api.SetToken(tokens.AccessToken)
	user, err := s.api.CurrentUser(ctx)
	if IsStatus(err, http.StatusUnauthorized) && tokens.RefreshToken != "" {
		var resp *AuthResponse
		resp, err = s.api.Refresh(ctx, tokens.RefreshToken)
		if err == nil {
			s.adopt(resp)
			return nil
		}
	}
	if err != nil {
		if IsStatus(err, http.StatusUnauthorized) {
			s.reset()
			return nil
		}
		s.api.SetToken("")
		return fmt.Errorf("restore session: %w", err)
	}

	s.mu.Lock()
	s.user = user
	s.tokens = tokens
	s.mu.Unlock()
	return nil
}

func (s *Session) SignIn(ctx context.Context, email, password string) error {
	resp, err := s.api.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	s.adopt(resp)
	return nil
}

func (s *Session) SignUp(ctx context.Context, email, password, username string) error {
	resp, err := s.api.SignUp(ctx, email, password, username)
	if err != nil {
		return err
	}
	s.adopt(resp)
	return nil
}

// SignOut always clears local state. A failed server revoke is only logged.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.RLock()
	tokens := s.tokens
	s.mu.RUnlock()

	if tokens != nil && tokens.RefreshToken != "" {
		if err := s.api.SignOut(ctx, tokens.RefreshToken); err != nil {
			s.log.Warn("sign out request failed", "error", err)
		}
	}
	s.reset()
	return nil
}

// Reload re-reads the profile, e.g. after the admin flag was changed.
func (s *Session) Reload(ctx context.Context) error {
	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return nil
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// User returns the signed-in profile or nil.
func (s *Session) User() *models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.IsAdmin
}

func (s *Session) adopt(resp *AuthResponse) {
	tokens := resp.Tokens
	s.api.SetToken(tokens.AccessToken)
	if err := s.store.Save(&tokens); err != nil {
		s.log.Warn("failed to save session", "error", err)
	}
	s.mu.Lock()
	s.user = resp.User
	s.tokens = &tokens
	s.loading = false
	s.mu.Unlock()
}

func (s *Session) reset() {
	s.api.SetToken("")
	if err := s.store.Clear(); err != nil {
		s.log.Warn("failed to clear saved session", "error", err)
	}
	s.mu.Lock()
	s.user = nil
	s.tokens = nil
	s.mu.Unlock()
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}
