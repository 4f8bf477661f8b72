package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"game-hub/apperror"
	"game-hub/config"
	"game-hub/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = apperror.Unauthorized("invalid email or password")
	ErrInvalidToken       = apperror.Unauthorized("invalid or expired refresh token")
)

const minPasswordLength = 6

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresAt    time.Time       `json:"expires_at"`
	User         *models.Profile `json:"user"`
}

// SignUp creates the identity and its profile together.
func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.ValidationFailed("email", "a valid email is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperror.ValidationFailed("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = strings.Split(email, "@")[0]
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Profile{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("auth.SignUp: %w", err)
	}
	if existing > 0 {
		return nil, apperror.Conflict("email", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &models.Profile{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, fmt.Errorf("auth.SignUp: %w", err)
	}
	return s.issue(ctx, profile)
}

func (s *AuthService) SignIn(ctx context.Context, req SignInRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth.SignIn: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, &profile)
}

// Refresh rotates a refresh token: the old one is revoked and a new pair issued.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	db := s.db.WithContext(ctx)

	var stored models.Session
	if err := db.Where("token_hash = ? AND revoked = ?", hashToken(req.RefreshToken), false).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}
	if err := db.Model(&stored).Update("revoked", true).Error; err != nil {
		return nil, fmt.Errorf("auth.Refresh: %w", err)
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	var profile models.Profile
	if err := db.First(&profile, "id = ?", stored.UserID).Error; err != nil {
		return nil, ErrInvalidToken
	}
	return s.issue(ctx, &profile)
}

// SignOut revokes the refresh token. Unknown tokens are not an error.
func (s *AuthService) SignOut(ctx context.Context, req RefreshRequest) error {
	return s.db.WithContext(ctx).Model(&models.Session{}).
		Where("token_hash = ?", hashToken(req.RefreshToken)).
		Update("revoked", true).Error
}

func (s *AuthService) issue(ctx context.Context, profile *models.Profile) (*AuthResponse, error) {
	expiresAt := time.Now().Add(s.cfg.JWTAccessExpiry)
	claims := jwt.MapClaims{
		"sub":   profile.ID,
		"email": profile.Email,
		"iat":   time.Now().Unix(),
		"exp":   expiresAt.Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	refresh := base64.URLEncoding.EncodeToString(raw)

	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    profile.ID,
		TokenHash: hashToken(refresh),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		User:         profile,
	}, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
