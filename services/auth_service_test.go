package services

import (
	"context"
	"testing"
	"time"

	"game-hub/apperror"
	"game-hub/config"
	"game-hub/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(newTestDB(t), &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
	})
}

func TestAuthService_SignUpCreatesProfile(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	resp, err := svc.SignUp(ctx, SignUpRequest{Email: " Player@Example.com ", Password: "hunter22", Username: "player"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "player@example.com", resp.User.Email)
	assert.False(t, resp.User.IsAdmin)

	var p models.Profile
	require.NoError(t, svc.db.First(&p, "id = ?", resp.User.ID).Error)
	assert.Equal(t, "player", p.Username)
	assert.NotEqual(t, "hunter22", p.PasswordHash)

	token, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (any, error) { return []byte("test-secret"), nil })
	require.NoError(t, err)
	sub, err := token.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, sub)

	_, err = svc.SignUp(ctx, SignUpRequest{Email: "player@example.com", Password: "another1"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestAuthService_SignUpValidation(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, SignUpRequest{Email: "not-an-email", Password: "hunter22"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.SignUp(ctx, SignUpRequest{Email: "a@b.co", Password: "123"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	resp, err := svc.SignUp(ctx, SignUpRequest{Email: "nameless@b.co", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "nameless", resp.User.Username)
}

func TestAuthService_SignIn(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	_, err := svc.SignUp(ctx, SignUpRequest{Email: "p@example.com", Password: "hunter22"})
	require.NoError(t, err)

	resp, err := svc.SignIn(ctx, SignInRequest{Email: "P@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "p@example.com", resp.User.Email)

	_, err = svc.SignIn(ctx, SignInRequest{Email: "p@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.SignIn(ctx, SignInRequest{Email: "nobody@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestAuthService_RefreshRotatesAndSignOutRevokes(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	first, err := svc.SignUp(ctx, SignUpRequest{Email: "p@example.com", Password: "hunter22"})
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: first.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: first.RefreshToken})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized, "a rotated token cannot be reused")

	require.NoError(t, svc.SignOut(ctx, RefreshRequest{RefreshToken: second.RefreshToken}))
	_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: second.RefreshToken})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestAuthService_RefreshExpired(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	resp, err := svc.SignUp(ctx, SignUpRequest{Email: "p@example.com", Password: "hunter22"})
	require.NoError(t, err)

	require.NoError(t, svc.db.Model(&models.Session{}).
		Where("user_id = ?", resp.User.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}
