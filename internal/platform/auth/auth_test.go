package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"greekgeeks/internal/platform/config"
	"greekgeeks/internal/platform/models"
)

func newTokenService() *TokenService {
	return NewTokenService(config.JWTConfig{
		Secret:          "test-secret",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	})
}

func TestTokenService(t *testing.T) {
	svc := newTokenService()

	access, err := svc.GenerateAccessToken("usr_1", "a@example.com")
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken("usr_1")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, "usr_1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)

	_, err = svc.ValidateToken(refresh)
	assert.Error(t, err, "refresh token must not authenticate requests")

	claims, err = svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "usr_1", claims.Subject)

	_, err = svc.ValidateRefreshToken(access)
	assert.Error(t, err)

	other := NewTokenService(config.JWTConfig{Secret: "other", AccessTokenTTL: time.Minute})
	_, err = other.ValidateToken(access)
	assert.Error(t, err)
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "s", AccessTokenTTL: -time.Minute})
	token, err := svc.GenerateAccessToken("usr_1", "a@example.com")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func newVerificationService() *VerificationService {
	return NewVerificationService(config.VerificationConfig{
		Secret:  "verify-secret",
		TTL:     time.Hour,
		BaseURL: "https://app.greekgeeks.com",
	})
}

func TestVerificationService(t *testing.T) {
	svc := newVerificationService()
	user := &models.User{ID: "usr_1", PasswordHash: "hash"}

	uidb64, token, err := svc.Generate(user)
	require.NoError(t, err)

	userID, err := svc.Subject(uidb64, token)
	require.NoError(t, err)
	assert.Equal(t, "usr_1", userID)
	assert.NoError(t, svc.Check(user, token))

	assert.Equal(t, "https://app.greekgeeks.com/verify?uidb64="+uidb64+"&token="+token, svc.URL(uidb64, token))

	t.Run("bound to inactive state", func(t *testing.T) {
		active := *user
		active.IsActive = true
		assert.ErrorIs(t, svc.Check(&active, token), ErrInvalidVerification)
	})

	t.Run("bound to password", func(t *testing.T) {
		changed := *user
		changed.PasswordHash = "other"
		assert.ErrorIs(t, svc.Check(&changed, token), ErrInvalidVerification)
	})

	t.Run("uid mismatch", func(t *testing.T) {
		_, err := svc.Subject(EncodeUID("usr_2"), token)
		assert.ErrorIs(t, err, ErrInvalidVerification)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Subject("!!!", token)
		assert.ErrorIs(t, err, ErrInvalidVerification)
		_, err = svc.Subject(uidb64, "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidVerification)
	})

	t.Run("access token is not a verification token", func(t *testing.T) {
		access, err := NewTokenService(config.JWTConfig{Secret: "verify-secret", AccessTokenTTL: time.Minute}).
			GenerateAccessToken("usr_1", "a@example.com")
		require.NoError(t, err)
		_, err = svc.Subject(uidb64, access)
		assert.ErrorIs(t, err, ErrInvalidVerification)
	})
}

func TestVerificationService_Expired(t *testing.T) {
	svc := newVerificationService()
	user := &models.User{ID: "usr_1", PasswordHash: "hash"}

	uidb64, token, err := svc.Generate(user)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Subject(uidb64, token)
	assert.ErrorIs(t, err, ErrInvalidVerification)
}

func TestUIDRoundTrip(t *testing.T) {
	id, err := DecodeUID(EncodeUID("usr_abc"))
	require.NoError(t, err)
	assert.Equal(t, "usr_abc", id)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
}
