package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonhq/admin-api/internal/model"
)

func testUser() *model.User {
	return &model.User{
		Base:  model.Base{ID: uuid.New()},
		Email: "owner@salon.test",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	user := testUser()

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
}

func TestRefreshTokenUsesSeparateSecret(t *testing.T) {
	svc := NewJWTService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	user := testUser()

	refresh, err := svc.GenerateRefreshToken(user)
	require.NoError(t, err)

	_, err = svc.ValidateToken(refresh)
	assert.Error(t, err, "refresh token must not pass access validation")

	claims, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	svc := NewJWTService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	other := NewJWTService("different-secret", "refresh-secret", time.Hour, 24*time.Hour)

	token, err := other.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewJWTService("access-secret", "refresh-secret", time.Millisecond, 24*time.Hour)

	token, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
