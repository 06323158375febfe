package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"voxadmin/internal/model"
)

func TestJWTService_AccessTokenRoundTrip(t *testing.T) {
	service := NewJWTService("test-secret", 15*time.Minute, 7*24*time.Hour)
	userID := uuid.New()

	token, err := service.GenerateAccessToken(userID, "user@example.com", model.RoleManager)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, model.RoleManager, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTService_RefreshTokenIDMatchesClaims(t *testing.T) {
	service := NewJWTService("test-secret", 15*time.Minute, 7*24*time.Hour)

	tokenID, token, err := service.GenerateRefreshToken(uuid.New(), "user@example.com", model.RoleUser)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	extracted, err := service.ExtractTokenID(token)
	assert.NoError(t, err)
	assert.Equal(t, tokenID, extracted)
}

func TestJWTService_ValidateToken_WrongSecret(t *testing.T) {
	service := NewJWTService("test-secret", 15*time.Minute, 7*24*time.Hour)
	other := NewJWTService("other-secret", 15*time.Minute, 7*24*time.Hour)

	token, err := service.GenerateAccessToken(uuid.New(), "user@example.com", model.RoleUser)
	assert.NoError(t, err)

	claims, err := other.ValidateToken(token)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTService_ValidateToken_Expired(t *testing.T) {
	service := NewJWTService("test-secret", -time.Minute, 7*24*time.Hour)

	token, err := service.GenerateAccessToken(uuid.New(), "user@example.com", model.RoleUser)
	assert.NoError(t, err)

	claims, err := service.ValidateToken(token)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTService_ValidateToken_Garbage(t *testing.T) {
	service := NewJWTService("test-secret", 15*time.Minute, 7*24*time.Hour)

	claims, err := service.ValidateToken("not-a-token")
	assert.Error(t, err)
	assert.Nil(t, claims)
}
