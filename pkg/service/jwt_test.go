package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "service-crm/pkg/errors"
)

func TestJWT_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, 24*time.Hour)

	access, refresh, err := svc.GenerateTokens(7, "coordinator")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.UserID)
	assert.Equal(t, "coordinator", claims.Role)
	assert.False(t, claims.IsRefreshToken)

	claims, err = svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.True(t, claims.IsRefreshToken)
}

func TestJWT_Expired(t *testing.T) {
	svc := NewJWTService("secret", -time.Minute, time.Hour)
	access, _, err := svc.GenerateTokens(1, "admin")
	require.NoError(t, err)

	_, err = svc.ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestJWT_WrongSecret(t *testing.T) {
	access, _, err := NewJWTService("a", time.Hour, time.Hour).GenerateTokens(1, "admin")
	require.NoError(t, err)

	_, err = NewJWTService("b", time.Hour, time.Hour).ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
