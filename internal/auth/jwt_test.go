package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_AccessAndRefreshAreNotInterchangeable(t *testing.T) {
	svc := NewJWTService("secret", "afterus")

	access, refresh, err := svc.GenerateTokenPair("user-1", "a@b.c", "Ana", "sess-1")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "Ana", claims.Name)
	assert.Equal(t, "sess-1", claims.SessionID)

	_, err = svc.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err = svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.SessionID)

	_, err = svc.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWT_Expired(t *testing.T) {
	svc := NewJWTService("secret", "afterus")
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	access, _, err := svc.GenerateTokenPair("u", "e", "n", "s")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(access)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWT_WrongSecretOrIssuer(t *testing.T) {
	access, _, err := NewJWTService("secret", "afterus").GenerateTokenPair("u", "e", "n", "s")
	require.NoError(t, err)

	_, err = NewJWTService("other", "afterus").ValidateAccessToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewJWTService("secret", "someone-else").ValidateAccessToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewJWTService("secret", "afterus").ValidateAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractTokenFromBearer(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromBearer("Bearer abc"))
	assert.Equal(t, "", ExtractTokenFromBearer("Basic abc"))
	assert.Equal(t, "", ExtractTokenFromBearer("Bearer "))
}
