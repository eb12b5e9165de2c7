package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenPairRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	pair, err := GenerateTokenPair("user-1", "jane@example.com", "editor")
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)

	claims, err := VerifyToken(pair.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, "editor", claims.Role)

	claims, err = VerifyToken(pair.RefreshToken, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestVerifyTokenRejectsWrongType(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	pair, err := GenerateTokenPair("user-1", "jane@example.com", "viewer")
	require.NoError(t, err)

	// A refresh token must never pass as an access token.
	_, err = VerifyToken(pair.RefreshToken, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = VerifyToken(pair.AccessToken, TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsTampering(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	pair, err := GenerateTokenPair("user-1", "jane@example.com", "viewer")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "other-secret")
	_, err = VerifyToken(pair.AccessToken, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	t.Setenv("JWT_SECRET", "test-secret")
	_, err = VerifyToken(pair.AccessToken+"x", TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
