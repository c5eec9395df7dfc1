package auth

import (
	"testing"
	"time"

	"airport_service/pkg/config"
	"airport_service/pkg/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokens() *TokenManager {
	return NewTokenManager(config.JWTConfig{Secret: "test-secret", TTL: time.Hour, Issuer: "airport_service"})
}

func TestIssueAndParse(t *testing.T) {
	tokens := newTestTokens()

	raw, err := tokens.Issue(models.User{ID: 42, IsStaff: true})
	require.NoError(t, err)

	claims, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.True(t, claims.IsStaff)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, time.Hour, tokens.TTL())
}

func TestParseRejectsExpiredToken(t *testing.T) {
	tokens := newTestTokens()
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issued }

	raw, err := tokens.Issue(models.User{ID: 1})
	require.NoError(t, err)

	tokens.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = tokens.Parse(raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseRejectsForeignTokens(t *testing.T) {
	tokens := newTestTokens()

	other := NewTokenManager(config.JWTConfig{Secret: "other-secret", TTL: time.Hour, Issuer: "airport_service"})
	raw, err := other.Issue(models.User{ID: 1})
	require.NoError(t, err)
	_, err = tokens.Parse(raw)
	assert.Error(t, err, "wrong secret")

	wrongIssuer := NewTokenManager(config.JWTConfig{Secret: "test-secret", TTL: time.Hour, Issuer: "someone-else"})
	raw, err = wrongIssuer.Issue(models.User{ID: 1})
	require.NoError(t, err)
	_, err = tokens.Parse(raw)
	assert.Error(t, err, "wrong issuer")

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": 1, "iss": "airport_service"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Parse(none)
	assert.Error(t, err, "alg none")

	_, err = tokens.Parse("not-a-jwt")
	assert.Error(t, err)
}
