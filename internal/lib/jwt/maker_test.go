package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTMaker_GenerateAndParseToken(t *testing.T) {
	tokenTTL := 15 * time.Minute
	maker := NewJWTMaker("test_secret_key_1234567890", tokenTTL)

	tests := []struct {
		name     string
		username string
		role     string
		uid      string
	}{
		{name: "studio manager", username: "manager", role: "admin", uid: "7b0c1a52-3f4e-4b8a-9f4e-0d1c2b3a4f5e"},
		{name: "front desk", username: "frontdesk", role: "staff", uid: "a1e2c3d4-0000-4000-8000-000000000001"},
		{name: "email username", username: "coach@studio.com", role: "staff", uid: "a1e2c3d4-0000-4000-8000-000000000002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.username, tt.role, tt.uid)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)

			assert.Equal(t, tt.username, claims.Username)
			assert.Equal(t, tt.role, claims.Role)
			assert.Equal(t, tt.uid, claims.UserUID)
			assert.Equal(t, tt.uid, claims.Subject)
			assert.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt.Time, 2*time.Second)
		})
	}
}

func TestJWTMaker_ParseToken_InvalidTokens(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	maker := NewJWTMaker(secretKey, 15*time.Minute)

	validToken, err := maker.GenerateToken("manager", "admin", "uid-1")
	require.NoError(t, err)

	foreignIssuer := jwt.NewWithClaims(jwt.SigningMethodHS256, CustomClaims{
		Username: "manager",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	foreignToken, err := foreignIssuer.SignedString([]byte(secretKey))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "malformed token", token: "invalid.token.here"},
		{name: "expired token", token: generate(t, NewJWTMaker(secretKey, -time.Hour))},
		{name: "wrong secret key", token: generate(t, NewJWTMaker("wrong_secret_key", time.Hour))},
		{name: "tampered token", token: validToken + "tampered"},
		{name: "foreign issuer", token: foreignToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidToken))
			assert.Nil(t, claims)
		})
	}
}

func TestJWTMaker_TokenExpiration(t *testing.T) {
	maker := NewJWTMaker("test_secret_key", time.Minute)
	issued := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	maker.now = func() time.Time { return issued }

	token, err := maker.GenerateToken("manager", "admin", "uid-1")
	require.NoError(t, err)

	_, err = maker.ParseToken(token)
	require.NoError(t, err)

	maker.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = maker.ParseToken(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func generate(t *testing.T, maker *MakerImpl) string {
	token, err := maker.GenerateToken("manager", "admin", "uid-1")
	require.NoError(t, err)
	return token
}
