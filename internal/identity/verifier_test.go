package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boothnow-backend/config"
)

func sign(t *testing.T, secret string, claims jwt.Claims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestVerifier_HMAC(t *testing.T) {
	v, err := NewVerifier(config.AuthConfig{HMACSecret: "s3cret", Issuer: "https://clerk.example", LeewaySecs: 5})
	require.NoError(t, err)

	valid := sessionClaims{
		Email: "ada@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user_2abc",
			Issuer:    "https://clerk.example",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	testCases := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{name: "valid token", token: sign(t, "s3cret", valid)},
		{name: "wrong secret", token: sign(t, "other", valid), wantErr: true},
		{
			name: "expired",
			token: sign(t, "s3cret", sessionClaims{RegisteredClaims: jwt.RegisteredClaims{
				Subject: "user_2abc", Issuer: "https://clerk.example",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			}}),
			wantErr: true,
		},
		{
			name: "wrong issuer",
			token: sign(t, "s3cret", sessionClaims{RegisteredClaims: jwt.RegisteredClaims{
				Subject: "user_2abc", Issuer: "https://elsewhere.example",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			}}),
			wantErr: true,
		},
		{
			name: "missing subject",
			token: sign(t, "s3cret", sessionClaims{RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "https://clerk.example",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			}}),
			wantErr: true,
		},
		{name: "garbage", token: "not-a-jwt", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := v.Verify(tc.token)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user_2abc", id.Subject)
			assert.Equal(t, "ada@example.com", id.Email)
		})
	}
}

func TestNewVerifier_RequiresKey(t *testing.T) {
	_, err := NewVerifier(config.AuthConfig{})
	assert.ErrorIs(t, err, ErrNoVerificationKey)
}
