// Package identity verifies identity-provider session tokens.
package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"boothnow-backend/config"
)

var (
	ErrNoVerificationKey = errors.New("identity: no verification key configured")
	ErrInvalidToken      = errors.New("identity: invalid token")
)

// Identity is the authenticated caller as the identity provider sees it.
type Identity struct {
	Subject string
	Email   string
}

type sessionClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks session JWTs signed with RS256 (provider PEM key) or HS256 (shared secret).
type Verifier struct {
	keyFunc jwt.Keyfunc
	opts    []jwt.ParserOption
}

// NewVerifier builds a verifier from the auth configuration.
func NewVerifier(cfg config.AuthConfig) (*Verifier, error) {
	var keyFunc jwt.Keyfunc
	methods := []string{}

	switch {
	case cfg.PublicKeyPEM != "":
		pub, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("failed to parse public key: %w", err)
		}
		methods = append(methods, jwt.SigningMethodRS256.Alg())
		keyFunc = func(token *jwt.Token) (interface{}, error) {
			return pub, nil
		}
	case cfg.HMACSecret != "":
		secret := []byte(cfg.HMACSecret)
		methods = append(methods, jwt.SigningMethodHS256.Alg())
		keyFunc = func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		}
	default:
		return nil, ErrNoVerificationKey
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithLeeway(time.Duration(cfg.LeewaySecs) * time.Second),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	return &Verifier{keyFunc: keyFunc, opts: opts}, nil
}

// Verify parses and validates a raw token string.
func (v *Verifier) Verify(raw string) (Identity, error) {
	var claims sessionClaims
	if _, err := jwt.ParseWithClaims(raw, &claims, v.keyFunc, v.opts...); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return Identity{Subject: claims.Subject, Email: claims.Email}, nil
}
