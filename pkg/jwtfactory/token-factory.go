package jwtfactory

import (
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
)

const (
	RoleClaimName = "role"
	AdminRole     = "admin"
)

type TokenFactory struct {
	tokenAuth           *jwtauth.JWTAuth
	tokenExpirationTime time.Duration
	now                 func() time.Time
}

func New(tokenAuth *jwtauth.JWTAuth, tokenExpirationTime time.Duration) *TokenFactory {
	return &TokenFactory{
		tokenAuth:           tokenAuth,
		tokenExpirationTime: tokenExpirationTime,
		now:                 time.Now,
	}
}

// GenerateAdmin issues a token accepted by the catalog write endpoints.
func (tf *TokenFactory) GenerateAdmin(subject string) (string, error) {
	return tf.Generate(map[string]any{
		"sub":         subject,
		RoleClaimName: AdminRole,
	})
}

func (tf *TokenFactory) Generate(extraClaims map[string]any) (string, error) {
	timeNow := tf.now()
	claims := map[string]any{
		"exp": timeNow.Add(tf.tokenExpirationTime).Unix(),
		"iat": timeNow.Unix(),
	}
	for k, v := range extraClaims {
		claims[k] = v
	}
	_, tokenString, err := tf.tokenAuth.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("failed to encode token: %w", err)
	}
	return tokenString, nil
}
