// Package auth signs and verifies the HS256 tokens handed out at login.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/storekeeper/internal/common"
	"github.com/dmitrijs2005/storekeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims embeds the user payload next to the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	models.Payload
}

// Signer issues and checks tokens. Access and refresh tokens share the
// format and differ only in secret and lifetime.
type Signer interface {
	Sign(payload models.Payload, secret string, expiresIn time.Duration) (string, error)
	Verify(token string, secret string) (*models.Payload, error)
}

type HS256Signer struct {
	now func() time.Time
}

func NewHS256Signer() *HS256Signer {
	return &HS256Signer{now: time.Now}
}

func (s *HS256Signer) Sign(payload models.Payload, secret string, expiresIn time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   payload.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
		Payload: payload,
	})

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify checks signature and expiry. An expired token yields
// common.ErrTokenExpired, anything else wrong common.ErrInvalidToken.
func (s *HS256Signer) Verify(tokenString string, secret string) (*models.Payload, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	p := claims.Payload
	return &p, nil
}
