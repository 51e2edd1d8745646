// Package auth implements the stateless pieces of the authentication core:
// the signed-token codec, the password one-way function, and the
// authorization policy. Nothing in this package touches storage.
package auth

import (
	"errors"
	"time"

	"github.com/avolkov/authkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenType discriminates access tokens from refresh tokens inside the
// signed claims. A token of one type never passes the gate of the other,
// even with a valid signature.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the signed claim set: registered subject/iat/exp plus the
// token-type discriminator.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"typ"`
}

// GenerateToken signs a claim set for subject with HS256. The expiry is
// now+validity; validity is a configuration input, not computed here.
func GenerateToken(subject string, typ TokenType, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		TokenType: typ,
	})

	return token.SignedString(secretKey)
}

// ParseToken verifies the signature and expiry of tokenString and checks the
// type discriminator. It returns common.ErrTokenExpired for expired tokens
// and common.ErrInvalidToken for everything else that is wrong (bad
// signature, malformed payload, wrong type); the reason is deliberately not
// surfaced any further than that.
func ParseToken(tokenString string, typ TokenType, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.TokenType != typ || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
