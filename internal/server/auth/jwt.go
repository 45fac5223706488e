// Package auth holds the credential primitives of the server: the session
// token issuer, the password hasher and the authenticated principal with its
// capability checks.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the token payload: the account identity plus the standard
// jti/iat claims. There is no exp claim: a token lives until it
// is revoked from the session registry.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string `json:"_id"`
}

// TokenIssuer signs and verifies bearer tokens with a single process-wide
// HS256 secret. It is safe for concurrent use.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
	newID  func() string
	parser *jwt.Parser
}

// NewTokenIssuer returns an issuer bound to secret. The secret is copied and
// never changes afterwards.
func NewTokenIssuer(secret []byte) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	return &TokenIssuer{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
		newID:  uuid.NewString,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithStrictDecoding(),
		),
	}, nil
}

// Issue mints a token for accountID. Each call yields a distinct token.
func (i *TokenIssuer) Issue(accountID string) (string, error) {
	if accountID == "" {
		return "", errors.New("account id must not be empty")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       i.newID(),
			IssuedAt: jwt.NewNumericDate(i.now()),
		},
		AccountID: accountID,
	})

	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}

	return tokenString, nil
}

// Verify checks the signature of tokenString and returns the account id it
// was issued for. It does not know whether the token has been revoked.
// Every failure matches common.ErrInvalidToken.
func (i *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := i.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.AccountID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.AccountID, nil
}
