package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskboard/taskboard-backend/internal/domain"
)

// TokenValidity is how long an issued session token stays usable. There is no
// revocation list; tokens die only by expiry or client-side discard.
const TokenValidity = 7 * 24 * time.Hour

// Claims carried in every session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// TokenIssuer signs and verifies stateless session tokens.
type TokenIssuer struct {
	secret   []byte
	validity time.Duration
}

func NewTokenIssuer(secret []byte) *TokenIssuer {
	return &TokenIssuer{secret: secret, validity: TokenValidity}
}

// Issue returns a signed HS256 token embedding the user's id and email.
func (i *TokenIssuer) Issue(userID, email string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
		},
		UserID: userID,
		Email:  email,
	})
	return token.SignedString(i.secret)
}

// Verify parses and validates a token string. Malformed, badly signed and
// expired tokens all fail with domain.ErrInvalidToken; callers are not told
// which of the three it was.
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
