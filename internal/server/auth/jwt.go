// Package auth contains the stateless credential primitives of the server:
// access token signing, password hashing, the password policy and opaque
// token generation.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access token claims. Subject always equals UserID.
type Claims struct {
	jwt.RegisteredClaims
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
}

// AccessTokenIssuer signs and verifies short-lived access tokens.
type AccessTokenIssuer interface {
	Issue(c Claims) (string, error)
	Parse(token string) (*Claims, error)
}

// JWTIssuer issues HS256 JSON Web Tokens.
type JWTIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTIssuer(secret []byte, issuer string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: secret, issuer: issuer, ttl: ttl, now: time.Now}
}

// Issue fills the registered claims (sub, iss, iat, exp) and signs the token.
func (j *JWTIssuer) Issue(c Claims) (string, error) {
	if c.UserID == "" {
		return "", errors.New("user id is required")
	}

	now := j.now()
	c.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   c.UserID,
		Issuer:    j.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature, algorithm, issuer and expiry of token.
// Expired tokens yield common.ErrTokenExpired, anything else that fails
// verification yields common.ErrInvalidToken.
func (j *JWTIssuer) Parse(token string) (*Claims, error) {
	claims := &Claims{}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return j.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !parsed.Valid || claims.UserID == "" || claims.Subject != claims.UserID {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
