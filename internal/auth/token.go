// Package auth authenticates bearer tokens and resolves a caller's place in
// an interview.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mockorbit/interviewd/internal/domain"
)

//go:generate mockgen -destination=mocks/token.go -package=mocks . TokenValidator

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// TokenValidator checks a bearer token and returns the user it was issued to.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (domain.UserID, error)
}

// Claims are the claims issued by the REST API.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTValidator validates HMAC signed tokens against a shared secret.
type JWTValidator struct {
	secret []byte
	parser *jwt.Parser
}

func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})),
	}
}

func (v *JWTValidator) Validate(_ context.Context, token string) (domain.UserID, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	var claims Claims
	_, err := v.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	uid, err := domain.ParseUserID(claims.UserID)
	if err != nil {
		return "", fmt.Errorf("%w: user_id claim: %v", ErrInvalidToken, err)
	}
	return uid, nil
}

// Sign issues a token for uid. Used by tests and the dev tooling.
func (v *JWTValidator) Sign(uid domain.UserID, claims jwt.RegisteredClaims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: string(uid), RegisteredClaims: claims})
	return t.SignedString(v.secret)
}
