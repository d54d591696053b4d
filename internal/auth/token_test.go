package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTValidator(t *testing.T) {
	v := NewJWTValidator("s3cret")
	now := time.Now()

	good, err := v.Sign("u1", jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	uid, err := v.Validate(context.Background(), good)
	if err != nil || uid != "u1" {
		t.Fatalf("want u1, got %q err=%v", uid, err)
	}

	expired, _ := v.Sign("u1", jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour))})
	if _, err := v.Validate(context.Background(), expired); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expired: want ErrTokenExpired, got %v", err)
	}

	other, _ := NewJWTValidator("other").Sign("u1", jwt.RegisteredClaims{})
	if _, err := v.Validate(context.Background(), other); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret: want ErrInvalidToken, got %v", err)
	}

	if _, err := v.Validate(context.Background(), ""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("empty: want ErrInvalidToken, got %v", err)
	}
	if _, err := v.Validate(context.Background(), "not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage: want ErrInvalidToken, got %v", err)
	}
}

func TestJWTValidatorRejectsNone(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u1"})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewJWTValidator("s3cret").Validate(context.Background(), s); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

func TestJWTValidatorMissingClaim(t *testing.T) {
	v := NewJWTValidator("s3cret")
	s, _ := v.Sign("", jwt.RegisteredClaims{})
	if _, err := v.Validate(context.Background(), s); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}
