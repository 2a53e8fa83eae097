package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParseToken(t *testing.T) {
	issuer, err := NewIssuer("test-secret-key", "cdc_zoning", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer() failed: %v", err)
	}

	token, expireAt, err := issuer.GenerateToken("admin")
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}
	if token == "" {
		t.Error("Expected non-empty token")
	}
	if time.Until(expireAt) <= 0 {
		t.Errorf("Expected expiry in the future, got %v", expireAt)
	}

	claims, err := issuer.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() failed: %v", err)
	}
	if claims.Username() != "admin" {
		t.Errorf("Expected username admin, got %s", claims.Username())
	}
	if claims.Issuer != "cdc_zoning" {
		t.Errorf("Expected issuer cdc_zoning, got %s", claims.Issuer)
	}
}

func TestParseToken_InvalidToken(t *testing.T) {
	issuer, _ := NewIssuer("test-secret-key", "cdc_zoning", time.Hour)

	if _, err := issuer.ParseToken("invalid.token.string"); err == nil {
		t.Error("ParseToken() should fail for invalid token")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	a, _ := NewIssuer("secret-a", "cdc_zoning", time.Hour)
	b, _ := NewIssuer("secret-b", "cdc_zoning", time.Hour)

	token, _, _ := a.GenerateToken("admin")
	if _, err := b.ParseToken(token); err == nil {
		t.Error("ParseToken() should fail for a token signed with another secret")
	}
}

func TestParseToken_Expired(t *testing.T) {
	issuer, _ := NewIssuer("test-secret-key", "cdc_zoning", time.Hour)
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "admin",
		Issuer:    "cdc_zoning",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-key"))

	if _, err := issuer.ParseToken(token); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("ParseToken() error = %v, want ErrTokenExpired", err)
	}
}

func TestNewIssuer_EmptySecret(t *testing.T) {
	if _, err := NewIssuer("", "cdc_zoning", time.Hour); err == nil {
		t.Error("NewIssuer() should fail without a secret")
	}
}
