package auth

import (
	"testing"

	"lotto-server/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth.JWT.Secret = "test-secret"
	cfg.Auth.JWT.AccessTokenTTL = 3600
	cfg.Auth.JWT.Issuer = "lotto-server-test"
	cfg.Lottery.SalesWindowSec = 3600
	cfg.Lottery.DrawGapSec = 600
	return cfg
}

func TestGenerateTokenRoundTrip(t *testing.T) {
	config.SetCurrent(testConfig())

	tokenString, err := GenerateToken("ops-01", RoleAdmin)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if tokenString == "" {
		t.Fatal("empty token")
	}

	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if !token.Valid {
		t.Fatal("token not valid")
	}
	if claims.Operator != "ops-01" {
		t.Errorf("operator = %q, want ops-01", claims.Operator)
	}
	if claims.Role != RoleAdmin {
		t.Errorf("role = %q, want %q", claims.Role, RoleAdmin)
	}
	if claims.Issuer != "lotto-server-test" {
		t.Errorf("issuer = %q", claims.Issuer)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Fatal("missing exp/iat")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time).Seconds(); got != 3600 {
		t.Errorf("ttl = %vs, want 3600s", got)
	}
}

func TestGenerateTokenWrongSecretRejected(t *testing.T) {
	config.SetCurrent(testConfig())

	tokenString, err := GenerateToken("ops-01", RoleUser)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	_, err = jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("another-secret"), nil
	})
	if err == nil {
		t.Fatal("expected signature verification failure")
	}
}
