package auth

import (
	"testing"
	"time"
)

func TestJWT_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, err := svc.GenerateToken(42, "alice", "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "alice" || claims.Role != "admin" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestJWT_RejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", time.Hour).GenerateToken(1, "bob", "viewer")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := NewJWTService("secret-b", time.Hour).ValidateToken(token); err == nil {
		t.Error("expected validation failure with different secret")
	}
}

func TestJWT_RejectsExpired(t *testing.T) {
	svc := NewJWTService("test-secret", -time.Minute)
	token, err := svc.GenerateToken(1, "bob", "viewer")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("expected validation failure for expired token")
	}
}

func TestJWT_RejectsGarbage(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	if _, err := svc.ValidateToken("not.a.token"); err == nil {
		t.Error("expected validation failure for malformed token")
	}
}

func TestPassword_HashAndCheck(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter2" {
		t.Error("hash equals plaintext")
	}
	if !CheckPassword("hunter2", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("wrong", hash) {
		t.Error("wrong password accepted")
	}
}
