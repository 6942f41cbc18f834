package util

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	secret := "test-secret"

	token, err := GenerateToken(secret, 42, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user id: expected 42, got %d", claims.UserID)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, _ := GenerateToken("secret-a", 1, time.Hour)
	if _, err := ParseToken("secret-b", token); err == nil {
		t.Error("token signed with a different secret should not parse")
	}
}

func TestParseTokenExpired(t *testing.T) {
	token, _ := GenerateToken("secret", 1, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	if _, err := ParseToken("secret", token); err == nil {
		t.Error("expired token should not parse")
	}
}
