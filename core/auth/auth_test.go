package auth

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret-password", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "secret-password" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPasswordHash("secret-password", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong-password", hash) {
		t.Error("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	userID, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if userID != 42 {
		t.Errorf("got user id %d, want 42", userID)
	}
}

func TestParseTokenRejectsBadInput(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	if _, err := m.ParseToken("not-a-token"); err == nil {
		t.Error("garbage token accepted")
	}

	other := NewTokenManager("other-secret", time.Hour)
	token, err := other.GenerateToken(7)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := m.ParseToken(token); err == nil {
		t.Error("token signed with another secret accepted")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute)
	token, err := m.GenerateToken(7)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := m.ParseToken(token); err == nil {
		t.Error("expired token accepted")
	}
}
