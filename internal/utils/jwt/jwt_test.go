package jwt

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("42", "user", "secret", time.Minute)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	curatorID, curatorType, err := ExtractCuratorFromToken(token, "secret")
	if err != nil {
		t.Fatalf("Failed to extract curator: %v", err)
	}
	if curatorID != "42" || curatorType != "user" {
		t.Errorf("Expected 42/user, got %s/%s", curatorID, curatorType)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("42", "user", "secret", time.Minute)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, _, err := ExtractCuratorFromToken(token, "other-secret"); err == nil {
		t.Fatal("Expected token signed with another secret to be rejected")
	}
}

func TestExpiredToken(t *testing.T) {
	token, err := GenerateToken("42", "user", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, _, err := ExtractCuratorFromToken(token, "secret"); err == nil {
		t.Fatal("Expected expired token to be rejected")
	}
}
