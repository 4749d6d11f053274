package app

import (
	"testing"
	"time"
)

func TestShareTokenRoundTrip(t *testing.T) {
	svc := NewShareTokenService("test-secret", "dominoes", time.Hour)

	token, err := svc.GenerateToken("u1", "match-42")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	matchID, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if matchID != "match-42" {
		t.Fatalf("match = %s, want match-42", matchID)
	}
}

func TestShareTokenWrongSecretRejected(t *testing.T) {
	signer := NewShareTokenService("secret-a", "dominoes", time.Hour)
	verifier := NewShareTokenService("secret-b", "dominoes", time.Hour)

	token, err := signer.GenerateToken("u1", "match-42")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.VerifyToken(token); err == nil {
		t.Fatalf("token signed with a different secret must not verify")
	}
}

func TestShareTokenIssuerMismatchRejected(t *testing.T) {
	signer := NewShareTokenService("test-secret", "dominoes", time.Hour)
	verifier := NewShareTokenService("test-secret", "other-game", time.Hour)

	token, err := signer.GenerateToken("u1", "match-42")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.VerifyToken(token); err == nil {
		t.Fatalf("token from another issuer must not verify")
	}
}

func TestShareTokenIncompleteConfig(t *testing.T) {
	svc := NewShareTokenService("", "dominoes", time.Hour)
	if _, err := svc.GenerateToken("u1", "match-42"); err == nil {
		t.Fatalf("empty secret must not sign")
	}

	svc = NewShareTokenService("test-secret", "dominoes", time.Hour)
	if _, err := svc.GenerateToken("", "match-42"); err == nil {
		t.Fatalf("missing user must be rejected")
	}
	if _, err := svc.GenerateToken("u1", ""); err == nil {
		t.Fatalf("missing match must be rejected")
	}

	if _, err := svc.VerifyToken("not-a-token"); err == nil {
		t.Fatalf("malformed token must not verify")
	}
}
