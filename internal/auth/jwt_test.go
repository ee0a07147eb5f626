package auth

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokens("test-secret")

	raw, err := tokens.GenerateClientToken("sess-1")
	if err != nil {
		t.Fatalf("GenerateClientToken: %v", err)
	}

	claims, err := tokens.ValidateToken(raw)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.SessionID != "sess-1" {
		t.Errorf("SessionID = %q, want %q", claims.SessionID, "sess-1")
	}
	if claims.Role != "client" {
		t.Errorf("Role = %q, want %q", claims.Role, "client")
	}
}

func TestTokenWrongSecret(t *testing.T) {
	raw, err := NewTokens("secret-a").GenerateClientToken("sess-1")
	if err != nil {
		t.Fatalf("GenerateClientToken: %v", err)
	}

	if _, err := NewTokens("secret-b").ValidateToken(raw); err == nil {
		t.Error("expected validation failure with wrong secret")
	}
}

func TestTokensDisabledWithoutSecret(t *testing.T) {
	if NewTokens("").Enabled() {
		t.Error("Enabled() = true with empty secret")
	}
	if !NewTokens("x").Enabled() {
		t.Error("Enabled() = false with secret set")
	}
}
