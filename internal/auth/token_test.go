package auth

import (
	"testing"
)

func TestGenerateAndValidate(t *testing.T) {
	mgr := NewTokenManager("test-secret")

	token, err := mgr.Generate("player-123")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	playerID, err := mgr.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if playerID != "player-123" {
		t.Errorf("player ID = %s, want player-123", playerID)
	}
}

func TestValidateRejectsBadTokens(t *testing.T) {
	mgr := NewTokenManager("test-secret")

	if _, err := mgr.Validate(""); err != ErrMissingToken {
		t.Errorf("empty token error = %v, want ErrMissingToken", err)
	}
	if _, err := mgr.Validate("not-a-token"); err != ErrInvalidToken {
		t.Errorf("garbage token error = %v, want ErrInvalidToken", err)
	}

	// A token signed with a different secret must not validate.
	other := NewTokenManager("other-secret")
	token, err := other.Generate("player-123")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := mgr.Validate(token); err != ErrInvalidToken {
		t.Errorf("wrong-secret token error = %v, want ErrInvalidToken", err)
	}
}
