package utils

import (
	"testing"
	"time"

	"Hacknox/models"
)

func TestGenerateAndParseToken(t *testing.T) {
	InitJWT("unit-secret", time.Hour)
	user := models.User{ID: 42, Email: "judge@example.com", Role: models.RoleJudge}

	token, err := GenerateToken(user)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if claims.UserID != 42 || claims.Role != models.RoleJudge || claims.ID == "" {
		t.Errorf("Unexpected claims: %+v", claims)
	}

	InitJWT("other-secret", time.Hour)
	if _, err := ParseToken(token); err == nil {
		t.Errorf("Expected a token signed with another secret to be rejected")
	}
}

func TestTokenIDsAreUnique(t *testing.T) {
	InitJWT("unit-secret", time.Hour)
	user := models.User{ID: 1, Role: models.RoleParticipant}
	a, _ := GenerateToken(user)
	b, _ := GenerateToken(user)
	ca, _ := ParseToken(a)
	cb, _ := ParseToken(b)
	if ca.ID == cb.ID {
		t.Errorf("Expected distinct token ids, got %s twice", ca.ID)
	}
}
