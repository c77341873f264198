package models_test

import (
	"testing"

	"Hacknox/models"
	"Hacknox/testutil"
)

func TestUserPasswordHook(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateUser(t, db, models.RoleParticipant, "hook@example.com")

	var stored models.User
	if err := db.First(&stored, user.ID).Error; err != nil {
		t.Fatalf("Failed to load user: %v", err)
	}
	if stored.Password == "password123" || !stored.CheckPassword("password123") {
		t.Fatalf("Expected a bcrypt hash of the password, got %q", stored.Password)
	}

	var target models.User
	if err := db.Model(&target).Where("id = ?", user.ID).Updates(map[string]interface{}{"city": "Pune"}).Error; err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if target.Password != "" {
		t.Errorf("Expected a profile update not to hash anything, got %q", target.Password)
	}

	var after models.User
	if err := db.First(&after, user.ID).Error; err != nil {
		t.Fatalf("Failed to reload user: %v", err)
	}
	if after.Password != stored.Password || after.City != "Pune" {
		t.Errorf("Expected password kept and city updated, got %q / %q", after.Password, after.City)
	}
}
