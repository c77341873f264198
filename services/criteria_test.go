package services

import (
	"testing"

	"Hacknox/utils"
)

func TestParseCriteria(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantNil bool
		wantErr bool
	}{
		{"empty", "", true, false},
		{"null", "null", true, false},
		{"empty object", "{}", true, false},
		{"empty array", "[]", true, false},
		{"flat object", `{"city":"Pune","teamId":7}`, false, false},
		{"non-empty array", `[{"city":"Pune"}]`, false, true},
		{"nested value", `{"city":{"eq":"Pune"}}`, false, true},
		{"scalar", `"Pune"`, false, true},
		{"broken json", `{"city":`, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseCriteria([]byte(tt.raw))
			if tt.wantErr {
				if !utils.IsKind(err, utils.KindValidation) {
					t.Errorf("Expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if (c == nil) != tt.wantNil {
				t.Errorf("Expected nil=%v, got %v", tt.wantNil, c)
			}
		})
	}
}

func TestCriteriaMatches(t *testing.T) {
	uc := NewUserContext("participant", "Pune", "COEP", "", 7)

	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"broadcast", `{}`, true},
		{"case insensitive", `{"City":"PUNE"}`, true},
		{"snake case key", `{"team_id":7}`, true},
		{"numeric string", `{"teamId":"7"}`, true},
		{"all must match", `{"city":"Pune","college":"VJTI"}`, false},
		{"missing attribute excludes", `{"category":"student"}`, false},
		{"unknown key excludes", `{"country":"IN"}`, false},
		{"role", `{"role":"participant"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseCriteria([]byte(tt.raw))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got := c.Matches(uc); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}
