package utils

import (
	"regexp"
	"testing"
)

func TestGenerateJoinCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9A-F]{6}$`)
	for i := 0; i < 20; i++ {
		code, err := GenerateJoinCode()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Errorf("Expected 6 upper-case hex characters, got %q", code)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Spring Hack 2026", "spring-hack-2026"},
		{"  --Hello,   World!!  ", "hello-world"},
		{"Ünïcode only", "n-code-only"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   int
	}{
		{NewValidation("x"), 400, CodeValidation},
		{NewConflict("x"), 409, CodeConflict},
		{NewExpired("x"), 410, CodeExpired},
		{NewForbidden("x"), 403, CodeForbidden},
		{Wrap(nil, "x"), 500, CodeServer},
	}
	for _, tt := range tests {
		kind := KindOf(tt.err)
		if kind.HTTPStatus() != tt.status || kind.Code() != tt.code {
			t.Errorf("%v: expected %d/%d, got %d/%d", tt.err, tt.status, tt.code, kind.HTTPStatus(), kind.Code())
		}
	}
}
