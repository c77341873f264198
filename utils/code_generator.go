package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

const joinCodeBytes = 3

// GenerateJoinCode returns a 6 character upper-case hex team join code.
func GenerateJoinCode() (string, error) {
	b := make([]byte, joinCodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// GenerateSecret returns an opaque single-use token (invitations, email verification).
func GenerateSecret() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// GenerateTempPassword is used for judge accounts created by admins.
func GenerateTempPassword() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
}

// Slugify lower-cases s and keeps [a-z0-9-].
func Slugify(s string) string {
	var sb strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastDash = false
		case !lastDash:
			sb.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
