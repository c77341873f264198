package services

import (
	"context"
	"time"

	"Hacknox/database"

	"gorm.io/gorm"
)

// Options carries the runtime knobs services read from config.
type Options struct {
	BaseURL        string
	InviteTTL      time.Duration
	VerifyTTL      time.Duration
	SignedURLTTL   time.Duration
	MaxUploadBytes int64
}

var opts = Options{
	BaseURL:        "http://localhost:5173",
	InviteTTL:      72 * time.Hour,
	VerifyTTL:      24 * time.Hour,
	SignedURLTTL:   15 * time.Minute,
	MaxUploadBytes: 50 << 20,
}

// Configure replaces the defaults. Zero values keep the current setting.
func Configure(o Options) {
	if o.BaseURL != "" {
		opts.BaseURL = o.BaseURL
	}
	if o.InviteTTL > 0 {
		opts.InviteTTL = o.InviteTTL
	}
	if o.VerifyTTL > 0 {
		opts.VerifyTTL = o.VerifyTTL
	}
	if o.SignedURLTTL > 0 {
		opts.SignedURLTTL = o.SignedURLTTL
	}
	if o.MaxUploadBytes > 0 {
		opts.MaxUploadBytes = o.MaxUploadBytes
	}
}

func MaxUploadBytes() int64 { return opts.MaxUploadBytes }

// now is swapped in tests.
var now = time.Now

func db(ctx context.Context) *gorm.DB {
	return database.DB.WithContext(ctx)
}
