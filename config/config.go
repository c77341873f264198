package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	GinMode string
	BaseURL string

	DBDriver        string
	DBDSN           string
	DBMaxIdleConns  int
	DBMaxOpenConns  int
	DBConnLifetime  time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisPoolSize   int
	JWTSecret       string
	JWTTTL          time.Duration
	CookieDomain    string
	CookieSecure    bool
	CORSOrigins     []string
	StorageDriver   string
	StorageDir      string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3Bucket        string
	S3UseSSL        bool
	SignedURLTTL    time.Duration
	Scanner         string
	ScannerImage    string
	MaxUploadMB     int64
	InviteTTL       time.Duration
	VerifyTTL       time.Duration
	SchedulerPeriod time.Duration
	AuditQueueSize  int
	AdminEmail      string
	AdminPassword   string
	LogLevel        string
	LogPretty       bool
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	c := &Config{
		Port:          getEnv("PORT", "8080"),
		GinMode:       getEnv("GIN_MODE", "release"),
		BaseURL:       getEnv("APP_BASE_URL", "http://localhost:5173"),
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DBDSN:         os.Getenv("DB_DSN"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		CookieDomain:  os.Getenv("COOKIE_DOMAIN"),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
		StorageDir:    getEnv("STORAGE_DIR", "./uploads"),
		S3Endpoint:    os.Getenv("S3_ENDPOINT"),
		S3AccessKey:   os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:   os.Getenv("S3_SECRET_KEY"),
		S3Bucket:      getEnv("S3_BUCKET", "hacknox"),
		Scanner:       strings.ToLower(getEnv("SCANNER", "docker")),
		ScannerImage:  getEnv("SCANNER_IMAGE", "clamav/clamav:stable"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
	}

	var err error
	if c.DBMaxIdleConns, err = getInt("DB_MAX_IDLE_CONNS", 10); err != nil {
		return nil, err
	}
	if c.DBMaxOpenConns, err = getInt("DB_MAX_OPEN_CONNS", 100); err != nil {
		return nil, err
	}
	if c.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if c.RedisPoolSize, err = getInt("REDIS_POOL_SIZE", 100); err != nil {
		return nil, err
	}
	if c.AuditQueueSize, err = getInt("AUDIT_QUEUE_SIZE", 256); err != nil {
		return nil, err
	}
	maxUpload, err := getInt("MAX_UPLOAD_MB", 50)
	if err != nil {
		return nil, err
	}
	c.MaxUploadMB = int64(maxUpload)

	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"DB_CONN_LIFETIME", time.Hour, &c.DBConnLifetime},
		{"JWT_TTL", 7 * 24 * time.Hour, &c.JWTTTL},
		{"SIGNED_URL_TTL", 15 * time.Minute, &c.SignedURLTTL},
		{"INVITE_TTL", 72 * time.Hour, &c.InviteTTL},
		{"VERIFY_TTL", 24 * time.Hour, &c.VerifyTTL},
		{"SCHEDULER_INTERVAL", 30 * time.Second, &c.SchedulerPeriod},
	}
	for _, d := range durations {
		if *d.dst, err = getDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	if c.CookieSecure, err = getBool("COOKIE_SECURE", true); err != nil {
		return nil, err
	}
	if c.S3UseSSL, err = getBool("S3_USE_SSL", true); err != nil {
		return nil, err
	}
	if c.LogPretty, err = getBool("LOG_PRETTY", false); err != nil {
		return nil, err
	}

	if c.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}
	if c.DBDriver != "mysql" && c.DBDriver != "postgres" {
		return nil, fmt.Errorf("DB_DRIVER must be mysql or postgres, got %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if c.StorageDriver == "s3" && (c.S3Endpoint == "" || c.S3AccessKey == "" || c.S3SecretKey == "") {
		return nil, fmt.Errorf("S3_ENDPOINT, S3_ACCESS_KEY and S3_SECRET_KEY are required for STORAGE_DRIVER=s3")
	}

	return c, nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
