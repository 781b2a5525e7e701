// Package config loads the server configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrEthical07/coursehub"
	"github.com/MrEthical07/coursehub/internal/avatar"
	"github.com/MrEthical07/coursehub/internal/mail"
)

type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Config is everything cmd/coursehub needs to wire the server.
type Config struct {
	Env         string
	HTTPAddr    string
	DatabaseURL string
	Redis       Redis
	SMTP        mail.SMTPConfig
	S3          avatar.Config
	CORSOrigins string
	// AdminEmail, when set, is promoted to the admin role at startup.
	AdminEmail string

	Auth coursehub.Config
}

func (c *Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads .env files (default ".env"; a missing file is not an error)
// and then the process environment. Variables already set in the
// environment win over .env values. The three token secrets are required
// and must differ.
func Load(envFiles ...string) (*Config, error) {
	if err := loadDotenv(envFiles...); err != nil {
		return nil, err
	}

	r := reader{}
	cfg := &Config{
		Env:         r.str("APP_ENV", "development"),
		HTTPAddr:    r.str("HTTP_ADDR", ":8000"),
		DatabaseURL: r.str("DATABASE_URL", ""),
		Redis: Redis{
			Addr:     r.str("REDIS_ADDR", "localhost:6379"),
			Password: r.str("REDIS_PASSWORD", ""),
			DB:       r.int("REDIS_DB", 0),
		},
		SMTP: mail.SMTPConfig{
			Host:     r.str("SMTP_HOST", ""),
			Port:     r.int("SMTP_PORT", 587),
			User:     r.str("SMTP_USER", ""),
			Password: r.str("SMTP_PASSWORD", ""),
			From:     r.str("SMTP_FROM", "CourseHub <noreply@coursehub.local>"),
		},
		S3: avatar.Config{
			Endpoint:  r.str("S3_ENDPOINT", ""),
			Region:    r.str("S3_REGION", "us-east-1"),
			Bucket:    r.str("S3_BUCKET", ""),
			AccessKey: r.str("S3_ACCESS_KEY", ""),
			SecretKey: r.str("S3_SECRET_KEY", ""),
			PublicURL: r.str("S3_PUBLIC_URL", ""),
		},
		CORSOrigins: r.str("CORS_ORIGINS", "http://localhost:3000"),
		AdminEmail:  strings.ToLower(r.str("ADMIN_EMAIL", "")),
	}

	auth := coursehub.DefaultConfig()
	auth.Tokens.ActivationSecret = r.secret("ACTIVATION_SECRET")
	auth.Tokens.AccessSecret = r.secret("ACCESS_TOKEN_SECRET")
	auth.Tokens.RefreshSecret = r.secret("REFRESH_TOKEN_SECRET")
	auth.Tokens.AccessTTL = r.duration("ACCESS_TOKEN_TTL", auth.Tokens.AccessTTL)
	auth.Tokens.RefreshTTL = r.duration("REFRESH_TOKEN_TTL", auth.Tokens.RefreshTTL)
	auth.Security.MaxLoginAttempts = r.int("LOGIN_MAX_ATTEMPTS", auth.Security.MaxLoginAttempts)
	auth.Security.LoginCooldownDuration = r.duration("LOGIN_COOLDOWN", auth.Security.LoginCooldownDuration)
	auth.Security.EnableIPThrottle = r.bool("LOGIN_IP_THROTTLE", false)
	auth.Security.MaxActivationAttempts = r.int("ACTIVATION_MAX_ATTEMPTS", auth.Security.MaxActivationAttempts)
	auth.Security.ProductionMode = cfg.Production()
	auth.Audit.Enabled = r.bool("AUDIT_ENABLED", true)
	cfg.Auth = auth

	if err := errors.Join(r.errs...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Auth.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func loadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

// reader collects parse errors so Load reports every bad variable at once.
type reader struct {
	errs []error
}

func (r *reader) str(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func (r *reader) secret(key string) []byte {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		r.errs = append(r.errs, fmt.Errorf("%s is required", key))
		return nil
	}
	return []byte(v)
}

func (r *reader) int(key string, fallback int) int {
	v := r.str(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not an integer", key, v))
		return fallback
	}
	return n
}

func (r *reader) bool(key string, fallback bool) bool {
	v := r.str(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not a boolean", key, v))
		return fallback
	}
	return b
}

// duration accepts Go durations ("15m") or a bare number of seconds.
func (r *reader) duration(key string, fallback time.Duration) time.Duration {
	v := r.str(key, "")
	if v == "" {
		return fallback
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not a duration", key, v))
		return fallback
	}
	return d
}
