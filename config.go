package coursehub

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/coursehub/password"
)

// Config is the explicit engine configuration. It is built once at startup
// and treated as immutable afterwards.
type Config struct {
	Tokens   TokenConfig
	Session  SessionConfig
	Password PasswordConfig
	Security SecurityConfig
	Account  AccountConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig holds one secret and lifetime per token class. The three
// secrets must be present and pairwise distinct.
type TokenConfig struct {
	ActivationSecret []byte
	AccessSecret     []byte
	RefreshSecret    []byte

	ActivationTTL time.Duration
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	Issuer string
	Leeway time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls the Redis session cache. CacheTTL of zero stores
// records without expiry.
type SessionConfig struct {
	RedisPrefix string
	CacheTTL    time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

type PasswordConfig struct {
	Memory           uint32 // in KB
	Time             uint32
	Parallelism      uint8
	SaltLength       uint32
	KeyLength        uint32
	MinPasswordBytes int
	MaxPasswordBytes int
	UpgradeOnLogin   bool
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig holds rate limits. A zero Max disables that limit.
type SecurityConfig struct {
	ProductionMode   bool
	EnableIPThrottle bool

	MaxLoginAttempts      int
	LoginCooldownDuration time.Duration

	MaxActivationAttempts      int
	ActivationCooldownDuration time.Duration

	MaxRefreshAttempts      int
	RefreshCooldownDuration time.Duration

	MaxRegistrationsPerIP int
	RegistrationCooldown  time.Duration
}

/*
====================================
ACCOUNT CONFIG
====================================
*/

type AccountConfig struct {
	DefaultRole string
	// AdminRole is the role allowed through the course management gate.
	AdminRole              string
	ActivationMailSubject  string
	ActivationMailTemplate string
}

type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns a configuration with every non-secret field set.
// Callers must still supply the three token secrets.
func DefaultConfig() Config {
	pw := password.DefaultConfig()
	return Config{
		Tokens: TokenConfig{
			ActivationTTL: 5 * time.Minute,
			AccessTTL:     5 * time.Minute,
			RefreshTTL:    3 * 24 * time.Hour,
			Issuer:        "coursehub",
		},
		Session: SessionConfig{
			RedisPrefix: "ch",
			CacheTTL:    0,
		},
		Password: PasswordConfig{
			Memory:           pw.Memory,
			Time:             pw.Time,
			Parallelism:      pw.Parallelism,
			SaltLength:       pw.SaltLength,
			KeyLength:        pw.KeyLength,
			MinPasswordBytes: 0,
			MaxPasswordBytes: password.DefaultMaxPasswordBytes,
			UpgradeOnLogin:   true,
		},
		Security: SecurityConfig{
			MaxLoginAttempts:           5,
			LoginCooldownDuration:      15 * time.Minute,
			MaxActivationAttempts:      0,
			ActivationCooldownDuration: 5 * time.Minute,
			MaxRefreshAttempts:         60,
			RefreshCooldownDuration:    time.Minute,
			MaxRegistrationsPerIP:      10,
			RegistrationCooldown:       time.Hour,
		},
		Account: AccountConfig{
			DefaultRole:            "user",
			AdminRole:              "admin",
			ActivationMailSubject:  "Activate your account",
			ActivationMailTemplate: "activation-mail",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Tokens.ActivationSecret = cloneBytes(cfg.Tokens.ActivationSecret)
	out.Tokens.AccessSecret = cloneBytes(cfg.Tokens.AccessSecret)
	out.Tokens.RefreshSecret = cloneBytes(cfg.Tokens.RefreshSecret)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// minProductionSecretBytes is the HS256 key floor enforced in production.
const minProductionSecretBytes = 32

// Validate reports the first configuration problem, wrapped in
// ErrConfigInvalid. Missing or shared token secrets are always fatal.
func (c *Config) Validate() error {
	secrets := []struct {
		name  string
		value []byte
	}{
		{"activation", c.Tokens.ActivationSecret},
		{"access", c.Tokens.AccessSecret},
		{"refresh", c.Tokens.RefreshSecret},
	}
	for i, s := range secrets {
		if len(strings.TrimSpace(string(s.value))) == 0 {
			return invalid("%s token secret is required", s.name)
		}
		if c.Security.ProductionMode && len(s.value) < minProductionSecretBytes {
			return invalid("%s token secret must be at least %d bytes in production", s.name, minProductionSecretBytes)
		}
		for _, other := range secrets[:i] {
			if subtle.ConstantTimeCompare(s.value, other.value) == 1 {
				return invalid("%s and %s token secrets must differ", other.name, s.name)
			}
		}
	}

	if c.Tokens.ActivationTTL <= 0 {
		return invalid("Tokens ActivationTTL must be > 0")
	}
	if c.Tokens.AccessTTL <= 0 {
		return invalid("Tokens AccessTTL must be > 0")
	}
	if c.Tokens.RefreshTTL <= 0 {
		return invalid("Tokens RefreshTTL must be > 0")
	}
	if c.Tokens.RefreshTTL < c.Tokens.AccessTTL {
		return invalid("Tokens RefreshTTL must be >= AccessTTL")
	}
	if c.Tokens.Leeway < 0 || c.Tokens.Leeway > 2*time.Minute {
		return invalid("Tokens Leeway must be within [0, 2m]")
	}

	if strings.TrimSpace(c.Session.RedisPrefix) == "" {
		return invalid("Session RedisPrefix must not be empty")
	}
	if c.Session.CacheTTL < 0 {
		return invalid("Session CacheTTL must be >= 0")
	}
	if c.Session.CacheTTL > 0 && c.Session.CacheTTL < c.Tokens.RefreshTTL {
		return invalid("Session CacheTTL must be 0 or >= RefreshTTL")
	}

	if c.Password.Memory < 8*1024 {
		return invalid("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return invalid("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return invalid("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return invalid("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return invalid("Password KeyLength must be >= 16")
	}
	if c.Password.MinPasswordBytes < 0 {
		return invalid("Password MinPasswordBytes must be >= 0")
	}
	if c.Password.MaxPasswordBytes > 0 && c.Password.MaxPasswordBytes < c.Password.MinPasswordBytes {
		return invalid("Password MaxPasswordBytes must be >= MinPasswordBytes")
	}

	limits := []struct {
		name     string
		max      int
		cooldown time.Duration
	}{
		{"Login", c.Security.MaxLoginAttempts, c.Security.LoginCooldownDuration},
		{"Activation", c.Security.MaxActivationAttempts, c.Security.ActivationCooldownDuration},
		{"Refresh", c.Security.MaxRefreshAttempts, c.Security.RefreshCooldownDuration},
		{"Registration", c.Security.MaxRegistrationsPerIP, c.Security.RegistrationCooldown},
	}
	for _, l := range limits {
		if l.max < 0 {
			return invalid("Security %s limit must be >= 0", l.name)
		}
		if l.max > 0 && l.cooldown <= 0 {
			return invalid("Security %s cooldown must be > 0 when the limit is enabled", l.name)
		}
	}

	if strings.TrimSpace(c.Account.DefaultRole) == "" {
		return invalid("Account DefaultRole must not be empty")
	}
	if strings.TrimSpace(c.Account.AdminRole) == "" {
		return invalid("Account AdminRole must not be empty")
	}
	if c.Account.DefaultRole == c.Account.AdminRole {
		return invalid("Account DefaultRole must not grant admin")
	}
	if c.Account.ActivationMailTemplate == "" {
		return invalid("Account ActivationMailTemplate must not be empty")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return invalid("Audit BufferSize must be > 0 when enabled")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return invalid("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfigInvalid, fmt.Sprintf(format, args...))
}
