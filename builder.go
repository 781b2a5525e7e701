package coursehub

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	internalaudit "github.com/MrEthical07/coursehub/internal/audit"
	"github.com/MrEthical07/coursehub/internal/logging"
	"github.com/MrEthical07/coursehub/internal/rate"
	"github.com/MrEthical07/coursehub/jwt"
	"github.com/MrEthical07/coursehub/password"
	"github.com/MrEthical07/coursehub/session"
)

// dummyPassword is hashed once at build time and verified against when a
// login names an unknown account.
const dummyPassword = "coursehub-timing-equalizer"

// Builder assembles an Engine. A Builder is single use.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	users     UserStore
	mailer    Mailer
	avatars   AvatarStore
	auditSink AuditSink
	logger    *slog.Logger
	clock     func() time.Time

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the configuration. The config is copied.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the client backing the session cache and rate limiters.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserStore sets the account store.
func (b *Builder) WithUserStore(users UserStore) *Builder {
	b.users = users
	return b
}

// WithMailer sets the activation mail sender.
func (b *Builder) WithMailer(m Mailer) *Builder {
	b.mailer = m
	return b
}

// WithAvatarStore sets the avatar object store. Without one, UpdateAvatar
// returns ErrAvatarUnavailable.
func (b *Builder) WithAvatarStore(s AvatarStore) *Builder {
	b.avatars = s
	return b
}

// WithAuditSink sets the audit destination and enables auditing.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	if sink != nil {
		b.config.Audit.Enabled = true
	}
	return b
}

// WithLogger sets the engine logger.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// WithClock overrides the time source for token issuance and validation.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires every component. It fails
// when a token secret is missing or shared, or a required collaborator is
// absent.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.users == nil {
		return nil, errors.New("user store required")
	}
	if b.mailer == nil {
		return nil, errors.New("mailer required")
	}

	var jwtOpts []jwt.Option
	if b.clock != nil {
		jwtOpts = append(jwtOpts, jwt.WithClock(b.clock))
	}
	codec, err := jwt.NewCodec(
		jwt.Config{Secret: cfg.Tokens.ActivationSecret, TTL: cfg.Tokens.ActivationTTL, Issuer: cfg.Tokens.Issuer, Leeway: cfg.Tokens.Leeway},
		jwt.Config{Secret: cfg.Tokens.AccessSecret, TTL: cfg.Tokens.AccessTTL, Issuer: cfg.Tokens.Issuer, Leeway: cfg.Tokens.Leeway},
		jwt.Config{Secret: cfg.Tokens.RefreshSecret, TTL: cfg.Tokens.RefreshTTL, Issuer: cfg.Tokens.Issuer, Leeway: cfg.Tokens.Leeway},
		jwtOpts...,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}

	hasher, err := password.NewArgon2(password.Config{
		Memory:           cfg.Password.Memory,
		Time:             cfg.Password.Time,
		Parallelism:      cfg.Password.Parallelism,
		SaltLength:       cfg.Password.SaltLength,
		KeyLength:        cfg.Password.KeyLength,
		MinPasswordBytes: cfg.Password.MinPasswordBytes,
		MaxPasswordBytes: cfg.Password.MaxPasswordBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, err
	}

	sessions := session.NewStore(b.redis, cfg.Session.RedisPrefix, cfg.Session.CacheTTL)
	if b.clock != nil {
		sessions = sessions.WithClock(b.clock)
	}

	logger := b.logger
	if logger == nil {
		logger = logging.Discard()
	}

	engine := &Engine{
		config:   cfg,
		codec:    codec,
		sessions: sessions,
		limiter: rate.New(b.redis, rate.Config{
			EnableIPThrottle:           cfg.Security.EnableIPThrottle,
			MaxLoginAttempts:           cfg.Security.MaxLoginAttempts,
			LoginCooldownDuration:      cfg.Security.LoginCooldownDuration,
			MaxActivationAttempts:      cfg.Security.MaxActivationAttempts,
			ActivationCooldownDuration: cfg.Security.ActivationCooldownDuration,
			MaxRefreshAttempts:         cfg.Security.MaxRefreshAttempts,
			RefreshCooldownDuration:    cfg.Security.RefreshCooldownDuration,
			MaxRegistrationsPerIP:      cfg.Security.MaxRegistrationsPerIP,
			RegistrationCooldown:       cfg.Security.RegistrationCooldown,
		}),
		hasher:    hasher,
		dummyHash: dummyHash,
		users:     b.users,
		mailer:    b.mailer,
		avatars:   b.avatars,
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
		logger:  logging.NewSlogLogger(logger).With("component", "engine"),
	}
	engine.flow = engine.buildFlows()

	b.built = true
	return engine, nil
}
