package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Class identifies a token family. It is written to the aud claim and
// checked on parse.
type Class string

const (
	// ClassActivation marks registration activation tickets.
	ClassActivation Class = "activation"
	// ClassAccess marks short-lived access tokens.
	ClassAccess Class = "access"
	// ClassRefresh marks long-lived refresh tokens.
	ClassRefresh Class = "refresh"
)

var (
	// ErrTokenInvalid is returned for malformed tokens, bad signatures and
	// tokens minted for another class or issuer.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned when the exp claim lies in the past.
	ErrTokenExpired = errors.New("token expired")
	// ErrSecretReuse is returned by NewCodec when two classes share a secret.
	ErrSecretReuse = errors.New("token secrets must be distinct")
)

// Config defines a public type used by coursehub token APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	Class  Class
	Secret []byte
	TTL    time.Duration
	Issuer string
	Leeway time.Duration
}

// Manager signs and verifies tokens of a single class with HS256.
type Manager struct {
	config Config
	now    func() time.Time
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for iat/exp and validation.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager validates cfg and returns a Manager for cfg.Class.
//
// NewManager may return an error when the secret is empty, the TTL is not
// positive or the leeway is out of range.
func NewManager(cfg Config, opts ...Option) (*Manager, error) {
	switch cfg.Class {
	case ClassActivation, ClassAccess, ClassRefresh:
	default:
		return nil, fmt.Errorf("unsupported token class %q", cfg.Class)
	}
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("%s token secret is empty", cfg.Class)
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("invalid %s token TTL configuration", cfg.Class)
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	cfg.Issuer = strings.TrimSpace(cfg.Issuer)

	m := &Manager{config: cfg, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Class reports which token class m handles.
func (m *Manager) Class() Class {
	return m.config.Class
}

// TTL reports the configured lifetime.
func (m *Manager) TTL() time.Duration {
	return m.config.TTL
}

func (m *Manager) registered(subject string) (jwt.RegisteredClaims, time.Time) {
	now := m.now()
	exp := now.Add(m.config.TTL)
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    m.config.Issuer,
		Audience:  jwt.ClaimStrings{string(m.config.Class)},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}, exp
}

func (m *Manager) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.Secret)
}

func (m *Manager) parse(tokenStr string, claims jwt.Claims) error {
	if strings.TrimSpace(tokenStr) == "" {
		return fmt.Errorf("%w: empty token", ErrTokenInvalid)
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(string(m.config.Class)),
		jwt.WithTimeFunc(m.now),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	token, err := jwt.NewParser(options...).ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return m.config.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return ErrTokenInvalid
	}
	return nil
}
