package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
	algorithmID           = "argon2id"

	// DefaultMaxPasswordBytes caps the input fed to argon2 when
	// Config.MaxPasswordBytes is zero.
	DefaultMaxPasswordBytes = 1024
)

var (
	// ErrPasswordPolicy is returned when a password is empty or outside the
	// configured length bounds.
	ErrPasswordPolicy = errors.New("password does not satisfy policy")
	// ErrMalformedHash is returned when a stored hash is not a valid argon2id
	// PHC string.
	ErrMalformedHash = errors.New("malformed password hash")
)

// Config holds argon2id cost parameters and password length bounds.
//
// MinPasswordBytes of zero means any non-empty password is accepted.
type Config struct {
	Memory           uint32
	Time             uint32
	Parallelism      uint8
	SaltLength       uint32
	KeyLength        uint32
	MinPasswordBytes int
	MaxPasswordBytes int
}

// DefaultConfig returns the OWASP-recommended argon2id baseline.
func DefaultConfig() Config {
	return Config{
		Memory:           64 * 1024,
		Time:             3,
		Parallelism:      2,
		SaltLength:       16,
		KeyLength:        32,
		MaxPasswordBytes: DefaultMaxPasswordBytes,
	}
}

// Argon2 hashes and verifies passwords. It is safe for concurrent use.
type Argon2 struct {
	config Config
}

type phc struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

// NewArgon2 validates cfg and returns a hasher.
func NewArgon2(cfg Config) (*Argon2, error) {
	if cfg.MaxPasswordBytes == 0 {
		cfg.MaxPasswordBytes = DefaultMaxPasswordBytes
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return &Argon2{config: cfg}, nil
}

// CheckPolicy reports whether password satisfies the configured length
// bounds. Bytes are counted exactly as provided (no Unicode normalization).
func (a *Argon2) CheckPolicy(password string) error {
	n := len(password)
	switch {
	case n == 0:
		return fmt.Errorf("%w: password is empty", ErrPasswordPolicy)
	case n < a.config.MinPasswordBytes:
		return fmt.Errorf("%w: password must be at least %d bytes", ErrPasswordPolicy, a.config.MinPasswordBytes)
	case n > a.config.MaxPasswordBytes:
		return fmt.Errorf("%w: password must be at most %d bytes", ErrPasswordPolicy, a.config.MaxPasswordBytes)
	}
	return nil
}

// Hash returns the PHC encoding of password under a fresh random salt.
func (a *Argon2) Hash(password string) (string, error) {
	if err := a.CheckPolicy(password); err != nil {
		return "", err
	}

	salt := make([]byte, a.config.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, a.config.Time, a.config.Memory, a.config.Parallelism, a.config.KeyLength)

	return encodePHC(phc{
		memory:      a.config.Memory,
		time:        a.config.Time,
		parallelism: a.config.Parallelism,
		salt:        salt,
		key:         key,
	}), nil
}

// Verify compares password against encodedHash in constant time.
//
// A false result with a nil error means the password is wrong. An error means
// the hash could not be used at all.
func (a *Argon2) Verify(password string, encodedHash string) (bool, error) {
	if len(password) > a.config.MaxPasswordBytes {
		return false, fmt.Errorf("%w: password too long", ErrPasswordPolicy)
	}

	parsed, err := decodePHC(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), parsed.salt, parsed.time, parsed.memory, parsed.parallelism, uint32(len(parsed.key)))
	return subtle.ConstantTimeCompare(computed, parsed.key) == 1, nil
}

// NeedsUpgrade reports whether encodedHash was produced with weaker
// parameters than the current configuration.
func (a *Argon2) NeedsUpgrade(encodedHash string) (bool, error) {
	parsed, err := decodePHC(encodedHash)
	if err != nil {
		return false, err
	}

	return a.config.Memory > parsed.memory ||
		a.config.Time > parsed.time ||
		a.config.Parallelism > parsed.parallelism ||
		a.config.KeyLength != uint32(len(parsed.key)), nil
}

func encodePHC(p phc) string {
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		p.memory, p.time, p.parallelism,
		base64.RawStdEncoding.EncodeToString(p.salt),
		base64.RawStdEncoding.EncodeToString(p.key),
	)
}

func decodePHC(encoded string) (*phc, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != algorithmID {
		return nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, fmt.Errorf("%w: bad version segment", ErrMalformedHash)
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("%w: unsupported argon2 version %d", ErrMalformedHash, version)
	}

	var p phc
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.parallelism); err != nil {
		return nil, fmt.Errorf("%w: bad parameter segment", ErrMalformedHash)
	}
	if p.memory < minMemoryKB || p.time < minTimeCost || p.parallelism < minParallelism {
		return nil, fmt.Errorf("%w: parameters below minimum", ErrMalformedHash)
	}

	var err error
	if p.salt, err = decodeSegment(parts[4]); err != nil || len(p.salt) < int(minSaltLength) {
		return nil, fmt.Errorf("%w: bad salt", ErrMalformedHash)
	}
	if p.key, err = decodeSegment(parts[5]); err != nil || len(p.key) < int(minKeyLength) {
		return nil, fmt.Errorf("%w: bad key", ErrMalformedHash)
	}
	return &p, nil
}

// decodeSegment accepts both unpadded (PHC canonical) and padded base64.
func decodeSegment(s string) ([]byte, error) {
	if strings.HasSuffix(s, "=") {
		return base64.StdEncoding.DecodeString(s)
	}
	return base64.RawStdEncoding.DecodeString(s)
}

func validateConfig(cfg Config) error {
	switch {
	case cfg.Memory < minMemoryKB:
		return errors.New("password memory must be >= 8192 KB")
	case cfg.Time < minTimeCost:
		return errors.New("password time must be >= 1")
	case cfg.Parallelism < minParallelism:
		return errors.New("password parallelism must be >= 1")
	case cfg.SaltLength < minSaltLength:
		return errors.New("password salt length must be >= 16")
	case cfg.KeyLength < minKeyLength:
		return errors.New("password key length must be >= 16")
	case cfg.MinPasswordBytes < 0:
		return errors.New("password min length must be >= 0")
	case cfg.MaxPasswordBytes < cfg.MinPasswordBytes:
		return errors.New("password max length must be >= min length")
	}
	return nil
}
