package coursehub

import (
	"context"
	"io"
	"log/slog"
	"time"

	internalaudit "github.com/MrEthical07/coursehub/internal/audit"
)

// Avatar references an uploaded profile image.
type Avatar struct {
	PublicID string `json:"public_id,omitempty"`
	URL      string `json:"url,omitempty"`
}

// User is the account document returned by every engine operation and
// cached in the session record. PasswordHash never leaves the process.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsVerified   bool      `json:"isVerified"`
	Avatar       Avatar    `json:"avatar"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasPassword reports whether the account can log in with a password.
// Accounts created through social auth have none.
func (u *User) HasPassword() bool {
	return u != nil && u.PasswordHash != ""
}

// UserStore is the persistence boundary for accounts. Implementations must
// enforce email uniqueness and report conflicts as ErrDuplicateEmail, and
// report missing rows as ErrUserNotFound.
type UserStore interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	// UserByEmail returns the account without its password hash.
	UserByEmail(ctx context.Context, email string) (*User, error)
	// UserByEmailWithPassword returns the account including PasswordHash.
	UserByEmailWithPassword(ctx context.Context, email string) (*User, error)
	UserByID(ctx context.Context, id string) (*User, error)
	PasswordHash(ctx context.Context, id string) (string, error)
	CreateUser(ctx context.Context, user *User) (*User, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	UpdateAvatar(ctx context.Context, id string, avatar Avatar) (*User, error)
}

// ProfileUpdate carries optional profile changes. Nil fields are left alone.
type ProfileUpdate struct {
	Name  *string
	Email *string
}

// MailMessage is a templated outbound email.
type MailMessage struct {
	To       string
	Subject  string
	Template string
	Data     map[string]any
}

// Mailer delivers templated email.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// AvatarStore uploads and removes profile images.
type AvatarStore interface {
	// Upload stores a base64 data URI or remote URL and returns its reference.
	Upload(ctx context.Context, source string) (Avatar, error)
	Destroy(ctx context.Context, publicID string) error
}

// ValidationMode selects how much Authenticate checks beyond the signature.
type ValidationMode int

const (
	// ModeJWTOnly verifies the access token alone.
	ModeJWTOnly ValidationMode = iota
	// ModeStrict also requires a live session record.
	ModeStrict
)

func (m ValidationMode) String() string {
	switch m {
	case ModeJWTOnly:
		return "jwt_only"
	case ModeStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// TokenPair is a freshly issued access and refresh token.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// AuthResult describes an authenticated caller. User is populated in
// ModeStrict from the session record and is nil in ModeJWTOnly.
type AuthResult struct {
	UserID string
	Role   string
	User   *User
	Mode   ValidationMode
}

type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

// RegisterResult carries the activation ticket. The code itself only
// travels by mail.
type RegisterResult struct {
	ActivationToken string
	Email           string
	ExpiresAt       time.Time
}

type LoginResult struct {
	User   *User
	Tokens TokenPair
	// Created is set when SocialAuth created the account.
	Created bool
}

type SocialAuthRequest struct {
	Email  string
	Name   string
	Avatar string
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's dispatcher.
type AuditSink = internalaudit.Sink

type NoOpSink = internalaudit.NoOpSink

type ChannelSink = internalaudit.ChannelSink

type JSONWriterSink = internalaudit.JSONWriterSink

type SlogSink = internalaudit.SlogSink

type MultiSink = internalaudit.MultiSink

func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewSlogSink writes audit events as structured log records.
func NewSlogSink(l *slog.Logger) *SlogSink {
	return internalaudit.NewSlogSink(l)
}

// UpdateUserInfoRequest carries optional profile changes. Empty fields are
// left unchanged.
type UpdateUserInfoRequest struct {
	Name  string
	Email string
}
