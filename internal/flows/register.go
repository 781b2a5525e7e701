package flows

import (
	"context"
	"strings"
	"time"

	"github.com/MrEthical07/coursehub/jwt"
)

// RegisterFailureKind classifies registration failures.
type RegisterFailureKind int

const (
	RegisterFailureNone RegisterFailureKind = iota
	RegisterFailureRateLimited
	RegisterFailureLookup
	RegisterFailureDuplicate
	RegisterFailureHash
	RegisterFailureCode
	RegisterFailureIssue
	RegisterFailureDeliver
)

type RegistrationRateLimiter interface {
	CheckRegistration(ctx context.Context, ip string) error
}

// RegisterDeps captures registration dependencies.
type RegisterDeps struct {
	ClientIP    func(context.Context) string
	EmailExists func(ctx context.Context, email string) (bool, error)
	Hash        func(password string) (string, error)
	NewCode     func() (string, error)
	Issue       func(candidate jwt.Candidate, code string) (string, time.Time, error)
	Deliver     func(ctx context.Context, candidate jwt.Candidate, code string) error
	RateLimiter RegistrationRateLimiter
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type RegisterResult struct {
	Failure   RegisterFailureKind
	Err       error
	Email     string
	Token     string
	ExpiresAt time.Time
}

// RunRegister issues an activation ticket for a new email and hands the
// code to Deliver. Nothing is persisted: the ticket is the only state.
func RunRegister(ctx context.Context, in RegisterInput, deps RegisterDeps) RegisterResult {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if deps.RateLimiter != nil {
		if err := deps.RateLimiter.CheckRegistration(ctx, deps.ClientIP(ctx)); err != nil {
			return RegisterResult{Failure: RegisterFailureRateLimited, Err: err, Email: email}
		}
	}

	exists, err := deps.EmailExists(ctx, email)
	if err != nil {
		return RegisterResult{Failure: RegisterFailureLookup, Err: err, Email: email}
	}
	if exists {
		return RegisterResult{Failure: RegisterFailureDuplicate, Email: email}
	}

	hash, err := deps.Hash(in.Password)
	if err != nil {
		return RegisterResult{Failure: RegisterFailureHash, Err: err, Email: email}
	}

	code, err := deps.NewCode()
	if err != nil {
		return RegisterResult{Failure: RegisterFailureCode, Err: err, Email: email}
	}

	candidate := jwt.Candidate{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
	}
	token, exp, err := deps.Issue(candidate, code)
	if err != nil {
		return RegisterResult{Failure: RegisterFailureIssue, Err: err, Email: email}
	}

	if err := deps.Deliver(ctx, candidate, code); err != nil {
		return RegisterResult{Failure: RegisterFailureDeliver, Err: err, Email: email}
	}

	return RegisterResult{Email: email, Token: token, ExpiresAt: exp}
}
