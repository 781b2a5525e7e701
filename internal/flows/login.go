package flows

import (
	"context"
	"errors"
	"strings"
)

// LoginFailureKind classifies password login failures.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureInput
	LoginFailureRateLimited
	LoginFailureLookup
	LoginFailureInvalidCredentials
	LoginFailureVerify
)

// LoginCredential is the flow-local view of a stored password.
type LoginCredential struct {
	UserID       string
	PasswordHash string
}

type LoginRateLimiter interface {
	CheckLogin(ctx context.Context, email, ip string) error
	IncrementLogin(ctx context.Context, email, ip string) error
	ResetLogin(ctx context.Context, email string) error
}

// LoginDeps captures password login dependencies.
type LoginDeps struct {
	ClientIP func(context.Context) string
	Lookup   func(ctx context.Context, email string) (*LoginCredential, error)
	Verify   func(password, encodedHash string) (bool, error)
	// DummyHash is verified against when the account is unknown or has no
	// password so every failure costs one argon2 evaluation.
	DummyHash    string
	UserNotFound error
	RateLimiter  LoginRateLimiter
	Warn         func(string, ...any)
}

type LoginResult struct {
	Failure      LoginFailureKind
	Err          error
	Email        string
	UserID       string
	PasswordHash string
}

// RunLogin checks email and password. It never reveals whether the email
// exists: unknown accounts, password-less accounts and wrong passwords all
// end in LoginFailureInvalidCredentials.
func RunLogin(ctx context.Context, email, password string, deps LoginDeps) LoginResult {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return LoginResult{Failure: LoginFailureInput, Email: email}
	}
	ip := ""
	if deps.ClientIP != nil {
		ip = deps.ClientIP(ctx)
	}

	if deps.RateLimiter != nil {
		if err := deps.RateLimiter.CheckLogin(ctx, email, ip); err != nil {
			return LoginResult{Failure: LoginFailureRateLimited, Err: err, Email: email}
		}
	}

	cred, err := deps.Lookup(ctx, email)
	if err != nil && (deps.UserNotFound == nil || !errors.Is(err, deps.UserNotFound)) {
		return LoginResult{Failure: LoginFailureLookup, Err: err, Email: email}
	}

	hash := deps.DummyHash
	known := err == nil && cred != nil && cred.PasswordHash != ""
	if known {
		hash = cred.PasswordHash
	}

	ok, verr := deps.Verify(password, hash)
	if known && verr != nil {
		return LoginResult{Failure: LoginFailureVerify, Err: verr, Email: email}
	}
	if !known || !ok {
		if deps.RateLimiter != nil {
			if err := deps.RateLimiter.IncrementLogin(ctx, email, ip); err != nil {
				return LoginResult{Failure: LoginFailureRateLimited, Err: err, Email: email}
			}
		}
		return LoginResult{Failure: LoginFailureInvalidCredentials, Email: email}
	}

	if deps.RateLimiter != nil {
		if err := deps.RateLimiter.ResetLogin(ctx, email); err != nil && deps.Warn != nil {
			deps.Warn("login attempt reset failed", "error", err)
		}
	}
	return LoginResult{Email: email, UserID: cred.UserID, PasswordHash: cred.PasswordHash}
}
