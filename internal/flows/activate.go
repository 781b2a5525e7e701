package flows

import (
	"context"
	"strings"

	"github.com/MrEthical07/coursehub/internal"
	"github.com/MrEthical07/coursehub/jwt"
)

// ActivateFailureKind classifies activation failures.
type ActivateFailureKind int

const (
	ActivateFailureNone ActivateFailureKind = iota
	ActivateFailureMissing
	ActivateFailureDecode
	ActivateFailureRateLimited
	ActivateFailureCodeMismatch
)

type ActivationRateLimiter interface {
	CheckActivation(ctx context.Context, email string) error
	IncrementActivation(ctx context.Context, email string) error
	ResetActivation(ctx context.Context, email string) error
}

// ActivateDeps captures activation dependencies.
type ActivateDeps struct {
	Parse       func(tokenStr string) (*jwt.ActivationClaims, error)
	RateLimiter ActivationRateLimiter
	Warn        func(string, ...any)
}

type ActivateResult struct {
	Failure   ActivateFailureKind
	Err       error
	Candidate jwt.Candidate
}

// RunActivate verifies the ticket and the code. Account creation is left
// to the caller so the unique index decides duplicates.
func RunActivate(ctx context.Context, tokenStr, code string, deps ActivateDeps) ActivateResult {
	tokenStr = strings.TrimSpace(tokenStr)
	code = strings.TrimSpace(code)
	if tokenStr == "" || code == "" {
		return ActivateResult{Failure: ActivateFailureMissing}
	}

	claims, err := deps.Parse(tokenStr)
	if err != nil {
		return ActivateResult{Failure: ActivateFailureDecode, Err: err}
	}
	email := claims.User.Email

	if deps.RateLimiter != nil {
		if err := deps.RateLimiter.CheckActivation(ctx, email); err != nil {
			return ActivateResult{Failure: ActivateFailureRateLimited, Err: err, Candidate: claims.User}
		}
	}

	if !internal.CodesEqual(claims.ActivationCode, code) {
		if deps.RateLimiter != nil {
			if err := deps.RateLimiter.IncrementActivation(ctx, email); err != nil && deps.Warn != nil {
				deps.Warn("activation attempt counter failed", "error", err)
			}
		}
		return ActivateResult{Failure: ActivateFailureCodeMismatch, Candidate: claims.User}
	}

	if deps.RateLimiter != nil {
		if err := deps.RateLimiter.ResetActivation(ctx, email); err != nil && deps.Warn != nil {
			deps.Warn("activation attempt reset failed", "error", err)
		}
	}
	return ActivateResult{Candidate: claims.User}
}
