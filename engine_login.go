package coursehub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/coursehub/internal/flows"
)

// Login verifies email and password, issues a token pair and writes the
// session record.
//
// Unknown emails, accounts without a password and wrong passwords all
// return ErrInvalidCredentials. Repeated failures return
// ErrLoginRateLimited until the cooldown passes.
func (e *Engine) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	start := time.Now()
	defer e.observeSince(MetricLoginLatency, start)

	res := e.flow.Login(ctx, email, password)

	var failure error
	switch res.Failure {
	case flows.LoginFailureNone:
	case flows.LoginFailureInput:
		failure = fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	case flows.LoginFailureRateLimited:
		failure = limiterError(res.Err, ErrLoginRateLimited)
		if errors.Is(failure, ErrLoginRateLimited) {
			e.metricInc(MetricLoginRateLimited)
			e.emitAudit(ctx, auditEventLoginRateLimited, false, "", res.Email, failure, nil)
			e.emitRateLimit(ctx, "login", res.Email)
			return nil, failure
		}
	case flows.LoginFailureInvalidCredentials:
		failure = ErrInvalidCredentials
	case flows.LoginFailureVerify:
		e.logger.Error(ctx, "stored password hash unusable", "email", res.Email, "error", res.Err)
		failure = ErrInvalidCredentials
	default:
		failure = fmt.Errorf("login: %w", res.Err)
	}
	if failure != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", res.Email, failure, nil)
		return nil, failure
	}

	user, err := e.users.UserByID(ctx, res.UserID)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		return nil, fmt.Errorf("load user: %w", err)
	}
	e.maybeUpgradeHash(ctx, res.UserID, password, res.PasswordHash)

	tokens, err := e.startSession(ctx, user)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, res.Email, err, nil)
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.ID, res.Email, nil, nil)
	return &LoginResult{User: publicUser(user), Tokens: *tokens}, nil
}

// SocialAuth logs in the account for an identity asserted by an external
// provider, creating it without a password on first sight. The caller is
// responsible for having verified the provider assertion.
func (e *Engine) SocialAuth(ctx context.Context, req SocialAuthRequest) (*LoginResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if err := req.Validate(); err != nil {
		return nil, invalidInput(err)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	created := false
	user, err := e.users.UserByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, ErrUserNotFound):
		user, err = e.users.CreateUser(ctx, &User{
			ID:         uuid.NewString(),
			Name:       strings.TrimSpace(req.Name),
			Email:      email,
			Role:       e.config.Account.DefaultRole,
			IsVerified: true,
			Avatar:     Avatar{URL: strings.TrimSpace(req.Avatar)},
		})
		if errors.Is(err, ErrDuplicateEmail) {
			// Lost a race with a concurrent first login.
			user, err = e.users.UserByEmail(ctx, email)
		} else {
			created = err == nil
		}
		if err != nil {
			return nil, fmt.Errorf("social account: %w", err)
		}
	default:
		return nil, fmt.Errorf("social lookup: %w", err)
	}

	tokens, err := e.startSession(ctx, user)
	if err != nil {
		return nil, err
	}

	if created {
		e.metricInc(MetricSocialLoginCreated)
	} else {
		e.metricInc(MetricSocialLoginExisting)
	}
	e.emitAudit(ctx, auditEventSocialLogin, true, user.ID, email, nil, func() map[string]string {
		if created {
			return map[string]string{"created": "true"}
		}
		return nil
	})
	return &LoginResult{User: publicUser(user), Tokens: *tokens, Created: created}, nil
}

// startSession issues a pair for u and writes its session record.
func (e *Engine) startSession(ctx context.Context, u *User) (*TokenPair, error) {
	snap, err := snapshotFor(publicUser(u))
	if err != nil {
		return nil, err
	}
	issued := e.flow.Issue(ctx, snap)
	switch issued.Failure {
	case flows.IssueFailureNone:
	case flows.IssueFailureSession:
		return nil, fmt.Errorf("%w: %v", ErrSessionUnavailable, issued.Err)
	default:
		return nil, fmt.Errorf("issue tokens: %w", issued.Err)
	}
	e.metricInc(MetricSessionCreated)
	return &TokenPair{
		AccessToken:      issued.AccessToken,
		RefreshToken:     issued.RefreshToken,
		AccessExpiresAt:  issued.AccessExpiresAt,
		RefreshExpiresAt: issued.RefreshExpiresAt,
	}, nil
}

func (e *Engine) maybeUpgradeHash(ctx context.Context, userID, password, encoded string) {
	if !e.config.Password.UpgradeOnLogin || encoded == "" {
		return
	}
	needs, err := e.hasher.NeedsUpgrade(encoded)
	if err != nil || !needs {
		return
	}
	next, err := e.hasher.Hash(password)
	if err != nil {
		return
	}
	if err := e.users.UpdatePasswordHash(ctx, userID, next); err != nil {
		e.logger.Warn(ctx, "password rehash failed", "user_id", userID, "error", err)
	}
}
