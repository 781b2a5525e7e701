package coursehub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrEthical07/coursehub/internal/flows"
	"github.com/MrEthical07/coursehub/jwt"
	"github.com/MrEthical07/coursehub/password"
)

// Register starts a two-phase signup. It checks that the email is free,
// hashes the password, signs an activation ticket carrying a four-digit
// code and mails the code. Nothing is persisted until Activate.
//
// Register returns ErrDuplicateEmail when the email is taken and
// ErrMailUnavailable when the code could not be sent; no ticket is returned
// in either case.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if err := req.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	res := e.flow.Register(ctx, flows.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})

	switch res.Failure {
	case flows.RegisterFailureNone:
	case flows.RegisterFailureRateLimited:
		err := limiterError(res.Err, ErrRegisterLimited)
		if errors.Is(err, ErrRegisterLimited) {
			e.metricInc(MetricRegisterRateLimited)
			e.emitRateLimit(ctx, "register", res.Email)
		}
		return nil, err
	case flows.RegisterFailureDuplicate:
		e.metricInc(MetricRegisterDuplicate)
		e.emitAudit(ctx, auditEventRegisterDuplicate, false, "", res.Email, ErrDuplicateEmail, nil)
		return nil, ErrDuplicateEmail
	case flows.RegisterFailureHash:
		if errors.Is(res.Err, password.ErrPasswordPolicy) {
			return nil, fmt.Errorf("%w: %v", ErrPasswordPolicy, res.Err)
		}
		return nil, fmt.Errorf("hash password: %w", res.Err)
	case flows.RegisterFailureDeliver:
		e.metricInc(MetricMailFailure)
		e.logger.Error(ctx, "activation mail failed", "email", res.Email, "error", res.Err)
		e.emitAudit(ctx, auditEventRegisterRequest, false, "", res.Email, ErrMailUnavailable, nil)
		return nil, res.Err
	default:
		return nil, fmt.Errorf("register: %w", res.Err)
	}

	e.metricInc(MetricRegisterRequest)
	e.emitAudit(ctx, auditEventRegisterRequest, true, "", res.Email, nil, nil)
	return &RegisterResult{
		ActivationToken: res.Token,
		Email:           res.Email,
		ExpiresAt:       res.ExpiresAt,
	}, nil
}

func (e *Engine) deliverActivation(ctx context.Context, candidate jwt.Candidate, code string) error {
	err := e.mailer.Send(ctx, MailMessage{
		To:       candidate.Email,
		Subject:  e.config.Account.ActivationMailSubject,
		Template: e.config.Account.ActivationMailTemplate,
		Data: map[string]any{
			"user":           map[string]any{"name": candidate.Name},
			"activationCode": code,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMailUnavailable, err)
	}
	return nil
}

// Activate completes a signup. The ticket must verify under the activation
// secret and the code must match; the account is then created with the
// default role. A second activation of the same ticket fails with
// ErrDuplicateEmail because the email is now taken.
func (e *Engine) Activate(ctx context.Context, activationToken, activationCode string) (*User, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if strings.TrimSpace(activationToken) == "" {
		return nil, ErrMissingToken
	}
	if strings.TrimSpace(activationCode) == "" {
		return nil, fmt.Errorf("%w: activation code is required", ErrInvalidInput)
	}

	res := e.flow.Activate(ctx, activationToken, activationCode)
	email := res.Candidate.Email

	var failure error
	switch res.Failure {
	case flows.ActivateFailureNone:
	case flows.ActivateFailureMissing:
		failure = ErrInvalidInput
	case flows.ActivateFailureDecode:
		failure = tokenError(res.Err)
	case flows.ActivateFailureRateLimited:
		failure = limiterError(res.Err, ErrActivationLimited)
		if errors.Is(failure, ErrActivationLimited) {
			e.metricInc(MetricActivationRateLimited)
			e.emitRateLimit(ctx, "activation", email)
		}
	case flows.ActivateFailureCodeMismatch:
		e.metricInc(MetricActivationCodeMismatch)
		failure = ErrCodeMismatch
	default:
		failure = fmt.Errorf("activate: %w", res.Err)
	}
	if failure != nil {
		e.metricInc(MetricActivationFailure)
		e.emitAudit(ctx, auditEventActivationFailure, false, "", email, failure, nil)
		return nil, failure
	}

	created, err := e.users.CreateUser(ctx, &User{
		ID:           uuid.NewString(),
		Name:         res.Candidate.Name,
		Email:        email,
		PasswordHash: res.Candidate.PasswordHash,
		Role:         e.config.Account.DefaultRole,
	})
	if err != nil {
		e.metricInc(MetricActivationFailure)
		if errors.Is(err, ErrDuplicateEmail) {
			e.metricInc(MetricRegisterDuplicate)
			e.emitAudit(ctx, auditEventActivationFailure, false, "", email, ErrDuplicateEmail, nil)
			return nil, ErrDuplicateEmail
		}
		e.emitAudit(ctx, auditEventActivationFailure, false, "", email, err, nil)
		return nil, fmt.Errorf("create user: %w", err)
	}

	e.metricInc(MetricActivationSuccess)
	e.emitAudit(ctx, auditEventActivationSuccess, true, created.ID, email, nil, nil)
	return publicUser(created), nil
}
