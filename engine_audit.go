package coursehub

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventRegisterRequest        = "register_request"
	auditEventRegisterDuplicate      = "register_duplicate"
	auditEventActivationSuccess      = "activation_success"
	auditEventActivationFailure      = "activation_failure"
	auditEventLoginSuccess           = "login_success"
	auditEventLoginFailure           = "login_failure"
	auditEventLoginRateLimited       = "login_rate_limited"
	auditEventSocialLogin            = "social_login"
	auditEventRefreshSuccess         = "refresh_success"
	auditEventRefreshInvalid         = "refresh_invalid"
	auditEventRefreshRevoked         = "refresh_revoked"
	auditEventLogout                 = "logout"
	auditEventProfileUpdate          = "profile_update"
	auditEventPasswordChangeSuccess  = "password_change_success"
	auditEventPasswordChangeFailure  = "password_change_failure"
	auditEventAvatarUpdate           = "avatar_update"
	auditEventAuthenticationRejected = "authentication_rejected"
	auditEventRateLimitTriggered     = "rate_limit_triggered"
)

// AuditErrorCode is the stable error label written to audit events.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrRateLimited        AuditErrorCode = "rate_limited"
	auditErrInvalidToken       AuditErrorCode = "invalid_token"
	auditErrExpiredToken       AuditErrorCode = "expired_token"
	auditErrMissingToken       AuditErrorCode = "missing_token"
	auditErrCodeMismatch       AuditErrorCode = "code_mismatch"
	auditErrSessionRevoked     AuditErrorCode = "session_revoked"
	auditErrUserNotFound       AuditErrorCode = "user_not_found"
	auditErrDuplicate          AuditErrorCode = "duplicate"
	auditErrInvalidInput       AuditErrorCode = "invalid_input"
	auditErrPasswordPolicy     AuditErrorCode = "password_policy"
	auditErrPasswordReuse      AuditErrorCode = "password_reuse"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	email string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func (e *Engine) emitRateLimit(ctx context.Context, scope, email string) {
	e.metricInc(MetricRateLimitHit)
	e.emitAudit(ctx, auditEventRateLimitTriggered, false, "", email, nil, func() map[string]string {
		return map[string]string{"scope": scope}
	})
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrLoginRateLimited),
		errors.Is(err, ErrActivationLimited),
		errors.Is(err, ErrRegisterLimited),
		errors.Is(err, ErrRefreshRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrTokenExpired):
		return auditErrExpiredToken
	case errors.Is(err, ErrTokenInvalid):
		return auditErrInvalidToken
	case errors.Is(err, ErrMissingToken):
		return auditErrMissingToken
	case errors.Is(err, ErrCodeMismatch):
		return auditErrCodeMismatch
	case errors.Is(err, ErrSessionRevoked):
		return auditErrSessionRevoked
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrDuplicateEmail):
		return auditErrDuplicate
	case errors.Is(err, ErrInvalidInput):
		return auditErrInvalidInput
	case errors.Is(err, ErrPasswordPolicy):
		return auditErrPasswordPolicy
	case errors.Is(err, ErrPasswordReuse):
		return auditErrPasswordReuse
	case errors.Is(err, ErrSessionUnavailable),
		errors.Is(err, ErrMailUnavailable),
		errors.Is(err, ErrAvatarUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
