package coursehub

import (
	"context"
	"fmt"
	"time"

	"github.com/MrEthical07/coursehub/internal/flows"
)

// Authenticate verifies an access token. ModeJWTOnly checks the signature
// and expiry only. ModeStrict also requires a live session record and
// returns the cached user.
//
// Every failure to establish the caller wraps ErrUnauthenticated around the
// cause (ErrMissingToken, ErrTokenInvalid, ErrTokenExpired or
// ErrSessionRevoked). A session backend failure returns
// ErrSessionUnavailable instead.
func (e *Engine) Authenticate(ctx context.Context, accessToken string, mode ValidationMode) (*AuthResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	start := time.Now()
	defer e.observeSince(MetricAuthenticateLatency, start)

	flowMode := flows.ModeJWTOnly
	if mode == ModeStrict {
		flowMode = flows.ModeStrict
	}
	res := e.flow.Authenticate(ctx, accessToken, flowMode)

	var cause error
	switch res.Failure {
	case flows.AuthenticateFailureNone:
	case flows.AuthenticateFailureMissing:
		cause = ErrMissingToken
	case flows.AuthenticateFailureDecode:
		cause = tokenError(res.Err)
	case flows.AuthenticateFailureSessionNotFound:
		cause = ErrSessionRevoked
	default:
		e.metricInc(MetricAuthenticateFailure)
		e.logger.Error(ctx, "session lookup failed", "user_id", res.UserID, "error", res.Err)
		return nil, fmt.Errorf("%w: %v", ErrSessionUnavailable, res.Err)
	}
	if cause != nil {
		e.metricInc(MetricAuthenticateFailure)
		e.emitAudit(ctx, auditEventAuthenticationRejected, false, res.UserID, "", cause, func() map[string]string {
			return map[string]string{"mode": mode.String()}
		})
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, cause)
	}

	out := &AuthResult{UserID: res.UserID, Mode: mode}
	if res.Snapshot != nil {
		u, err := userFromSnapshot(res.Snapshot)
		if err != nil {
			e.metricInc(MetricAuthenticateFailure)
			return nil, fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
		}
		out.User = u
		out.Role = u.Role
	}
	return out, nil
}

// Authorize reports ErrForbidden unless res carries one of roles. It needs
// a strict-mode result, since only the session record carries the role.
func (e *Engine) Authorize(ctx context.Context, res *AuthResult, roles ...string) error {
	if res == nil || res.Role == "" {
		e.metricInc(MetricAuthorizationDenied)
		return ErrForbidden
	}
	for _, role := range roles {
		if res.Role == role {
			return nil
		}
	}
	e.metricInc(MetricAuthorizationDenied)
	e.logger.Warn(ctx, "role not allowed", "user_id", res.UserID, "role", res.Role)
	return fmt.Errorf("%w: role %s", ErrForbidden, res.Role)
}
