package coursehub

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/coursehub/internal/flows"
)

// Refresh exchanges a refresh token for a new pair. It succeeds only while
// the session record for the token subject exists; after Logout it returns
// ErrSessionRevoked. An expired token returns ErrTokenExpired even when the
// record is still present.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	start := time.Now()
	defer e.observeSince(MetricRefreshLatency, start)

	res := e.flow.Refresh(ctx, refreshToken)

	switch res.Failure {
	case flows.RefreshFailureNone:
	case flows.RefreshFailureMissing:
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", "", ErrMissingToken, nil)
		return nil, ErrMissingToken
	case flows.RefreshFailureDecode:
		err := tokenError(res.Err)
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", "", err, nil)
		return nil, err
	case flows.RefreshFailureRateLimited:
		err := limiterError(res.Err, ErrRefreshRateLimited)
		if errors.Is(err, ErrRefreshRateLimited) {
			e.metricInc(MetricRefreshRateLimited)
			e.emitRateLimit(ctx, "refresh", "")
		}
		return nil, err
	case flows.RefreshFailureSessionNotFound:
		e.metricInc(MetricRefreshRevoked)
		e.emitAudit(ctx, auditEventRefreshRevoked, false, res.UserID, "", ErrSessionRevoked, nil)
		return nil, ErrSessionRevoked
	case flows.RefreshFailureSessionBackend:
		e.metricInc(MetricRefreshFailure)
		e.logger.Error(ctx, "session lookup failed", "user_id", res.UserID, "error", res.Err)
		return nil, fmt.Errorf("%w: %v", ErrSessionUnavailable, res.Err)
	default:
		e.metricInc(MetricRefreshFailure)
		if res.Tokens.Failure == flows.IssueFailureSession {
			return nil, fmt.Errorf("%w: %v", ErrSessionUnavailable, res.Err)
		}
		return nil, fmt.Errorf("refresh: %w", res.Err)
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, res.UserID, "", nil, nil)
	return &TokenPair{
		AccessToken:      res.Tokens.AccessToken,
		RefreshToken:     res.Tokens.RefreshToken,
		AccessExpiresAt:  res.Tokens.AccessExpiresAt,
		RefreshExpiresAt: res.Tokens.RefreshExpiresAt,
	}, nil
}
