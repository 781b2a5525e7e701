package coursehub

import (
	"context"
	"fmt"
	"strings"
)

// Logout removes the session record for userID. Any refresh token issued
// for it stops working. Logging out twice succeeds both times.
func (e *Engine) Logout(ctx context.Context, userID string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if err := e.flow.Logout(ctx, userID); err != nil {
		e.logger.Error(ctx, "session delete failed", "user_id", userID, "error", err)
		return fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}

	e.metricInc(MetricLogout)
	e.metricInc(MetricSessionInvalidated)
	e.emitAudit(ctx, auditEventLogout, true, userID, "", nil, nil)
	return nil
}
