package coursehub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/coursehub/internal"
	internalaudit "github.com/MrEthical07/coursehub/internal/audit"
	"github.com/MrEthical07/coursehub/internal/flows"
	"github.com/MrEthical07/coursehub/internal/logging"
	"github.com/MrEthical07/coursehub/internal/rate"
	"github.com/MrEthical07/coursehub/jwt"
	"github.com/MrEthical07/coursehub/password"
	"github.com/MrEthical07/coursehub/session"
)

// Engine runs registration, activation, login, refresh, logout and the
// authentication gate. It is safe for concurrent use once built.
type Engine struct {
	config    Config
	codec     *jwt.Codec
	sessions  *session.Store
	limiter   *rate.Limiter
	hasher    *password.Argon2
	dummyHash string
	users     UserStore
	mailer    Mailer
	avatars   AvatarStore
	audit     *internalaudit.Dispatcher
	metrics   *Metrics
	logger    logging.Logger
	flow      flows.Service
}

func (e *Engine) buildFlows() flows.Service {
	issue := flows.IssueDeps{
		Access:   e.codec.Access,
		Refresh:  e.codec.Refresh,
		Sessions: e.sessions,
	}
	return flows.New(flows.Deps{
		Register: flows.RegisterDeps{
			ClientIP:    clientIPFromContext,
			EmailExists: e.users.EmailExists,
			Hash:        e.hasher.Hash,
			NewCode:     internal.NewActivationCode,
			Issue:       e.codec.Activation.IssueActivation,
			Deliver:     e.deliverActivation,
			RateLimiter: e.limiter,
		},
		Activate: flows.ActivateDeps{
			Parse:       e.codec.Activation.ParseActivation,
			RateLimiter: e.limiter,
			Warn:        e.warn,
		},
		Login: flows.LoginDeps{
			ClientIP:     clientIPFromContext,
			Lookup:       e.lookupCredential,
			Verify:       e.hasher.Verify,
			DummyHash:    e.dummyHash,
			UserNotFound: ErrUserNotFound,
			RateLimiter:  e.limiter,
			Warn:         e.warn,
		},
		Issue: issue,
		Refresh: flows.RefreshDeps{
			Parser:      e.codec.Refresh,
			Sessions:    e.sessions,
			RateLimiter: e.limiter,
			Issue:       issue,
		},
		Authenticate: flows.AuthenticateDeps{
			Parser:   e.codec.Access,
			Sessions: e.sessions,
		},
		Logout: flows.LogoutDeps{
			Sessions: e.sessions,
		},
	})
}

// Close drains the audit dispatcher.
func (e *Engine) Close(ctx context.Context) error {
	if e == nil {
		return nil
	}
	return e.audit.Close(ctx)
}

// Config returns a copy of the effective configuration.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

// Ping checks the session backend.
func (e *Engine) Ping(ctx context.Context) error {
	if e == nil || e.sessions == nil {
		return ErrEngineNotReady
	}
	if _, err := e.sessions.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	return nil
}

func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) observeSince(id MetricID, start time.Time) {
	if e == nil || !e.metrics.LatencyEnabled() {
		return
	}
	e.metrics.Observe(id, time.Since(start))
}

func (e *Engine) ready() bool {
	return e != nil && e.flow.Initialized()
}

func (e *Engine) warn(msg string, args ...any) {
	e.logger.Warn(context.Background(), msg, args...)
}

// snapshotFor serializes u for the session cache. PasswordHash is dropped
// by its json tag.
func snapshotFor(u *User) (*session.Snapshot, error) {
	raw, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	return &session.Snapshot{UserID: u.ID, Role: u.Role, User: raw}, nil
}

func userFromSnapshot(snap *session.Snapshot) (*User, error) {
	var u User
	if err := json.Unmarshal(snap.User, &u); err != nil {
		return nil, fmt.Errorf("%w: %v", session.ErrSnapshotCorrupt, err)
	}
	if u.ID == "" {
		u.ID = snap.UserID
	}
	if u.Role == "" {
		u.Role = snap.Role
	}
	return &u, nil
}

// saveSnapshot overwrites the cached user after a profile mutation.
func (e *Engine) saveSnapshot(ctx context.Context, u *User) error {
	snap, err := snapshotFor(u)
	if err != nil {
		return err
	}
	if err := e.sessions.Save(ctx, snap); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	return nil
}

func (e *Engine) lookupCredential(ctx context.Context, email string) (*flows.LoginCredential, error) {
	u, err := e.users.UserByEmailWithPassword(ctx, email)
	if err != nil {
		return nil, err
	}
	return &flows.LoginCredential{UserID: u.ID, PasswordHash: u.PasswordHash}, nil
}

// tokenError maps codec failures onto the public sentinels.
func tokenError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrTokenExpired
	}
	return ErrTokenInvalid
}

// limiterError separates a spent budget from a Redis failure.
func limiterError(err error, limited error) error {
	if errors.Is(err, rate.ErrRateLimited) {
		return limited
	}
	return fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
}

func publicUser(u *User) *User {
	if u == nil {
		return nil
	}
	out := *u
	out.PasswordHash = ""
	return &out
}
