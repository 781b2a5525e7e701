package coursehub

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// LintSeverity ranks configuration warnings.
type LintSeverity int

const (
	LintInfo LintSeverity = iota
	LintWarn
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "INFO"
	case LintWarn:
		return "WARN"
	case LintHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// LintWarning is a configuration choice that is valid but worth a second look.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintResult is the ordered set of warnings returned by Config.Lint.
type LintResult []LintWarning

// Codes returns the warning codes in order.
func (r LintResult) Codes() []string {
	out := make([]string, 0, len(r))
	for _, w := range r {
		out = append(out, w.Code)
	}
	return out
}

// BySeverity returns the warnings at or above min.
func (r LintResult) BySeverity(min LintSeverity) LintResult {
	var out LintResult
	for _, w := range r {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// AsError folds warnings at or above min into one error, or nil.
func (r LintResult) AsError(min LintSeverity) error {
	hits := r.BySeverity(min)
	if len(hits) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(hits))
	for _, w := range hits {
		msgs = append(msgs, fmt.Sprintf("[%s] %s: %s", w.Severity, w.Code, w.Message))
	}
	return errors.New("config lint: " + strings.Join(msgs, "; "))
}

// Lint reports risky but valid settings. It never fails; call Validate for
// hard errors.
func (c Config) Lint() LintResult {
	var ws LintResult
	add := func(code string, sev LintSeverity, format string, args ...any) {
		ws = append(ws, LintWarning{Code: code, Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	if c.Tokens.Leeway > 30*time.Second {
		add("leeway_large", LintWarn, "leeway %s widens the expiry window", c.Tokens.Leeway)
	}
	if c.Tokens.AccessTTL > 15*time.Minute {
		add("access_ttl_long", LintWarn, "access tokens live %s and cannot be revoked before expiry on JWT-only routes", c.Tokens.AccessTTL)
	}
	if c.Tokens.RefreshTTL > 30*24*time.Hour {
		add("refresh_ttl_long", LintInfo, "refresh tokens live %s", c.Tokens.RefreshTTL)
	}
	if c.Tokens.ActivationTTL > 30*time.Minute {
		add("activation_ttl_long", LintWarn, "activation tickets live %s; four-digit codes are guessable over long windows", c.Tokens.ActivationTTL)
	}
	if c.Security.MaxActivationAttempts == 0 {
		add("activation_unthrottled", LintWarn, "wrong activation codes are not limited")
	}
	if c.Security.MaxLoginAttempts == 0 && c.Security.MaxRefreshAttempts == 0 && c.Security.MaxRegistrationsPerIP == 0 {
		add("rate_limits_disabled", LintHigh, "login, refresh and registration limits are all disabled")
	}
	if !c.Security.EnableIPThrottle {
		add("ip_throttle_disabled", LintInfo, "login throttling is per email only")
	}
	if c.Session.CacheTTL > 0 && c.Session.CacheTTL < c.Tokens.RefreshTTL {
		add("session_shorter_than_refresh", LintWarn, "session records expire before refresh tokens")
	}
	if c.Password.Memory < 64*1024 {
		add("argon2_memory_low", LintWarn, "argon2 memory %d KB is below 64 MB", c.Password.Memory)
	}
	if !c.Audit.Enabled {
		add("audit_disabled", LintInfo, "audit events are discarded")
	}
	return ws
}
