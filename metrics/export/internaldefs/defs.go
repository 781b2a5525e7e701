package internaldefs

import (
	"github.com/MrEthical07/coursehub"
)

// CounterDef names a counter for exporters.
type CounterDef struct {
	ID   coursehub.MetricID
	Name string
	Help string
}

// HistogramDef names a latency histogram for exporters.
type HistogramDef struct {
	ID   coursehub.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter exported for audit backpressure drops.
const AuditDroppedName = "coursehub_audit_dropped_total"

// CounterDefs lists every engine counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: coursehub.MetricRegisterRequest, Name: "coursehub_register_request_total", Help: "Registration requests that issued an activation ticket."},
	{ID: coursehub.MetricRegisterDuplicate, Name: "coursehub_register_duplicate_total", Help: "Registrations rejected because the email exists."},
	{ID: coursehub.MetricRegisterRateLimited, Name: "coursehub_register_rate_limited_total", Help: "Rate-limited registration requests."},
	{ID: coursehub.MetricActivationSuccess, Name: "coursehub_activation_success_total", Help: "Accounts created by activation."},
	{ID: coursehub.MetricActivationFailure, Name: "coursehub_activation_failure_total", Help: "Failed activations."},
	{ID: coursehub.MetricActivationCodeMismatch, Name: "coursehub_activation_code_mismatch_total", Help: "Activations with a wrong code."},
	{ID: coursehub.MetricActivationRateLimited, Name: "coursehub_activation_rate_limited_total", Help: "Activations blocked by the wrong-code budget."},
	{ID: coursehub.MetricLoginSuccess, Name: "coursehub_login_success_total", Help: "Successful password logins."},
	{ID: coursehub.MetricLoginFailure, Name: "coursehub_login_failure_total", Help: "Failed password logins."},
	{ID: coursehub.MetricLoginRateLimited, Name: "coursehub_login_rate_limited_total", Help: "Rate-limited login attempts."},
	{ID: coursehub.MetricSocialLoginCreated, Name: "coursehub_social_login_created_total", Help: "Social logins that created an account."},
	{ID: coursehub.MetricSocialLoginExisting, Name: "coursehub_social_login_existing_total", Help: "Social logins for existing accounts."},
	{ID: coursehub.MetricRefreshSuccess, Name: "coursehub_refresh_success_total", Help: "Successful token refreshes."},
	{ID: coursehub.MetricRefreshFailure, Name: "coursehub_refresh_failure_total", Help: "Refreshes rejected for a missing, invalid or expired token."},
	{ID: coursehub.MetricRefreshRevoked, Name: "coursehub_refresh_revoked_total", Help: "Refreshes rejected because the session was revoked."},
	{ID: coursehub.MetricRefreshRateLimited, Name: "coursehub_refresh_rate_limited_total", Help: "Rate-limited refreshes."},
	{ID: coursehub.MetricSessionCreated, Name: "coursehub_session_created_total", Help: "Session snapshots written at login."},
	{ID: coursehub.MetricSessionInvalidated, Name: "coursehub_session_invalidated_total", Help: "Session snapshots deleted."},
	{ID: coursehub.MetricLogout, Name: "coursehub_logout_total", Help: "Logout calls."},
	{ID: coursehub.MetricProfileUpdate, Name: "coursehub_profile_update_total", Help: "Profile updates."},
	{ID: coursehub.MetricPasswordChangeSuccess, Name: "coursehub_password_change_success_total", Help: "Successful password changes."},
	{ID: coursehub.MetricPasswordChangeInvalidOld, Name: "coursehub_password_change_invalid_old_total", Help: "Password changes with a wrong old password."},
	{ID: coursehub.MetricPasswordChangeReuseRejected, Name: "coursehub_password_change_reuse_rejected_total", Help: "Password changes rejected because new equals old."},
	{ID: coursehub.MetricAvatarUpdate, Name: "coursehub_avatar_update_total", Help: "Avatar uploads."},
	{ID: coursehub.MetricAuthenticateFailure, Name: "coursehub_authenticate_failure_total", Help: "Requests rejected by the authentication gate."},
	{ID: coursehub.MetricAuthorizationDenied, Name: "coursehub_authorization_denied_total", Help: "Requests rejected by the role gate."},
	{ID: coursehub.MetricRateLimitHit, Name: "coursehub_rate_limit_hit_total", Help: "Rate-limit checks that denied requests."},
	{ID: coursehub.MetricMailFailure, Name: "coursehub_mail_failure_total", Help: "Activation mails that could not be sent."},
}

// HistogramDefs lists every latency histogram.
var HistogramDefs = []HistogramDef{
	{ID: coursehub.MetricAuthenticateLatency, Name: "coursehub_authenticate_latency_seconds", Help: "Authentication gate latency."},
	{ID: coursehub.MetricLoginLatency, Name: "coursehub_login_latency_seconds", Help: "Password login latency."},
	{ID: coursehub.MetricRefreshLatency, Name: "coursehub_refresh_latency_seconds", Help: "Token refresh latency."},
}

// HistogramBounds are the upper bounds (seconds) of the engine buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix renders HistogramBounds as instrument-name suffixes.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// CumulativeBuckets converts raw per-bucket counts into cumulative counts,
// padding or truncating to the eight engine buckets.
func CumulativeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(out); i++ {
		if i < len(raw) {
			running += raw[i]
		}
		out[i] = running
	}
	return out
}
