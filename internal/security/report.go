package security

import "time"

type PasswordReport struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Report is the derived security posture of a running engine.
type Report struct {
	ProductionMode     bool
	SigningAlgorithm   string
	ActivationTTL      time.Duration
	AccessTTL          time.Duration
	RefreshTTL         time.Duration
	SessionCacheTTL    time.Duration
	SessionsExpire     bool
	Argon2             PasswordReport
	LoginThrottle      bool
	ActivationThrottle bool
	RefreshThrottle    bool
	IPThrottle         bool
	AuditEnabled       bool
}

type ReportInput struct {
	ProductionMode             bool
	SigningAlgorithm           string
	ActivationTTL              time.Duration
	AccessTTL                  time.Duration
	RefreshTTL                 time.Duration
	SessionCacheTTL            time.Duration
	Password                   PasswordReport
	MaxLoginAttempts           int
	LoginCooldownDuration      time.Duration
	MaxActivationAttempts      int
	ActivationCooldownDuration time.Duration
	MaxRefreshAttempts         int
	RefreshCooldownDuration    time.Duration
	EnableIPThrottle           bool
	AuditEnabled               bool
}

// BuildReport derives flags from raw settings. A limit only counts as
// active when it also has a cooldown.
func BuildReport(input ReportInput) Report {
	return Report{
		ProductionMode:     input.ProductionMode,
		SigningAlgorithm:   input.SigningAlgorithm,
		ActivationTTL:      input.ActivationTTL,
		AccessTTL:          input.AccessTTL,
		RefreshTTL:         input.RefreshTTL,
		SessionCacheTTL:    input.SessionCacheTTL,
		SessionsExpire:     input.SessionCacheTTL > 0,
		Argon2:             input.Password,
		LoginThrottle:      input.MaxLoginAttempts > 0 && input.LoginCooldownDuration > 0,
		ActivationThrottle: input.MaxActivationAttempts > 0 && input.ActivationCooldownDuration > 0,
		RefreshThrottle:    input.MaxRefreshAttempts > 0 && input.RefreshCooldownDuration > 0,
		IPThrottle:         input.EnableIPThrottle && input.MaxLoginAttempts > 0,
		AuditEnabled:       input.AuditEnabled,
	}
}
