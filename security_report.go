package coursehub

import (
	"time"

	"github.com/MrEthical07/coursehub/internal/security"
)

// SecurityReport summarizes the effective security posture of an Engine.
type SecurityReport struct {
	ProductionMode     bool
	SigningAlgorithm   string
	ActivationTTL      time.Duration
	AccessTTL          time.Duration
	RefreshTTL         time.Duration
	SessionCacheTTL    time.Duration
	SessionsExpire     bool
	Argon2             PasswordConfigReport
	LoginThrottle      bool
	ActivationThrottle bool
	RefreshThrottle    bool
	IPThrottle         bool
	AuditEnabled       bool
	LintWarnings       []string
}

type PasswordConfigReport = security.PasswordReport

func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}
	cfg := e.config
	r := security.BuildReport(security.ReportInput{
		ProductionMode:   cfg.Security.ProductionMode,
		SigningAlgorithm: "HS256",
		ActivationTTL:    cfg.Tokens.ActivationTTL,
		AccessTTL:        cfg.Tokens.AccessTTL,
		RefreshTTL:       cfg.Tokens.RefreshTTL,
		SessionCacheTTL:  cfg.Session.CacheTTL,
		Password: security.PasswordReport{
			Memory:      cfg.Password.Memory,
			Time:        cfg.Password.Time,
			Parallelism: cfg.Password.Parallelism,
			SaltLength:  cfg.Password.SaltLength,
			KeyLength:   cfg.Password.KeyLength,
		},
		MaxLoginAttempts:           cfg.Security.MaxLoginAttempts,
		LoginCooldownDuration:      cfg.Security.LoginCooldownDuration,
		MaxActivationAttempts:      cfg.Security.MaxActivationAttempts,
		ActivationCooldownDuration: cfg.Security.ActivationCooldownDuration,
		MaxRefreshAttempts:         cfg.Security.MaxRefreshAttempts,
		RefreshCooldownDuration:    cfg.Security.RefreshCooldownDuration,
		EnableIPThrottle:           cfg.Security.EnableIPThrottle,
		AuditEnabled:               cfg.Audit.Enabled,
	})

	return SecurityReport{
		ProductionMode:     r.ProductionMode,
		SigningAlgorithm:   r.SigningAlgorithm,
		ActivationTTL:      r.ActivationTTL,
		AccessTTL:          r.AccessTTL,
		RefreshTTL:         r.RefreshTTL,
		SessionCacheTTL:    r.SessionCacheTTL,
		SessionsExpire:     r.SessionsExpire,
		Argon2:             r.Argon2,
		LoginThrottle:      r.LoginThrottle,
		ActivationThrottle: r.ActivationThrottle,
		RefreshThrottle:    r.RefreshThrottle,
		IPThrottle:         r.IPThrottle,
		AuditEnabled:       r.AuditEnabled,
		LintWarnings:       cfg.Lint().Codes(),
	}
}
