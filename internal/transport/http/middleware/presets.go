package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/infra/config"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/usecase"
)

// Gate preset names. Presets only pre-bind endpoint-appropriate
// configuration; they add no semantics of their own.
const (
	GateLogin            = "login"
	GatePasswordReset    = "password-reset"
	GateSecurityQuestion = "security-question"
)

// LoginGate rate-limits login attempts under the configured login threshold.
func (g *Gates) LoginGate(cfg config.GateSettings) gin.HandlerFunc {
	return g.RateLimit(RateLimitConfig{
		Policy: policyFromSettings(GateLogin, cfg.LoginMaxAttempts, cfg),
	})
}

// PasswordResetGate rate-limits password reset requests. Reset is the most
// abusable endpoint class, so its threshold is tighter than login's.
func (g *Gates) PasswordResetGate(cfg config.GateSettings) gin.HandlerFunc {
	return g.RateLimit(RateLimitConfig{
		Policy: policyFromSettings(GatePasswordReset, cfg.PasswordResetMaxAttempts, cfg),
	})
}

// SecurityQuestionGate rate-limits security-question verification attempts.
func (g *Gates) SecurityQuestionGate(cfg config.GateSettings) gin.HandlerFunc {
	return g.RateLimit(RateLimitConfig{
		Policy: policyFromSettings(GateSecurityQuestion, cfg.SecurityQuestionMaxAttempts, cfg),
	})
}

// PoliciesFromSettings materializes every preset policy, keyed by gate name.
// Handlers use this for read-only status lookups.
func PoliciesFromSettings(cfg config.GateSettings) map[string]usecase.GatePolicy {
	return map[string]usecase.GatePolicy{
		GateLogin:            policyFromSettings(GateLogin, cfg.LoginMaxAttempts, cfg),
		GatePasswordReset:    policyFromSettings(GatePasswordReset, cfg.PasswordResetMaxAttempts, cfg),
		GateSecurityQuestion: policyFromSettings(GateSecurityQuestion, cfg.SecurityQuestionMaxAttempts, cfg),
	}
}

func policyFromSettings(name string, maxAttempts int, cfg config.GateSettings) usecase.GatePolicy {
	return usecase.GatePolicy{
		Name:            name,
		MaxAttempts:     maxAttempts,
		Window:          cfg.Window,
		LockoutDuration: cfg.LockoutDuration,
		BaseDelay:       cfg.BaseDelay,
		MaxDelay:        cfg.MaxDelay,
	}
}
