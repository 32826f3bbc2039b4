package handlers

import "time"

// CSRFTokenResponse carries a freshly issued anti-forgery token.
type CSRFTokenResponse struct {
	CSRFToken string `json:"csrfToken"`
}

// GateStatusResponse is the read-only view of a rate-limit key.
type GateStatusResponse struct {
	Attempts     int        `json:"attempts"`
	Locked       bool       `json:"locked"`
	LockoutUntil *time.Time `json:"lockoutUntil"`
	NextDelayMs  int64      `json:"nextDelayMs"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// ErrorResponse is the generic handler-level error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
