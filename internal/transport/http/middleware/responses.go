package middleware

// Stable machine-readable rejection codes surfaced by the gates.
const (
	CodeCSRFTokenMissing = "CSRF_TOKEN_MISSING"
	CodeCSRFTokenInvalid = "CSRF_TOKEN_INVALID"
	CodeAccountLocked    = "ACCOUNT_LOCKED"
)

// GateError is the response body for CSRF rejections.
type GateError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// LockoutError is the response body for lockout rejections. RetryAfter is
// whole seconds until the lockout lifts.
type LockoutError struct {
	Error      string `json:"error"`
	Code       string `json:"code"`
	RetryAfter int    `json:"retryAfter"`
}
