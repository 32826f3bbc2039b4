package port

import "time"

// CSRFTokenCodec produces and validates stateless anti-forgery tokens. The
// codec never stores tokens server side; validity is derived entirely from
// the token's own contents. Validate must fail closed: malformed input yields
// false, never an error or panic.
type CSRFTokenCodec interface {
	Issue() (string, error)
	Validate(token string, maxAge time.Duration) bool
}
