package security

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/port"
)

// DefaultCSRFMaxAge is applied when a caller validates with a zero max age.
const DefaultCSRFMaxAge = time.Hour

const csrfNonceBytes = 16

// CSRFCodec issues and validates stateless, time-bounded anti-forgery
// tokens. A token is base64("<unixMillis>:<nonce>") and expires purely by age
// at validation time; nothing is stored server side.
//
// The scheme binds a token to time only, not to a session or origin secret,
// so any party that knows the format can mint a structurally valid token.
// It defends against replay of stale tokens, not against an attacker who can
// read the format. HMACCSRFCodec provides the secret-bound variant behind
// the same interface.
type CSRFCodec struct {
	now func() time.Time
}

// NewCSRFCodec constructs the time-bound codec.
func NewCSRFCodec() *CSRFCodec {
	return &CSRFCodec{now: time.Now}
}

// WithClock injects a custom clock (primarily for testing).
func (c *CSRFCodec) WithClock(now func() time.Time) *CSRFCodec {
	if now != nil {
		c.now = now
	}
	return c
}

// Issue returns a fresh token. Every call produces a distinct value.
func (c *CSRFCodec) Issue() (string, error) {
	nonce, err := GenerateSecureToken(csrfNonceBytes)
	if err != nil {
		return "", err
	}

	payload := strconv.FormatInt(c.now().UnixMilli(), 10) + ":" + nonce
	return base64.StdEncoding.EncodeToString([]byte(payload)), nil
}

// Validate reports whether the token is well formed and within maxAge. It
// fails closed: undecodable or malformed input is simply invalid.
func (c *CSRFCodec) Validate(token string, maxAge time.Duration) bool {
	issuedAt, _, ok := decodeCSRFPayload(token)
	if !ok {
		return false
	}
	return freshEnough(issuedAt, c.now(), maxAge)
}

func decodeCSRFPayload(token string) (issuedAt time.Time, nonce string, ok bool) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, "", false
	}

	parts := strings.Split(string(raw), ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return time.Time{}, "", false
	}

	millis, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || millis < 0 {
		return time.Time{}, "", false
	}

	return time.UnixMilli(millis), parts[1], true
}

// freshEnough enforces the age bounds: issuedAt must not be in the future and
// must be no older than maxAge. Clock-skew tolerance is zero.
func freshEnough(issuedAt, now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		maxAge = DefaultCSRFMaxAge
	}

	age := now.Sub(issuedAt)
	if age < 0 {
		return false
	}
	return age <= maxAge
}

var _ port.CSRFTokenCodec = (*CSRFCodec)(nil)
