package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/port"
)

// HMACCSRFCodec is the secret-bound variant of the CSRF codec: tokens are
// base64("<unixMillis>:<nonce>:<hmac-sha256>") with the MAC computed over the
// timestamp and nonce. A token minted without the secret fails validation,
// closing the forgery gap the plain time-bound codec documents.
type HMACCSRFCodec struct {
	secret []byte
	now    func() time.Time
}

// NewHMACCSRFCodec constructs the codec. An empty secret is a configuration
// error and fails fast rather than producing forgeable tokens.
func NewHMACCSRFCodec(secret string) (*HMACCSRFCodec, error) {
	if secret == "" {
		return nil, errors.New("csrf: hmac secret is required")
	}

	return &HMACCSRFCodec{secret: []byte(secret), now: time.Now}, nil
}

// WithClock injects a custom clock (primarily for testing).
func (c *HMACCSRFCodec) WithClock(now func() time.Time) *HMACCSRFCodec {
	if now != nil {
		c.now = now
	}
	return c
}

// Issue returns a fresh signed token.
func (c *HMACCSRFCodec) Issue() (string, error) {
	nonce, err := GenerateSecureToken(csrfNonceBytes)
	if err != nil {
		return "", err
	}

	body := strconv.FormatInt(c.now().UnixMilli(), 10) + ":" + nonce
	payload := body + ":" + c.sign(body)
	return base64.StdEncoding.EncodeToString([]byte(payload)), nil
}

// Validate checks the signature first, then the same age bounds as the plain
// codec. Fails closed on any malformation.
func (c *HMACCSRFCodec) Validate(token string, maxAge time.Duration) bool {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return false
	}

	parts := strings.Split(string(raw), ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return false
	}

	body := parts[0] + ":" + parts[1]
	if !hmac.Equal([]byte(c.sign(body)), []byte(parts[2])) {
		return false
	}

	millis, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || millis < 0 {
		return false
	}

	return freshEnough(time.UnixMilli(millis), c.now(), maxAge)
}

func (c *HMACCSRFCodec) sign(body string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

var _ port.CSRFTokenCodec = (*HMACCSRFCodec)(nil)
