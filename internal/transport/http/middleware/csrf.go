package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/domain"
	appLogger "github.com/Kashawn-Brown/Career-Tracker-sub001/internal/infra/logger"
)

// CSRF token transport locations.
const (
	CSRFTokenHeader = "x-csrf-token"
	CSRFTokenField  = "csrfToken"
)

// Safe methods never mutate state and pass the CSRF gate unchecked.
var safeMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodOptions: {},
	http.MethodTrace:   {},
}

// CSRFConfig configures one mounted CSRF gate.
type CSRFConfig struct {
	// MaxAge bounds token freshness; zero falls back to the codec default.
	MaxAge time.Duration
	// ExemptPaths pass through unchecked. An entry ending in "*" matches
	// the prefix, otherwise the match is exact.
	ExemptPaths []string
}

// CSRF returns a gate that rejects state-changing requests without a fresh
// anti-forgery token. Rejections carry a stable machine-readable code;
// malformed tokens are normalized to invalid, never surfaced as errors.
func (g *Gates) CSRF(cfg CSRFConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, safe := safeMethods[c.Request.Method]; safe {
			c.Next()
			return
		}

		if pathExempt(c.Request.URL.Path, cfg.ExemptPaths) {
			c.Next()
			return
		}

		token := extractCSRFToken(c)
		if token == "" {
			g.rejectCSRF(c, CodeCSRFTokenMissing, "CSRF token is required")
			return
		}

		if !g.codec.Validate(token, cfg.MaxAge) {
			g.rejectCSRF(c, CodeCSRFTokenInvalid, "CSRF token is invalid or expired")
			return
		}

		c.Next()
	}
}

// extractCSRFToken reads the designated header first and falls back to the
// JSON body field. The body is buffered so downstream handlers can still
// bind it.
func extractCSRFToken(c *gin.Context) string {
	if token := c.GetHeader(CSRFTokenHeader); token != "" {
		return token
	}

	var body struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		return ""
	}

	return body.CSRFToken
}

func pathExempt(path string, exempt []string) bool {
	for _, pattern := range exempt {
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
			if strings.HasPrefix(path, prefix) {
				return true
			}
			continue
		}
		if path == pattern {
			return true
		}
	}
	return false
}

func (g *Gates) rejectCSRF(c *gin.Context, code, message string) {
	reason := "invalid"
	if code == CodeCSRFTokenMissing {
		reason = "missing"
	}

	if g.metrics != nil {
		g.metrics.CSRFRejections.WithLabelValues(reason).Inc()
	}

	if g.audit != nil {
		g.audit.Record(domain.SecurityEvent{
			Key:       c.ClientIP(),
			Kind:      domain.SecurityEventCSRFRejected,
			Path:      c.Request.URL.Path,
			IPAddress: c.ClientIP(),
			Metadata:  map[string]any{"reason": reason},
		})
	}

	g.logger.Warn("csrf gate rejected request",
		zap.String("code", code),
		zap.String("path", c.Request.URL.Path),
		zap.String("client_ip", appLogger.MaskIP(c.ClientIP())),
	)

	c.AbortWithStatusJSON(http.StatusForbidden, GateError{
		Error: message,
		Code:  code,
	})
}
