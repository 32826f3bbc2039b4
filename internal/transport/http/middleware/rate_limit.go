package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/domain"
	appLogger "github.com/Kashawn-Brown/Career-Tracker-sub001/internal/infra/logger"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/usecase"
)

// KeyFunc extracts the identity under which attempts are tallied.
type KeyFunc func(*gin.Context) (string, bool)

// ClientAddressKey builds a KeyFunc using the request's client IP. This is
// the default identity for every gate.
func ClientAddressKey() KeyFunc {
	return func(c *gin.Context) (string, bool) {
		ip := c.ClientIP()
		if ip == "" {
			return "", false
		}
		return ip, true
	}
}

// RateLimitConfig configures one mounted rate-limit gate.
type RateLimitConfig struct {
	Policy usecase.GatePolicy
	// Key overrides the default client-address identity.
	Key KeyFunc
}

// RateLimit returns a gate enforcing the progressive-delay/lockout policy.
// Allowed requests proceed after their delay has been served; locked-out
// requests are rejected with 429 and a retry-after. Store failures fail
// open: a broken backend must not take authentication down with it.
func (g *Gates) RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	keyFn := cfg.Key
	if keyFn == nil {
		keyFn = ClientAddressKey()
	}

	return func(c *gin.Context) {
		key, ok := keyFn(c)
		if !ok || key == "" {
			c.Next()
			return
		}

		policy := cfg.Policy
		userCallback := policy.OnLimitReached
		policy.OnLimitReached = func(lockedKey string) {
			g.recordLockout(c, policy.Name, lockedKey)
			if userCallback != nil {
				userCallback(lockedKey)
			}
		}

		decision, err := g.limiter.CheckAndRecord(c.Request.Context(), key, policy)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.Abort()
				return
			}

			g.logger.Warn("rate limit check failed",
				zap.String("gate", policy.Name),
				zap.String("key", appLogger.MaskKey(key)),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !decision.Allowed {
			seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
			if seconds < 0 {
				seconds = 0
			}

			c.Writer.Header().Set("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, LockoutError{
				Error:      fmt.Sprintf("Account temporarily locked. Try again in %d seconds.", seconds),
				Code:       CodeAccountLocked,
				RetryAfter: seconds,
			})
			return
		}

		if g.metrics != nil {
			g.metrics.Delays.WithLabelValues(policy.Name).Observe(decision.Delay.Seconds())
		}

		c.Next()
	}
}

func (g *Gates) recordLockout(c *gin.Context, gateName, key string) {
	if g.metrics != nil {
		g.metrics.Lockouts.WithLabelValues(gateName).Inc()
	}

	if g.audit != nil {
		g.audit.Record(domain.SecurityEvent{
			Key:       key,
			Kind:      domain.SecurityEventLockout,
			Path:      c.Request.URL.Path,
			IPAddress: c.ClientIP(),
			Metadata:  map[string]any{"gate": gateName},
		})
	}
}
