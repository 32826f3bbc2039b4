package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/port"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/usecase"
)

// GateHandler exposes the two standalone gate operations: token issuance and
// limiter status inspection.
type GateHandler struct {
	codec    port.CSRFTokenCodec
	limiter  *usecase.Limiter
	policies map[string]usecase.GatePolicy
	logger   *zap.Logger
}

// NewGateHandler builds the handler. The policies map is keyed by gate name
// and drives status inspection.
func NewGateHandler(codec port.CSRFTokenCodec, limiter *usecase.Limiter, policies map[string]usecase.GatePolicy, logger *zap.Logger) *GateHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &GateHandler{
		codec:    codec,
		limiter:  limiter,
		policies: policies,
		logger:   logger,
	}
}

// IssueToken mints a fresh CSRF token and writes it under the fixed field
// name the client middleware expects.
func (h *GateHandler) IssueToken(c *gin.Context) {
	token, err := h.codec.Issue()
	if err != nil {
		h.logger.Error("csrf token issuance failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, CSRFTokenResponse{CSRFToken: token})
}

// Status reports the caller's rate-limit state for the requested gate
// without recording an attempt. The key defaults to the client address; an
// explicit key may be supplied for operator tooling.
func (h *GateHandler) Status(c *gin.Context) {
	gateName := c.DefaultQuery("gate", "login")
	policy, ok := h.policies[gateName]
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown gate"})
		return
	}

	key := c.Query("key")
	if key == "" {
		key = c.ClientIP()
	}

	status, err := h.limiter.Status(c.Request.Context(), key, policy)
	if err != nil {
		h.logger.Warn("gate status lookup failed", zap.String("gate", gateName), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "status lookup failed"})
		return
	}

	c.JSON(http.StatusOK, GateStatusResponse{
		Attempts:     status.Attempts,
		Locked:       status.Locked,
		LockoutUntil: status.LockoutUntil,
		NextDelayMs:  status.NextDelay.Milliseconds(),
	})
}
