package middleware

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/port"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/usecase"
)

// Gates composes the token codec and limiter engine into the request
// interception middleware. It is the only place the two meet; neither knows
// about HTTP on its own.
type Gates struct {
	limiter *usecase.Limiter
	codec   port.CSRFTokenCodec
	audit   *usecase.AuditRecorder
	metrics *GateMetrics
	logger  *zap.Logger
}

// GatesOption customizes optional collaborators.
type GatesOption func(*Gates)

// WithAudit attaches the security-event recorder.
func WithAudit(audit *usecase.AuditRecorder) GatesOption {
	return func(g *Gates) { g.audit = audit }
}

// WithMetrics attaches gate decision metrics.
func WithMetrics(metrics *GateMetrics) GatesOption {
	return func(g *Gates) { g.metrics = metrics }
}

// NewGates builds the gate set. Missing required collaborators are
// programmer errors and fail here, at startup, never per request.
func NewGates(limiter *usecase.Limiter, codec port.CSRFTokenCodec, logger *zap.Logger, opts ...GatesOption) (*Gates, error) {
	if limiter == nil {
		return nil, errors.New("gates: limiter is required")
	}
	if codec == nil {
		return nil, errors.New("gates: csrf token codec is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &Gates{
		limiter: limiter,
		codec:   codec,
		logger:  logger,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Limiter exposes the underlying engine so route handlers can invoke the
// success hook and status inspection.
func (g *Gates) Limiter() *usecase.Limiter {
	return g.limiter
}

// Codec exposes the token codec for the issuance handler.
func (g *Gates) Codec() port.CSRFTokenCodec {
	return g.codec
}
