package middleware

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// GateMetricsOptions configures the gate decision metrics.
type GateMetricsOptions struct {
	Registerer prometheus.Registerer
	Namespace  string
	Subsystem  string
}

// GateMetrics exposes Prometheus collectors for gate decisions.
type GateMetrics struct {
	CSRFRejections *prometheus.CounterVec
	Lockouts       *prometheus.CounterVec
	Delays         *prometheus.HistogramVec
}

// NewGateMetrics constructs collectors for gate decisions and registers them
// with the provided registerer.
func NewGateMetrics(opts GateMetricsOptions) (*GateMetrics, error) {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "careertracker"
	}

	subsystem := opts.Subsystem
	if subsystem == "" {
		subsystem = "gate"
	}

	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	csrfRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "csrf_rejections_total",
		Help:      "Total number of requests rejected by the CSRF gate, partitioned by reason.",
	}, []string{"reason"})

	if err := reg.Register(csrfRejections); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				csrfRejections = existing
			} else {
				return nil, fmt.Errorf("existing csrf collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return nil, fmt.Errorf("register csrf collector: %w", err)
		}
	}

	lockouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "lockouts_total",
		Help:      "Total number of lockout transitions, partitioned by gate name.",
	}, []string{"gate"})

	if err := reg.Register(lockouts); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				lockouts = existing
			} else {
				return nil, fmt.Errorf("existing lockout collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return nil, fmt.Errorf("register lockout collector: %w", err)
		}
	}

	delays := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "delay_seconds",
		Help:      "Histogram of progressive delays imposed on allowed requests, partitioned by gate name.",
		Buckets:   []float64{0, 0.5, 1, 2, 4, 8, 16, 32},
	}, []string{"gate"})

	if err := reg.Register(delays); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.HistogramVec); ok {
				delays = existing
			} else {
				return nil, fmt.Errorf("existing delay collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return nil, fmt.Errorf("register delay collector: %w", err)
		}
	}

	return &GateMetrics{
		CSRFRejections: csrfRejections,
		Lockouts:       lockouts,
		Delays:         delays,
	}, nil
}
