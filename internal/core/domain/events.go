package domain

import "time"

// Security event kinds emitted by the gate layer.
const (
	SecurityEventLockout      = "gate.lockout"
	SecurityEventCSRFRejected = "gate.csrf_rejected"
)

// SecurityEvent describes a single security-relevant gate decision. Events
// are fire-and-forget: delivery failures never influence the gate's response.
type SecurityEvent struct {
	EventID   string         `json:"event_id"`
	Key       string         `json:"key"`
	Kind      string         `json:"kind"`
	Timestamp time.Time      `json:"timestamp"`
	Path      string         `json:"path,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}
