package models

import "time"

// CircuitBreakerSnapshot is a point-in-time view of a named breaker's
// counters, used for telemetry/admin surfaces. The breaker's actual
// transition logic lives in gobreaker.CircuitBreaker — this is a read
// projection, not a second state machine.
type CircuitBreakerSnapshot struct {
	Name            string       `json:"name"`
	State           BreakerState `json:"state"`
	FailureCount    uint32       `json:"failure_count"`
	LastFailureAt   *time.Time   `json:"last_failure_at,omitempty"`
	FailureThreshold uint32      `json:"failure_threshold"`
	ResetTimeout    time.Duration `json:"reset_timeout"`
}
