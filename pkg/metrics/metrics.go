// Package metrics declares the observability surface the session core and
// credential engine report through. Implementations are optional: every
// exported constructor accepts (and every caller in this module passes) a
// possibly-nil SessionMetrics, so metrics collection carries zero overhead
// when disabled.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SessionMetrics provides observability for OMA-DM session operations.
//
// Example usage:
//
//	metrics.InitRegistry()
//	m := prometheusmetrics.NewSessionMetrics()
//	sess := session.New(tree, m)
type SessionMetrics interface {
	// RecordMessageSent records one outbound SyncML message for the given
	// server and the resulting send-again/end decision.
	RecordMessageSent(serverID string, toSend bool)

	// RecordCommandDispatched records one inbound command handled, by
	// kind (Get, Replace, Exec, Alert) and outcome status code.
	RecordCommandDispatched(kind string, statusCode int)

	// RecordAuthOutcome records a credential verification outcome for the
	// given direction ("toServer"/"toClient") and auth type.
	RecordAuthOutcome(direction, authType string, accepted bool)

	// RecordSessionDuration records the wall-clock duration of a complete
	// session, from SessionStart/SessionStartOnAlert to SessionClose.
	RecordSessionDuration(serverID string, d time.Duration)
}

var (
	mu       sync.RWMutex
	registry *prometheus.Registry
	enabled  bool
)

// InitRegistry creates the process-wide Prometheus registry that
// prometheusmetrics.NewSessionMetrics (and any other metrics constructor in
// this module) registers its collectors against. Must be called before
// constructing any concrete metrics implementation; safe to call more than
// once, subsequent calls are no-ops.
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	if registry == nil {
		registry = prometheus.NewRegistry()
		enabled = true
	}
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// GetRegistry returns the process-wide registry, or nil if InitRegistry has
// not been called.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}
