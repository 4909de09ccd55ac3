package prometheus

import (
	"strconv"
	"time"

	"github.com/oma-dm/goclient/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// sessionMetrics is the Prometheus implementation of metrics.SessionMetrics.
type sessionMetrics struct {
	messagesSent     *prometheus.CounterVec
	commandsHandled  *prometheus.CounterVec
	authOutcomes     *prometheus.CounterVec
	sessionDuration  *prometheus.HistogramVec
}

// NewSessionMetrics creates a new Prometheus-backed session metrics
// instance.
//
// Returns nil if metrics are not enabled (metrics.InitRegistry not called).
func NewSessionMetrics() *sessionMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &sessionMetrics{
		messagesSent: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "omadm_messages_sent_total",
				Help: "Total number of outbound SyncML messages, by server and send-again decision",
			},
			[]string{"server_id", "to_send"},
		),
		commandsHandled: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "omadm_commands_handled_total",
				Help: "Total number of inbound commands handled, by kind and status code",
			},
			[]string{"kind", "status_code"},
		),
		authOutcomes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "omadm_auth_outcomes_total",
				Help: "Total number of credential verification outcomes, by direction, auth type and acceptance",
			},
			[]string{"direction", "auth_type", "accepted"},
		),
		sessionDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "omadm_session_duration_seconds",
				Help:    "Wall-clock duration of a complete DM session",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"server_id"},
		),
	}
}

func (m *sessionMetrics) RecordMessageSent(serverID string, toSend bool) {
	if m == nil {
		return
	}
	m.messagesSent.WithLabelValues(serverID, boolLabel(toSend)).Inc()
}

func (m *sessionMetrics) RecordCommandDispatched(kind string, statusCode int) {
	if m == nil {
		return
	}
	m.commandsHandled.WithLabelValues(kind, strconv.Itoa(statusCode)).Inc()
}

func (m *sessionMetrics) RecordAuthOutcome(direction, authType string, accepted bool) {
	if m == nil {
		return
	}
	m.authOutcomes.WithLabelValues(direction, authType, boolLabel(accepted)).Inc()
}

func (m *sessionMetrics) RecordSessionDuration(serverID string, d time.Duration) {
	if m == nil {
		return
	}
	m.sessionDuration.WithLabelValues(serverID).Observe(d.Seconds())
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

