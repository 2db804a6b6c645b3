package responder

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks responder activity and syncs with Prometheus
type Metrics struct {
	errors      int64
	replies     int64
	reinvokes   int64
	suppressed  int64
	escalations int64
	mu          sync.RWMutex
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordError records a classified command error
func (m *Metrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors++
	m.mu.Unlock()
	errorsHandled.WithLabelValues(kind).Inc()
}

// RecordReply records a user-facing reply send
func (m *Metrics) RecordReply() {
	m.mu.Lock()
	m.replies++
	m.mu.Unlock()
	repliesSent.Inc()
}

// RecordReinvoke records a developer cooldown bypass
func (m *Metrics) RecordReinvoke() {
	m.mu.Lock()
	m.reinvokes++
	m.mu.Unlock()
	cooldownReinvokes.Inc()
}

// RecordDMSuppressed records a swallowed DM permission failure
func (m *Metrics) RecordDMSuppressed() {
	m.mu.Lock()
	m.suppressed++
	m.mu.Unlock()
	dmSuppressed.Inc()
}

// RecordEscalation records an escalation to diagnostics
func (m *Metrics) RecordEscalation() {
	m.mu.Lock()
	m.escalations++
	m.mu.Unlock()
	diagEscalations.Inc()
}

// GetSnapshot returns a snapshot of current metrics
func (m *Metrics) GetSnapshot() map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return map[string]int64{
		"errors":      m.errors,
		"replies":     m.replies,
		"reinvokes":   m.reinvokes,
		"suppressed":  m.suppressed,
		"escalations": m.escalations,
	}
}

var (
	errorsHandled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rolegate_command_errors_total",
			Help: "Total number of command errors handled, by error kind",
		},
		[]string{"kind"},
	)

	repliesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rolegate_error_replies_total",
			Help: "Total number of user-facing error replies sent",
		},
	)

	cooldownReinvokes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rolegate_cooldown_reinvokes_total",
			Help: "Total number of developer cooldown bypass reinvocations",
		},
	)

	dmSuppressed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rolegate_dm_suppressed_total",
			Help: "Total number of direct-message permission failures swallowed",
		},
	)

	diagEscalations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rolegate_diag_escalations_total",
			Help: "Total number of errors escalated to diagnostics",
		},
	)
)

func init() {
	prometheus.MustRegister(
		errorsHandled,
		repliesSent,
		cooldownReinvokes,
		dmSuppressed,
		diagEscalations,
	)
}
