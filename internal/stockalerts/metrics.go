package stockalerts

import "github.com/prometheus/client_golang/prometheus"

// Metrics tracks alert batch outcomes for the stock-alert worker.
type Metrics struct {
	batches    *prometheus.CounterVec
	suppressed *prometheus.CounterVec
	emails     *prometheus.CounterVec
}

const (
	// suppression reasons
	reasonDisabled  = "feature_disabled"
	reasonCooldown  = "cooldown_active"
	reasonNoSubs    = "no_subscribers"
	reasonWrongMove = "not_qualifying"

	// email outcomes
	outcomeLabelSent    = "sent"
	outcomeLabelFailed  = "send_failed"
	outcomeLabelInvalid = "invalid_email"
)

// NewMetrics registers the stock-alert metrics on the provided registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	batches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_alert_batches_total",
		Help: "Alert batches dispatched per store.",
	}, []string{"store"})
	suppressed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_alert_suppressed_total",
		Help: "Qualifying-or-not events that produced no batch, by reason.",
	}, []string{"reason"})
	emails := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_alert_emails_total",
		Help: "Per-subscriber email outcomes.",
	}, []string{"outcome"})
	reg.MustRegister(batches, suppressed, emails)
	return &Metrics{
		batches:    batches,
		suppressed: suppressed,
		emails:     emails,
	}
}

// IncBatch counts a dispatched alert batch for the store.
func (m *Metrics) IncBatch(storeID string) {
	if m == nil || m.batches == nil {
		return
	}
	m.batches.WithLabelValues(storeID).Inc()
}

// IncSuppressed counts an event that ended without a batch.
func (m *Metrics) IncSuppressed(reason string) {
	if m == nil || m.suppressed == nil {
		return
	}
	m.suppressed.WithLabelValues(reason).Inc()
}

// IncEmail counts a per-subscriber outcome.
func (m *Metrics) IncEmail(outcome string) {
	if m == nil || m.emails == nil {
		return
	}
	m.emails.WithLabelValues(outcome).Inc()
}
