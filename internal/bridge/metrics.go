package bridge

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records per-action outcomes. A nil *Metrics records nothing.
type Metrics struct {
	ActionsTotal   *prometheus.CounterVec
	ActionDuration *prometheus.HistogramVec
}

// NewMetrics creates the action metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "w3vault_actions_total",
			Help: "Form actions handled, by outcome.",
		}, []string{"action", "outcome"}),
		ActionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "w3vault_action_duration_seconds",
			Help:    "Time from submission to notice, including receipt wait.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 15, 30, 60, 180},
		}, []string{"action"}),
	}
	reg.MustRegister(m.ActionsTotal, m.ActionDuration)
	return m
}

func (m *Metrics) observe(action string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.ActionsTotal.WithLabelValues(action, outcome).Inc()
	m.ActionDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
}
