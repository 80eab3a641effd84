package obs

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors recorded during a verification run.
type Metrics struct {
	registry     *prometheus.Registry
	Verification *prometheus.CounterVec
	Settlement   prometheus.Histogram
	Runs         *prometheus.CounterVec
}

// NewMetrics creates collectors on a private registry so parallel sessions never share state.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Verification: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_verifications_total",
			Help:      "Cart total-equals-sum checks by outcome.",
		}, []string{"result"}),
		Settlement: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cart_settlement_duration_ms",
			Help:      "Time from requesting a line item deletion until the cart reflects it, in milliseconds.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "check_runs_total",
			Help:      "Check runs by final status.",
		}, []string{"status"}),
	}
	reg.MustRegister(m.Verification, m.Settlement, m.Runs)
	return m
}

// ObserveVerification counts one consistency check.
func (m *Metrics) ObserveVerification(consistent bool) {
	result := "consistent"
	if !consistent {
		result = "violation"
	}
	m.Verification.WithLabelValues(result).Inc()
}

// ObserveSettlement records how long a deletion took to settle.
func (m *Metrics) ObserveSettlement(d time.Duration) {
	m.Settlement.Observe(float64(d) / float64(time.Millisecond))
}

// ObserveRun counts a finished run.
func (m *Metrics) ObserveRun(status string) {
	m.Runs.WithLabelValues(status).Inc()
}

// Gatherer exposes the private registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes all collectors in the Prometheus text format, e.g. for node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
