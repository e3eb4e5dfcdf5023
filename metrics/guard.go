package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	handleguard "github.com/wippyai/handle-guard"
)

const (
	namespace   = "handleguard"
	familyLabel = "family"
)

// GuardMetrics counts guard events per resource family.
type GuardMetrics struct {
	// Installed counts handles installed into guards.
	Installed *prometheus.CounterVec

	// Released counts explicit releases, including repeated ones.
	Released *prometheus.CounterVec

	// Collected counts releases run after a proxy was garbage collected.
	Collected *prometheus.CounterVec

	// Outstanding tracks guards installed but not yet collected.
	Outstanding *prometheus.GaugeVec
}

var _ handleguard.Observer = (*GuardMetrics)(nil)

func installedOpts() prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "installed_total",
		Help:      "Total number of foreign handles installed into guards.",
	}
}

func releasedOpts() prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "released_total",
		Help:      "Total number of explicit releases, repeated calls included.",
	}
}

func collectedOpts() prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "collected_total",
		Help:      "Total number of automatic releases after proxy collection.",
	}
}

func outstandingOpts() prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "outstanding",
		Help:      "Number of guards whose automatic release has not run yet.",
	}
}

// New creates and registers guard metrics.
// Uses promauto for automatic registration with the default registry.
func New() *GuardMetrics {
	return &GuardMetrics{
		Installed:   promauto.NewCounterVec(installedOpts(), []string{familyLabel}),
		Released:    promauto.NewCounterVec(releasedOpts(), []string{familyLabel}),
		Collected:   promauto.NewCounterVec(collectedOpts(), []string{familyLabel}),
		Outstanding: promauto.NewGaugeVec(outstandingOpts(), []string{familyLabel}),
	}
}

// NewWithRegistry creates guard metrics registered with a custom registry.
// Useful for testing to avoid conflicts with the default registry.
func NewWithRegistry(reg prometheus.Registerer) *GuardMetrics {
	m := &GuardMetrics{
		Installed:   prometheus.NewCounterVec(installedOpts(), []string{familyLabel}),
		Released:    prometheus.NewCounterVec(releasedOpts(), []string{familyLabel}),
		Collected:   prometheus.NewCounterVec(collectedOpts(), []string{familyLabel}),
		Outstanding: prometheus.NewGaugeVec(outstandingOpts(), []string{familyLabel}),
	}

	reg.MustRegister(m.Installed)
	reg.MustRegister(m.Released)
	reg.MustRegister(m.Collected)
	reg.MustRegister(m.Outstanding)

	return m
}

// OnGuardEvent records ev. It may run on the runtime cleanup goroutine.
func (m *GuardMetrics) OnGuardEvent(ev handleguard.Event) {
	switch ev.Type {
	case handleguard.EventInstalled:
		m.Installed.WithLabelValues(ev.Family).Inc()
		m.Outstanding.WithLabelValues(ev.Family).Inc()
	case handleguard.EventReleased:
		m.Released.WithLabelValues(ev.Family).Inc()
	case handleguard.EventCollected:
		m.Collected.WithLabelValues(ev.Family).Inc()
		m.Outstanding.WithLabelValues(ev.Family).Dec()
	}
}
