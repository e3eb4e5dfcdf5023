// Package metrics exports guard lifecycle events to Prometheus.
//
// GuardMetrics implements handleguard.Observer. Subscribe it once at startup:
//
//	m := metrics.New()
//	handleguard.Subscribe(m)
//
// and serve the default registry with Server.
package metrics
