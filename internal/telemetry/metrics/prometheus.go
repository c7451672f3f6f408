package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// SetupPrometheus creates the registry the dashboard counters get
// registered on, pre-loaded with the standard process, runtime and build
// info collectors. A dedicated registry (not prometheus.DefaultRegisterer)
// keeps test managers from colliding on duplicate registration.
func SetupPrometheus() *prometheus.Registry {
	promRegistry := prometheus.NewRegistry()

	promRegistry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
		collectors.NewBuildInfoCollector(),
	)

	return promRegistry
}
