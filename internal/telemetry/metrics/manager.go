package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests           *prometheus.CounterVec
	CounterDashboardRenders   prometheus.Counter
	CounterRefreshes          prometheus.Counter
	CounterEmptySelections    prometheus.Counter
	CounterHandleRequestPanic prometheus.Counter

	// gauges
	GaugeLifeSignal prometheus.Gauge
	GaugeActivities prometheus.Gauge

	// histograms
	HistRequestDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("backend", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("backend", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterDashboardRenders := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "dashboard_renders",
		Help:      "The total number of dashboard render passes",
	})
	counterRefreshes := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "activity_refreshes",
		Help:      "The total number of remote activity refreshes",
	})
	counterEmptySelections := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "empty_selections",
		Help:      "The total number of time window selections matching no activities",
	})
	counterHandleRequestPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of serve request panics",
	})

	gaugeLifeSignal := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "life_signal",
		Help:      "Whether the service is up and serving",
	})
	gaugeActivities := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "activities",
		Help:      "The number of valid activities in the backing table",
	})

	histRequestDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "The duration of handled requests",
		Buckets:   prometheus.DefBuckets,
	})

	return &Manager{
		CounterRequests:           counterRequests,
		CounterDashboardRenders:   counterDashboardRenders,
		CounterRefreshes:          counterRefreshes,
		CounterEmptySelections:    counterEmptySelections,
		CounterHandleRequestPanic: counterHandleRequestPanic,
		GaugeLifeSignal:           gaugeLifeSignal,
		GaugeActivities:           gaugeActivities,
		HistRequestDuration:       histRequestDuration,
	}
}
