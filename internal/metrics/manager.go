package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests            *prometheus.CounterVec
	CounterContributions       prometheus.Counter
	CounterGoalsCompleted      prometheus.Counter
	CounterChallengeResponses  *prometheus.CounterVec
	CounterChallengesCompleted prometheus.Counter
	CounterSyncReports         prometheus.Counter
	CounterConflictRetries     prometheus.Counter
	CounterRateLimited         prometheus.Counter

	// gauges
	GaugeRequests prometheus.Gauge

	// histograms
	HistRequestDuration prometheus.Histogram
	HistSyncDuration    prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("duet", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("duet", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterContributions := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "contributions",
		Help:      "The total number of recorded goal contributions",
	})
	counterGoalsCompleted := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "goals_completed",
		Help:      "The total number of goals that reached their target",
	})
	counterChallengeResponses := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "challenge_responses",
		Help:      "The total number of challenge responses by decision",
	}, []string{"decision"})
	counterChallengesCompleted := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "challenges_completed",
		Help:      "The total number of challenges completed by a sync",
	})
	counterSyncReports := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "sync_reports",
		Help:      "The total number of applied external metric reports",
	})
	counterConflictRetries := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "conflict_retries",
		Help:      "The total number of retried optimistic write conflicts",
	})
	counterRateLimited := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rate_limited",
		Help:      "The total number of requests rejected by the rate limiter",
	})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})

	histReqDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets: []float64{
				0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005,
				0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10,
			},
			Name: "request_duration_seconds",
			Help: "Total duration of requests in seconds",
		},
	)
	histSyncDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			Name:      "sync_duration_seconds",
			Help:      "Duration of applying one external metric report in seconds",
		},
	)

	return &Manager{
		CounterRequests:            counterRequests,
		CounterContributions:       counterContributions,
		CounterGoalsCompleted:      counterGoalsCompleted,
		CounterChallengeResponses:  counterChallengeResponses,
		CounterChallengesCompleted: counterChallengesCompleted,
		CounterSyncReports:         counterSyncReports,
		CounterConflictRetries:     counterConflictRetries,
		CounterRateLimited:         counterRateLimited,
		GaugeRequests:              gaugeRequests,
		HistRequestDuration:        histReqDuration,
		HistSyncDuration:           histSyncDuration,
	}
}
