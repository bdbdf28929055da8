package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Goal metrics
	GoalsCreated prometheus.Counter
	GoalsUpdated prometheus.Counter
	GoalsDeleted prometheus.Counter

	// Money movement metrics
	Contributions    prometheus.Counter
	Withdrawals      prometheus.Counter
	EntryCorrections *prometheus.CounterVec
	MovementAmount   *prometheus.HistogramVec
	MovementDuration prometheus.Histogram
	GoalErrors       *prometheus.CounterVec

	// Budget metrics
	BudgetChecks *prometheus.CounterVec

	// Outbox metrics
	EventsPublished prometheus.Counter
	EventFailures   *prometheus.CounterVec
}

// New creates and registers all metrics with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates and registers all metrics with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		GoalsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "gofinance_goals_created_total",
			Help: "Total number of goals created",
		}),
		GoalsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "gofinance_goals_updated_total",
			Help: "Total number of goal detail updates",
		}),
		GoalsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "gofinance_goals_deleted_total",
			Help: "Total number of goals soft-deleted",
		}),

		Contributions: factory.NewCounter(prometheus.CounterOpts{
			Name: "gofinance_goal_contributions_total",
			Help: "Total number of successful contributions",
		}),
		Withdrawals: factory.NewCounter(prometheus.CounterOpts{
			Name: "gofinance_goal_withdrawals_total",
			Help: "Total number of successful withdrawals",
		}),
		EntryCorrections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gofinance_goal_entry_changes_total",
				Help: "Total ledger entry corrections and removals",
			},
			[]string{"operation"},
		),
		MovementAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gofinance_goal_movement_amount",
				Help:    "Contribution and withdrawal amounts",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"kind", "currency"},
		),
		MovementDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gofinance_goal_movement_duration_seconds",
			Help:    "Duration of money-moving operations",
			Buckets: prometheus.DefBuckets,
		}),
		GoalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gofinance_goal_errors_total",
				Help: "Total goal operation errors by type",
			},
			[]string{"error_type"},
		),

		BudgetChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gofinance_budget_checks_total",
				Help: "Budget spending projections by outcome",
			},
			[]string{"outcome"},
		),

		EventsPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "gofinance_outbox_events_published_total",
			Help: "Total outbox events published",
		}),
		EventFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gofinance_outbox_event_failures_total",
				Help: "Total outbox publish failures by event type",
			},
			[]string{"event_type"},
		),
	}
}
