package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gsymbex"

var (
	choicePointsOpened = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "choice_points_opened_total",
		Help:      "Choice points opened, by kind.",
	}, []string{"kind"})

	alternativesApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alternatives_applied_total",
		Help:      "Alternatives committed to interpreter state, by kind.",
	}, []string{"kind"})

	backtracks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtracks_total",
		Help:      "Applied alternatives undone.",
	})

	solverOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "solver_outcomes_total",
		Help:      "Feasibility verdicts of prepared alternatives.",
	}, []string{"status"})

	pathsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "paths_total",
		Help:      "Explored paths, by how they ended.",
	}, []string{"end"})

	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_duration_seconds",
		Help:      "Wall time of one search.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	})
)
