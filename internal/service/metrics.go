package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	analysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sprint_balance_analysis_duration_seconds",
			Help:    "Duration of sprint balance analyses in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1},
		},
		[]string{"source"},
	)

	analysisTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sprint_balance_analyses_total",
			Help: "Total number of sprint balance analyses by outcome",
		},
		[]string{"source", "outcome"},
	)

	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sprint_balance_cache_lookups_total",
			Help: "Balance cache lookups by result",
		},
		[]string{"result"},
	)
)

const (
	sourceSprint = "sprint"
	sourceAdHoc  = "adhoc"
)
