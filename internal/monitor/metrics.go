package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Scoring metrics
	DegenerateClusterings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clusterfit_degenerate_clusterings_total",
		Help: "Total number of clusterings that collapsed to a single cluster",
	}, []string{"scorer"})

	InvalidMetricErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clusterfit_invalid_metric_errors_total",
		Help: "Total number of unsupervised metric failures",
	}, []string{"scorer"})

	// Evaluation metrics
	EvaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clusterfit_evaluations_total",
		Help: "Total number of pipeline evaluations",
	}, []string{"scorer", "status"})

	EvaluationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clusterfit_evaluation_latency_seconds",
		Help:    "Latency of pipeline fit and score",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // From 1ms to ~16s
	}, []string{"algorithm"})

	BestScore = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "clusterfit_best_score",
		Help: "Best finite score seen per scorer",
	}, []string{"scorer"})

	// Fitness cache metrics
	CacheOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clusterfit_cache_operations_total",
		Help: "Total number of fitness cache operations",
	}, []string{"layer", "operation", "status"})

	CacheLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clusterfit_cache_latency_seconds",
		Help:    "Latency of fitness cache operations",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25},
	}, []string{"layer", "operation"})
)
