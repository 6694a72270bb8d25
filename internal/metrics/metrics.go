package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artadvisor_pipeline_runs_total",
			Help: "Pipeline runs by trigger and terminal state",
		},
		[]string{"trigger", "state"},
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "artadvisor_pipeline_duration_seconds",
			Help:    "Wall time of a full pipeline run",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	PipelineStageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artadvisor_pipeline_stage_errors_total",
			Help: "Fatal errors by pipeline stage",
		},
		[]string{"stage"},
	)

	ArtworksPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "artadvisor_artworks_persisted_total",
			Help: "Artworks committed by pipeline runs",
		},
	)

	CandidatesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artadvisor_candidates_fetched_total",
			Help: "Usable candidates returned per source",
		},
		[]string{"source"},
	)

	SourceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artadvisor_source_requests_total",
			Help: "Candidate source searches by outcome (success, failure, rejected, cache_hit)",
		},
		[]string{"source", "outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "artadvisor_circuit_breaker_state",
			Help: "Circuit breaker state per source (0=closed, 1=half-open, 2=open)",
		},
		[]string{"source"},
	)

	LikesToggled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artadvisor_likes_toggled_total",
			Help: "Like toggles by resulting state",
		},
		[]string{"liked"},
	)

	TagsReinforced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "artadvisor_tags_reinforced_total",
			Help: "Tag weight increments applied to the taste profile",
		},
	)

	ReinforceFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "artadvisor_reinforce_failures_total",
			Help: "Likes committed whose taste reinforcement failed",
		},
	)
)
