package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendations counts recommendation calls per strategy and outcome (ok, empty, error).
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outfit_recommendations_total",
			Help: "Total number of outfit recommendations served",
		},
		[]string{"strategy", "outcome"},
	)

	RecommendedGarments = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "outfit_recommended_garments",
			Help:    "Number of garments in a recommended outfit",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8},
		},
		[]string{"strategy"},
	)

	// LLMFallbacks counts why the delegate strategy fell back.
	LLMFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outfit_llm_fallbacks_total",
			Help: "Total number of LLM recommendations that fell back to the rule based strategy",
		},
		[]string{"reason"},
	)

	LLMRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "outfit_llm_request_duration_seconds",
			Help:    "Duration of chat completion calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 12, 16},
		},
	)

	LLMPromptTokens = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "outfit_llm_prompt_tokens",
			Help:    "Estimated prompt tokens sent to the chat model",
			Buckets: prometheus.ExponentialBuckets(128, 2, 8),
		},
	)

	// BreakerState reports the chat client circuit breaker state (0 closed, 1 half-open, 2 open).
	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "outfit_llm_breaker_state",
			Help: "Circuit breaker state of the chat completion client",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
)
