package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_extractions_total",
		Help: "Document extractions by file type and outcome.",
	}, []string{"file_type", "result"})

	SummariesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_summaries_total",
		Help: "Per-document summaries by outcome.",
	}, []string{"result"})

	LLMCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "intake_llm_call_duration_seconds",
		Help:    "Wall time of LLM calls by purpose.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	}, []string{"purpose", "backend"})

	LLMTokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_llm_tokens_total",
		Help: "Token consumption by direction.",
	}, []string{"direction"})

	PhaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "intake_phase_duration_seconds",
		Help:    "Wall time of pipeline phases.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"phase"})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "intake_active_workers",
		Help: "Workers currently processing a batch item.",
	})
)

// ObserveUsage records token counts from a single LLM response.
func ObserveUsage(inputTokens, outputTokens int64) {
	LLMTokensTotal.WithLabelValues("input").Add(float64(inputTokens))
	LLMTokensTotal.WithLabelValues("output").Add(float64(outputTokens))
}
