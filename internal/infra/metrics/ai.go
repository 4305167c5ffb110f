package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		aiTokensIn,
		aiTokensOut,
		aiRequestSeconds,
	)
}

var (
	aiTokensIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_in",
			Help: "Sum of prompt (input) tokens per model.",
		},
		[]string{"model"},
	)

	aiTokensOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_out",
			Help: "Sum of completion (output) tokens per model.",
		},
		[]string{"model"},
	)

	aiRequestSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_seconds",
			Help:    "AI call latency distribution in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 30, 60},
		},
		[]string{"model", "kind", "success"},
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func ObserveAIRequest(model, kind string, d time.Duration, err error) {
	aiRequestSeconds.WithLabelValues(norm(model), kind, strconv.FormatBool(err == nil)).
		Observe(d.Seconds())
}

func AddAITokens(model string, in, out int) {
	aiTokensIn.WithLabelValues(norm(model)).Add(float64(in))
	aiTokensOut.WithLabelValues(norm(model)).Add(float64(out))
}
