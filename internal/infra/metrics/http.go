package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		httpRequestSeconds,
		sseStreamsActive,
	)
}

var (
	httpRequestSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_seconds",
			Help:    "HTTP request latency by route and status code.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"route", "method", "code"},
	)

	sseStreamsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_streams_active",
			Help: "Open SSE debate streams.",
		},
	)
)

func ObserveHTTPRequest(route, method string, code int, d time.Duration) {
	httpRequestSeconds.WithLabelValues(route, method, strconv.Itoa(code)).Observe(d.Seconds())
}

func SSEStreamOpened() { sseStreamsActive.Inc() }
func SSEStreamClosed() { sseStreamsActive.Dec() }
