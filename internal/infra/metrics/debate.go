package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		debatesStarted,
		debatesFinished,
		debatesActive,
		debateTurnSeconds,
		debateCostMicro,
		interjectionsTotal,
		agreementsDetected,
	)
}

var (
	debatesStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "debates_started_total",
			Help: "Count of debate sessions accepted for execution.",
		},
	)

	debatesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debates_finished_total",
			Help: "Count of debates by terminal status (complete/user_ended/error).",
		},
		[]string{"status"},
	)

	debatesActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "debates_active",
			Help: "Number of debate sessions currently running.",
		},
	)

	debateTurnSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "debate_turn_seconds",
			Help:    "Wall time per finalized debate turn.",
			Buckets: []float64{0.5, 1, 2, 4, 8, 16, 30, 60, 120},
		},
	)

	debateCostMicro = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debate_cost_micro",
			Help: "Micro-USD spent per model across all debates.",
		},
		[]string{"model"},
	)

	interjectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debate_interjections_total",
			Help: "User interjections by type.",
		},
		[]string{"type"},
	)

	agreementsDetected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "debate_agreements_detected_total",
			Help: "Count of agreement streaks flagged mid-debate.",
		},
	)
)

func DebateStarted()  { debatesStarted.Inc(); debatesActive.Inc() }
func DebateFinished(status string) {
	debatesFinished.WithLabelValues(norm(status)).Inc()
	debatesActive.Dec()
}

func ObserveTurn(d time.Duration)       { debateTurnSeconds.Observe(d.Seconds()) }
func AddDebateCost(model string, micro int64) {
	debateCostMicro.WithLabelValues(norm(model)).Add(float64(micro))
}
func IncInterjection(kind string) { interjectionsTotal.WithLabelValues(norm(kind)).Inc() }
func AgreementDetected()          { agreementsDetected.Inc() }
