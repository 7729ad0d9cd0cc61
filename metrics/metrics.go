package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the dialogue collectors. A nil *Recorder records nothing.
type Recorder struct {
	SessionsStarted    *prometheus.CounterVec
	SessionsFinished   *prometheus.CounterVec
	Turns              *prometheus.CounterVec
	ExtractionFailures *prometheus.CounterVec
	ExtractionLatency  prometheus.Histogram
}

func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		SessionsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deposit_sessions_started_total",
			Help: "Dialogue sessions started, by account variant",
		}, []string{"variant"}),
		SessionsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deposit_sessions_finished_total",
			Help: "Dialogue sessions that reached a terminal phase",
		}, []string{"variant", "phase"}),
		Turns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deposit_turns_total",
			Help: "User turns processed, by command kind",
		}, []string{"variant", "command"}),
		ExtractionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deposit_extraction_failures_total",
			Help: "Extraction calls that failed and degraded to an empty result",
		}, []string{"variant"}),
		ExtractionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "deposit_extraction_latency_seconds",
			Help:    "Latency of extraction calls",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (r *Recorder) SessionStarted(variant string) {
	if r == nil {
		return
	}
	r.SessionsStarted.WithLabelValues(variant).Inc()
}

func (r *Recorder) SessionFinished(variant, phase string) {
	if r == nil {
		return
	}
	r.SessionsFinished.WithLabelValues(variant, phase).Inc()
}

func (r *Recorder) Turn(variant, command string) {
	if r == nil {
		return
	}
	r.Turns.WithLabelValues(variant, command).Inc()
}

func (r *Recorder) Extraction(variant string, took time.Duration, err error) {
	if r == nil {
		return
	}
	r.ExtractionLatency.Observe(took.Seconds())
	if err != nil {
		r.ExtractionFailures.WithLabelValues(variant).Inc()
	}
}
