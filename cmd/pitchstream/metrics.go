package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// streamMetrics holds the Prometheus collectors exposed by this command's
// /metrics endpoint.
type streamMetrics struct {
	windowsProcessed prometheus.Counter
	pitchFound       prometheus.Counter
	clarity          prometheus.Histogram
}

// newStreamMetrics creates and registers the collectors against the default
// Prometheus registry.
func newStreamMetrics() *streamMetrics {
	return &streamMetrics{
		windowsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pitchstream_windows_processed_total",
			Help: "Total number of analysis windows run through the pitch detector.",
		}),
		pitchFound: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pitchstream_pitch_found_total",
			Help: "Total number of windows for which a pitch was found.",
		}),
		clarity: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pitchstream_clarity",
			Help:    "Distribution of clarity scores for windows with a detected pitch.",
			Buckets: prometheus.LinearBuckets(0.9, 0.01, 10),
		}),
	}
}

// observe records one FindPitch result.
func (m *streamMetrics) observe(found bool, clarity float64) {
	m.windowsProcessed.Inc()

	if found {
		m.pitchFound.Inc()
		m.clarity.Observe(clarity)
	}
}
