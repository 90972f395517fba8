package media

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments optimizer runs and image fallbacks.
type Metrics struct {
	optimizerRuns     *prometheus.CounterVec
	optimizerDuration *prometheus.HistogramVec
	imageFallbacks    *prometheus.CounterVec
}

// NewMetrics registers the media collectors on reg. A nil reg yields
// unregistered collectors, which is what most tests want.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		optimizerRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "media_optimizer_runs_total",
				Help: "Ghostscript invocations by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		optimizerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "media_optimizer_duration_seconds",
				Help:    "Wall time of Ghostscript invocations.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"operation"},
		),
		imageFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "media_image_compression_fallbacks_total",
				Help: "Image recompressions that returned the original bytes.",
			},
			[]string{"reason"},
		),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.optimizerRuns, m.optimizerDuration, m.imageFallbacks} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
