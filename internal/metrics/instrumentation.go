package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for topacc_images_total.
const (
	OutcomeMatched = "matched"
	OutcomeMissed  = "missed"
	OutcomeFailed  = "failed"
)

// instrumentation holds the collectors of one run. Each Runner owns a private
// registry so several runs in one process do not collide.
type instrumentation struct {
	registry      *prometheus.Registry
	imagesTotal   *prometheus.CounterVec
	imageDuration prometheus.Histogram
	matchPercent  prometheus.Gauge
}

func newInstrumentation(cfg Config) *instrumentation {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	mode := "top5"
	if cfg.Strict {
		mode = "strict"
	}
	labels := prometheus.Labels{"expected_id": cfg.ExpectedID, "mode": mode}

	return &instrumentation{
		registry: reg,
		imagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "topacc_images_total",
				Help:        "Total number of evaluated images by outcome",
				ConstLabels: labels,
			},
			[]string{"outcome"}, // outcome: matched, missed, failed
		),
		imageDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:        "topacc_image_duration_seconds",
				Help:        "Time to decode, evaluate and resolve one image",
				Buckets:     []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				ConstLabels: labels,
			},
		),
		matchPercent: factory.NewGauge(
			prometheus.GaugeOpts{
				Name:        "topacc_match_percentage",
				Help:        "Percentage of images whose expected id was matched",
				ConstLabels: labels,
			},
		),
	}
}

func (in *instrumentation) recordImage(res ImageResult) {
	outcome := OutcomeMissed
	switch {
	case res.Err != nil:
		outcome = OutcomeFailed
	case res.Matched:
		outcome = OutcomeMatched
	}
	in.imagesTotal.WithLabelValues(outcome).Inc()
	in.imageDuration.Observe(res.Elapsed.Seconds())
}

func (in *instrumentation) recordRun(percentage float64) {
	in.matchPercent.Set(percentage)
}

// writeTextfile writes every collector in the node-exporter textfile format.
func (in *instrumentation) writeTextfile(path string) error {
	return prometheus.WriteToTextfile(path, in.registry)
}

