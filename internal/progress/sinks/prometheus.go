package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/artappraisal/sitegen/internal/progress"
)

// PrometheusSink exports build progress metrics via Prometheus. It owns
// the collectors for resolutions per fallback tier and resolution latency.
type PrometheusSink struct {
	resolutions *prometheus.CounterVec
	errors      prometheus.Counter
	duration    *prometheus.HistogramVec
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitegen_image_resolutions_total",
			Help: "Image resolutions partitioned by fallback tier.",
		}, []string{"tier"}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sitegen_image_resolution_errors_total",
			Help: "Resolutions that fell through intermediate tiers with errors.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sitegen_image_resolution_duration_seconds",
			Help:    "Resolution duration partitioned by fallback tier.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 20, 30},
		}, []string{"tier"}),
	}
	for _, collector := range []prometheus.Collector{s.resolutions, s.errors, s.duration} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates collectors from the batch.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		switch evt.Stage {
		case progress.StageResolveDone:
			s.resolutions.WithLabelValues(string(evt.Tier)).Inc()
			s.duration.WithLabelValues(string(evt.Tier)).Observe(evt.Dur.Seconds())
		case progress.StageResolveError:
			s.errors.Inc()
		}
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
