package images

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalProbes tracks image existence probes partitioned by outcome.
	TotalProbes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitegen_image_probes_total",
		Help: "The total number of image existence probes, by outcome.",
	}, []string{"outcome"})
	// TotalCacheHits tracks probe verdicts served from the cache.
	TotalCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sitegen_image_cache_hits_total",
		Help: "The total number of probe verdicts answered from the cache.",
	})
	// TotalGenerations tracks calls to the external image generator.
	TotalGenerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitegen_image_generations_total",
		Help: "The total number of image generation calls, by outcome.",
	}, []string{"outcome"})
)

const (
	outcomeOK     = "ok"
	outcomeFailed = "failed"
)
