// Package metrics collects run counters and writes them in Prometheus text
// format for node_exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"css3d/rewrite"
)

const namespace = "css3d"

// Collector owns a private registry, so several runs in one process do not
// collide.
type Collector struct {
	registry *prometheus.Registry

	files        *prometheus.CounterVec
	rules        prometheus.Counter
	transforms   *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
	duration     prometheus.Histogram
}

// New creates collector with all metrics registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Stylesheets processed by result.",
		}, []string{"result"}),
		rules: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rules_processed_total",
			Help:      "Style rules visited.",
		}),
		transforms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transforms_total",
			Help:      "Transform declarations by outcome.",
		}, []string{"outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Conversion cache lookups by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_duration_seconds",
			Help:      "Time spent processing single stylesheet.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	c.registry.MustRegister(c.files, c.rules, c.transforms, c.cacheLookups, c.duration)
	return c
}

// FileDone records outcome of a single stylesheet. Nil collector is valid
// and does nothing.
func (c *Collector) FileDone(result string, seconds float64) {
	if c == nil {
		return
	}
	c.files.WithLabelValues(result).Inc()
	c.duration.Observe(seconds)
}

// AddStats accumulates rewrite statistics.
func (c *Collector) AddStats(stats rewrite.Stats) {
	if c == nil {
		return
	}
	c.rules.Add(float64(stats.RulesProcessed))
	c.transforms.WithLabelValues("converted").Add(float64(stats.TransformsConverted))
	c.transforms.WithLabelValues("failed").Add(float64(stats.TransformsFailed))
	c.transforms.WithLabelValues("skipped").Add(float64(stats.TransformsSkipped))
}

// AddCache accumulates converter cache statistics.
func (c *Collector) AddCache(hits, misses int) {
	if c == nil {
		return
	}
	c.cacheLookups.WithLabelValues("hit").Add(float64(hits))
	c.cacheLookups.WithLabelValues("miss").Add(float64(misses))
}

// Gatherer exposes registry for inspection.
func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.registry
}

// WriteFile atomically writes all metrics to path.
func (c *Collector) WriteFile(path string) error {
	if c == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("unable to write metrics to '%s': %w", path, err)
	}
	return nil
}
