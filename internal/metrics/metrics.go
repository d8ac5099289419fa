// Package metrics counts pipeline outcomes and catalog latency for node_exporter's
// textfile collector.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"vibify/internal/catalog"
)

type Collector struct {
	registry *prometheus.Registry
	lines    *prometheus.CounterVec
	searches *prometheus.HistogramVec
	imports  *prometheus.CounterVec
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vibify",
			Name:      "lines_total",
			Help:      "Completion lines handled, by outcome.",
		}, []string{"outcome"}),
		searches: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vibify",
			Name:      "catalog_search_seconds",
			Help:      "Catalog search latency.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"result"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vibify",
			Name:      "import_tracks_total",
			Help:      "Tracks sent to a speaker, by result.",
		}, []string{"result"}),
	}
	c.registry.MustRegister(c.lines, c.searches, c.imports)
	return c
}

// RecordLine counts one pipeline line outcome.
func (c *Collector) RecordLine(outcome string) {
	c.lines.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordImport(added, failed int) {
	c.imports.WithLabelValues("added").Add(float64(added))
	c.imports.WithLabelValues("failed").Add(float64(failed))
}

// InstrumentSearcher times every search made through s.
func (c *Collector) InstrumentSearcher(s catalog.Searcher) catalog.Searcher {
	return catalog.SearcherFunc(func(ctx context.Context, term string) ([]catalog.Candidate, error) {
		start := time.Now()
		res, err := s.Search(ctx, term)
		result := "ok"
		switch {
		case err != nil:
			result = "error"
		case len(res) == 0:
			result = "empty"
		}
		c.searches.WithLabelValues(result).Observe(time.Since(start).Seconds())
		return res, err
	})
}

// WriteTextfile writes every metric to path atomically.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.registry
}
