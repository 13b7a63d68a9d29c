package metric

import "github.com/prometheus/client_golang/prometheus"

// SessionStats reports live session state at scrape time.
type SessionStats interface {
	SubgraphCount() int
}

// Collector collects custom metrics from the running dev session.
type Collector struct {
	stats     SessionStats
	subgraphs *prometheus.Desc
}

// NewCollector creates a collector reading from stats on every scrape.
func NewCollector(stats SessionStats) *Collector {
	return &Collector{
		stats: stats,
		subgraphs: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "subgraphs"),
			"Subgraphs currently registered with the leader.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.subgraphs
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.subgraphs, prometheus.GaugeValue, float64(c.stats.SubgraphCount()))
}
