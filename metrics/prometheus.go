package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/finpulse/fincache/types"
)

// CacheCollector exposes the engine's statistics as prometheus metrics.
// It reads through types.StatsSource on every scrape, so the engine
// needs no metric plumbing of its own.
type CacheCollector struct {
	source types.StatsSource

	hits        *prometheus.Desc
	misses      *prometheus.Desc
	evictions   *prometheus.Desc
	entries     *prometheus.Desc
	sizeBytes   *prometheus.Desc
	hitRate     *prometheus.Desc
	utilization *prometheus.Desc
}

func NewCacheCollector(namespace string, source types.StatsSource) *CacheCollector {
	if namespace == "" {
		namespace = "fincache"
	}

	return &CacheCollector{
		source: source,
		hits: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "hits_total"),
			"Cumulative cache hits.", nil, nil),
		misses: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "misses_total"),
			"Cumulative cache misses.", nil, nil),
		evictions: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "evictions_total"),
			"Cumulative evictions, including TTL expiries.", nil, nil),
		entries: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "entries"),
			"Current number of live entries.", nil, nil),
		sizeBytes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "size_bytes"),
			"Current total size of cached values.", nil, nil),
		hitRate: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "hit_rate"),
			"Fraction of reads served from cache.", nil, nil),
		utilization: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "utilization_percent"),
			"Cached size as a percentage of the size ceiling.", nil, nil),
	}
}

func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.evictions
	ch <- c.entries
	ch <- c.sizeBytes
	ch <- c.hitRate
	ch <- c.utilization
}

func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	cacheStats := c.source.GetStats()

	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(cacheStats.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(cacheStats.Misses))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(cacheStats.Evictions))
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(cacheStats.TotalEntries))
	ch <- prometheus.MustNewConstMetric(c.sizeBytes, prometheus.GaugeValue, float64(cacheStats.CacheSizeBytes))
	ch <- prometheus.MustNewConstMetric(c.hitRate, prometheus.GaugeValue, cacheStats.HitRate)
	ch <- prometheus.MustNewConstMetric(c.utilization, prometheus.GaugeValue, cacheStats.UtilizationPercent)
}

// NewRegistry builds a registry with the cache collector plus the
// standard go/process collectors.
func NewRegistry(namespace string, source types.StatsSource, goMetrics bool) *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(NewCacheCollector(namespace, source))

	if goMetrics {
		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	return registry
}
