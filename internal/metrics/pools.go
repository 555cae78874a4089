package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PoolStats reports occupancy per pool name; keys are running, free and cap.
type PoolStats interface {
	Metrics() map[string]map[string]int
}

type poolCollector struct {
	stats PoolStats
	desc  *prometheus.Desc
}

// RegisterPoolCollector exports worker pool occupancy as gauges.
func RegisterPoolCollector(reg prometheus.Registerer, stats PoolStats) error {
	return reg.Register(&poolCollector{
		stats: stats,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "worker_pool", "workers"),
			"Worker pool occupancy by pool and state.",
			[]string{"pool", "state"}, nil,
		),
	})
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	for pool, states := range c.stats.Metrics() {
		for state, n := range states {
			ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(n), pool, state)
		}
	}
}
