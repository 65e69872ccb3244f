package device

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes a device's change tracking as Prometheus metrics.
// Values are read from shared memory at scrape time, so a scrape costs four
// short lock acquisitions plus two control block reads.
type Collector struct {
	d *Device

	changeCount *prometheus.Desc
	dirtyBytes  *prometheus.Desc
	sizeBytes   *prometheus.Desc
	cycleCount  *prometheus.Desc
	flags       *prometheus.Desc
}

// NewCollector returns a collector for d. Register one per device with a
// prometheus.Registerer.
func NewCollector(d *Device) *Collector {
	constLabels := prometheus.Labels{"device": d.Prefix()}
	return &Collector{
		d: d,
		changeCount: prometheus.NewDesc(
			"mbshm_region_change_count",
			"Writes observed by the region's change counter.",
			[]string{"mem"}, constLabels,
		),
		dirtyBytes: prometheus.NewDesc(
			"mbshm_region_dirty_bytes",
			"Bytes covered by the region's accumulated dirty range.",
			[]string{"mem"}, constLabels,
		),
		sizeBytes: prometheus.NewDesc(
			"mbshm_region_size_bytes",
			"Data plane size of the region in bytes.",
			[]string{"mem"}, constLabels,
		),
		cycleCount: prometheus.NewDesc(
			"mbshm_device_cycle_count",
			"Server scan cycles observed in the control block.",
			nil, constLabels,
		),
		flags: prometheus.NewDesc(
			"mbshm_device_flags",
			"Raw control block flags word.",
			nil, constLabels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.changeCount
	ch <- c.dirtyBytes
	ch <- c.sizeBytes
	ch <- c.cycleCount
	ch <- c.flags
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, m := range c.d.regions() {
		mem := m.ID().String()
		ch <- prometheus.MustNewConstMetric(c.changeCount, prometheus.CounterValue, float64(m.ChangeCounter()), mem)
		_, n := m.DirtyRange()
		ch <- prometheus.MustNewConstMetric(c.dirtyBytes, prometheus.GaugeValue, float64(n), mem)
		ch <- prometheus.MustNewConstMetric(c.sizeBytes, prometheus.GaugeValue, float64(m.SizeBytes()), mem)
	}
	ch <- prometheus.MustNewConstMetric(c.cycleCount, prometheus.CounterValue, float64(c.d.Cycle()))
	ch <- prometheus.MustNewConstMetric(c.flags, prometheus.GaugeValue, float64(c.d.Flags()))
}

var _ prometheus.Collector = (*Collector)(nil)
