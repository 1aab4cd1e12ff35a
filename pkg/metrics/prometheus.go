// Package metrics exports registry cells to Prometheus and OpenTelemetry.
// Values are read when the metrics are collected, never cached.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/srediag/atomicx/pkg/atomicx"
	"github.com/srediag/atomicx/pkg/registry"
)

// Collector is a prometheus.Collector over every cell in a registry. Each
// cell becomes a gauge labeled with its name.
type Collector struct {
	reg       *registry.Registry
	intDesc   *prometheus.Desc
	boolDesc  *prometheus.Desc
	floatDesc *prometheus.Desc
}

// NewCollector returns a collector emitting <namespace>_{int,bool,float}_value.
func NewCollector(reg *registry.Registry, namespace string) *Collector {
	labels := []string{"cell"}
	return &Collector{
		reg: reg,
		intDesc: prometheus.NewDesc(prometheus.BuildFQName(namespace, "int", "value"),
			"Current value of an atomic integer cell.", labels, nil),
		boolDesc: prometheus.NewDesc(prometheus.BuildFQName(namespace, "bool", "value"),
			"Current value of an atomic boolean cell (0 or 1).", labels, nil),
		floatDesc: prometheus.NewDesc(prometheus.BuildFQName(namespace, "float", "value"),
			"Current value of an atomic float cell.", labels, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.intDesc
	ch <- c.boolDesc
	ch <- c.floatDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.reg.Range(func(e *registry.Entry) bool {
		switch cell := e.Cell.(type) {
		case *atomicx.IntCell:
			ch <- prometheus.MustNewConstMetric(c.intDesc, prometheus.GaugeValue, float64(cell.Load()), e.Name)
		case *atomicx.BoolCell:
			ch <- prometheus.MustNewConstMetric(c.boolDesc, prometheus.GaugeValue, float64(cell.Int()), e.Name)
		case *atomicx.FloatCell:
			ch <- prometheus.MustNewConstMetric(c.floatDesc, prometheus.GaugeValue, cell.Load(), e.Name)
		}
		return true
	})
}
