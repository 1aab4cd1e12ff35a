package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/srediag/atomicx/pkg/atomicx"
	"github.com/srediag/atomicx/pkg/registry"
)

// CellAttribute is the attribute key carrying the cell name.
const CellAttribute = "cell"

type gauges struct {
	ints   metric.Int64ObservableGauge
	bools  metric.Int64ObservableGauge
	floats metric.Float64ObservableGauge
}

// ObserveOTel registers observable gauges atomicx.int, atomicx.bool and
// atomicx.float on meter. Unregister the returned registration to stop
// reporting.
func ObserveOTel(meter metric.Meter, reg *registry.Registry) (metric.Registration, error) {
	var (
		g   gauges
		err error
	)
	if g.ints, err = meter.Int64ObservableGauge("atomicx.int",
		metric.WithDescription("Current value of an atomic integer cell.")); err != nil {
		return nil, err
	}
	if g.bools, err = meter.Int64ObservableGauge("atomicx.bool",
		metric.WithDescription("Current value of an atomic boolean cell (0 or 1).")); err != nil {
		return nil, err
	}
	if g.floats, err = meter.Float64ObservableGauge("atomicx.float",
		metric.WithDescription("Current value of an atomic float cell.")); err != nil {
		return nil, err
	}
	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		observe(o, g, reg)
		return nil
	}, g.ints, g.bools, g.floats)
}

func observe(o metric.Observer, g gauges, reg *registry.Registry) {
	reg.Range(func(e *registry.Entry) bool {
		attrs := metric.WithAttributes(attribute.String(CellAttribute, e.Name))
		switch cell := e.Cell.(type) {
		case *atomicx.IntCell:
			o.ObserveInt64(g.ints, cell.Load(), attrs)
		case *atomicx.BoolCell:
			o.ObserveInt64(g.bools, cell.Int(), attrs)
		case *atomicx.FloatCell:
			o.ObserveFloat64(g.floats, cell.Load(), attrs)
		}
		return true
	})
}
