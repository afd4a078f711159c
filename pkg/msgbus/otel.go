package msgbus

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/msgbus/pkg/msgbus"

type instruments struct {
	sent      metric.Int64Counter
	delivered metric.Int64Counter
	failures  metric.Int64Counter
	listeners metric.Int64ObservableGauge
}

// newInstruments uses the global OTel meter provider when mp is nil
// (a no-op unless the application configured one).
func newInstruments(mp metric.MeterProvider, b *Bus) (*instruments, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	m := mp.Meter(instrumentationName)

	inst := &instruments{}
	var err error

	inst.sent, err = m.Int64Counter(
		"msgbus.messages.sent",
		metric.WithDescription("Total messages sent"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sent counter: %w", err)
	}

	inst.delivered, err = m.Int64Counter(
		"msgbus.listener.deliveries",
		metric.WithDescription("Total listener invocations that returned normally"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating deliveries counter: %w", err)
	}

	inst.failures, err = m.Int64Counter(
		"msgbus.listener.failures",
		metric.WithDescription("Total listener invocations that panicked"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failures counter: %w", err)
	}

	inst.listeners, err = m.Int64ObservableGauge(
		"msgbus.listeners.registered",
		metric.WithDescription("Current number of registered listeners"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating listeners gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			for _, t := range b.manifest.Receivers.types {
				f, ok := b.table.get(CapReceive, t.rt)
				if !ok {
					continue
				}
				var st TypeStats
				f.describe(&st)
				o.ObserveInt64(inst.listeners, int64(st.Listeners), typeAttrs(t.rt))
			}
			return nil
		},
		inst.listeners,
	)
	if err != nil {
		return nil, fmt.Errorf("registering listeners callback: %w", err)
	}

	return inst, nil
}
