package metrics

import (
	"testing"

	"github.com/OCAP2/msgbus/pkg/msgbus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Ping struct{}

type Pong struct{}

func getCounterVecValue(t *testing.T, counterVec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, counterVec.WithLabelValues(labels...).Write(metric))
	return metric.GetCounter().GetValue()
}

func TestIncTapDrop(t *testing.T) {
	before := getCounterVecValue(t, TapDroppedTotal, "audit", ReasonFull)
	IncTapDrop("audit", ReasonFull)
	IncTapDrop("audit", ReasonFull)
	assert.Equal(t, before+2, getCounterVecValue(t, TapDroppedTotal, "audit", ReasonFull))
}

func TestIncTapDrop_EmptyLabels(t *testing.T) {
	before := getCounterVecValue(t, TapDroppedTotal, "unknown", "unknown")
	IncTapDrop("", "")
	assert.Equal(t, before+1, getCounterVecValue(t, TapDroppedTotal, "unknown", "unknown"))
}

func TestIncTapForward(t *testing.T) {
	before := testutil.ToFloat64(TapForwardedTotal.WithLabelValues("audit"))
	IncTapForward("audit")
	assert.Equal(t, before+1, testutil.ToFloat64(TapForwardedTotal.WithLabelValues("audit")))
}

func TestBusCollector(t *testing.T) {
	b, err := msgbus.New(msgbus.Manifest{
		Senders:   msgbus.MustTypes(msgbus.Type[Ping]()),
		Receivers: msgbus.MustTypes(msgbus.Type[Ping](), msgbus.Type[Pong]()),
	})
	require.NoError(t, err)
	require.NoError(t, msgbus.Listen(b, func(float64, Ping) {}))
	for i := 0; i < 3; i++ {
		_, err = msgbus.Send(b, Ping{})
		require.NoError(t, err)
	}

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(NewBusCollector(b)))

	// Ping: sent + delivered + failed + listeners. Pong: receiver series only.
	assert.Equal(t, 7, testutil.CollectAndCount(NewBusCollector(b)))

	families, err := reg.Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			assert.Equal(t, b.ID(), labels["bus"])
			key := mf.GetName() + "/" + labels["type"]
			if m.GetCounter() != nil {
				values[key] = m.GetCounter().GetValue()
			} else {
				values[key] = m.GetGauge().GetValue()
			}
		}
	}

	assert.Equal(t, 3.0, values["msgbus_messages_sent_total/metrics.Ping"])
	assert.Equal(t, 3.0, values["msgbus_listener_deliveries_total/metrics.Ping"])
	assert.Equal(t, 1.0, values["msgbus_listeners/metrics.Ping"])
	assert.Equal(t, 0.0, values["msgbus_listeners/metrics.Pong"])
	_, hasPongSent := values["msgbus_messages_sent_total/metrics.Pong"]
	assert.False(t, hasPongSent)
}
