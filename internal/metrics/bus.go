package metrics

import (
	"github.com/OCAP2/msgbus/pkg/msgbus"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	sentDesc = prometheus.NewDesc(
		"msgbus_messages_sent_total",
		"Total messages sent, by message type",
		[]string{"bus", "type"}, nil,
	)
	deliveredDesc = prometheus.NewDesc(
		"msgbus_listener_deliveries_total",
		"Total listener invocations that returned normally, by message type",
		[]string{"bus", "type"}, nil,
	)
	failedDesc = prometheus.NewDesc(
		"msgbus_listener_failures_total",
		"Total listener invocations that panicked, by message type",
		[]string{"bus", "type"}, nil,
	)
	listenersDesc = prometheus.NewDesc(
		"msgbus_listeners",
		"Registered listeners, by message type",
		[]string{"bus", "type"}, nil,
	)
)

// BusCollector exports Bus.Stats on every scrape.
type BusCollector struct {
	bus *msgbus.Bus
}

func NewBusCollector(b *msgbus.Bus) *BusCollector {
	return &BusCollector{bus: b}
}

func (c *BusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- sentDesc
	ch <- deliveredDesc
	ch <- failedDesc
	ch <- listenersDesc
}

func (c *BusCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.bus.Stats()
	for _, ts := range st.Types {
		if ts.Sender {
			ch <- prometheus.MustNewConstMetric(sentDesc, prometheus.CounterValue, float64(ts.Sent), st.ID, ts.Type)
		}
		if ts.Receiver {
			ch <- prometheus.MustNewConstMetric(deliveredDesc, prometheus.CounterValue, float64(ts.Delivered), st.ID, ts.Type)
			ch <- prometheus.MustNewConstMetric(failedDesc, prometheus.CounterValue, float64(ts.Failed), st.ID, ts.Type)
			ch <- prometheus.MustNewConstMetric(listenersDesc, prometheus.GaugeValue, float64(ts.Listeners), st.ID, ts.Type)
		}
	}
}
