package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Drop reasons.
const (
	ReasonFull   = "full"
	ReasonClosed = "closed"
)

var (
	TapForwardedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "msgbus_tap_forwarded_total",
		Help: "Total number of deliveries forwarded to a tap channel",
	}, []string{"tap"})

	TapDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "msgbus_tap_dropped_total",
		Help: "Total number of deliveries a tap dropped, by reason",
	}, []string{"tap", "reason"})
)

// IncTapForward records a delivery handed to a tap consumer.
func IncTapForward(tap string) {
	if tap == "" {
		tap = "unknown"
	}
	TapForwardedTotal.WithLabelValues(tap).Inc()
}

// IncTapDrop records a dropped delivery with a concrete reason.
func IncTapDrop(tap, reason string) {
	if tap == "" {
		tap = "unknown"
	}
	if reason == "" {
		reason = "unknown"
	}
	TapDroppedTotal.WithLabelValues(tap, reason).Inc()
}
