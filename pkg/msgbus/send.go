package msgbus

import (
	"context"
	"reflect"
	"sync/atomic"

	"go.opentelemetry.io/otel/metric"
)

// senderFacet is the sender facet for T. It forwards straight to the
// registry for T on its owning bus; T without a registry has no listeners.
type senderFacet[T any] struct {
	bus      *Bus
	rt       reflect.Type
	attrs    metric.MeasurementOption
	registry *registry[T]

	sent atomic.Uint64
}

// newSenderFacet must run after the receiver facets are installed.
func newSenderFacet[T any](b *Bus, rt reflect.Type) *senderFacet[T] {
	s := &senderFacet[T]{bus: b, rt: rt, attrs: typeAttrs(rt)}
	if f, ok := b.table.get(CapReceive, rt); ok {
		s.registry = f.(*registry[T])
	}
	return s
}

func (s *senderFacet[T]) capability() Capability   { return CapSend }
func (s *senderFacet[T]) messageType() reflect.Type { return s.rt }

func (s *senderFacet[T]) describe(ts *TypeStats) {
	ts.Sender = true
	ts.Sent = s.sent.Load()
}

// SendImpl stamps the send, fans msg out to every listener for T in
// registration order and returns the stamp.
func (s *senderFacet[T]) SendImpl(msg T, delay float64) float64 {
	ts := s.bus.times.SendTime(delay)
	s.sent.Add(1)
	s.bus.metrics.sent.Add(context.Background(), 1, s.attrs)
	if s.registry != nil {
		s.registry.dispatch(ts, msg)
	}
	return ts
}

// SendOption configures a single send.
type SendOption func(*sendConfig)

type sendConfig struct {
	delay float64
}

// Delay requests a delay before the message is sent. The value reaches the
// bus TimeSource; StubTime ignores it and nothing in the bus waits.
func Delay(d float64) SendOption {
	return func(c *sendConfig) {
		c.delay = d
	}
}

// Send sends msg to every listener registered for T and returns the send
// timestamp. T must be on the SenderTypes list; otherwise a *DefinitionError
// is returned and no listener runs.
func Send[T any](b *Bus, msg T, opts ...SendOption) (float64, error) {
	s, err := senderFor[T](b, "send")
	if err != nil {
		return 0, err
	}
	cfg := sendConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return s.SendImpl(msg, cfg.delay), nil
}

// SenderOf binds the Sender capability for T. Binding once while wiring a
// component moves the membership check ahead of any message traffic.
func SenderOf[T any](b *Bus) (Sender[T], error) {
	s, err := senderFor[T](b, "send")
	if err != nil {
		return nil, err
	}
	return s, nil
}

// MustSenderOf is like SenderOf but panics on a definition error.
func MustSenderOf[T any](b *Bus) Sender[T] {
	s, err := SenderOf[T](b)
	if err != nil {
		panic(err)
	}
	return s
}
