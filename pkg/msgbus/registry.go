package msgbus

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"
)

type entry[T any] struct {
	name   string
	cb     Callback[T]
	logged bool
}

// registry is the receiver facet for T: an append-only, ordered list of
// callbacks. Dispatch iterates a snapshot, so registrations made while a
// dispatch is running take effect from the next send.
type registry[T any] struct {
	bus   *Bus
	rt    reflect.Type
	attrs metric.MeasurementOption

	mu      sync.Mutex
	entries []entry[T]

	delivered atomic.Uint64
	failed    atomic.Uint64
}

func newRegistry[T any](b *Bus, rt reflect.Type) *registry[T] {
	return &registry[T]{
		bus:   b,
		rt:    rt,
		attrs: typeAttrs(rt),
	}
}

func (r *registry[T]) capability() Capability   { return CapReceive }
func (r *registry[T]) messageType() reflect.Type { return r.rt }

func (r *registry[T]) describe(s *TypeStats) {
	s.Receiver = true
	s.Listeners = r.Len()
	s.Delivered = r.delivered.Load()
	s.Failed = r.failed.Load()
}

// ListenImpl appends cb with a generated name. A nil cb panics with a
// *CallbackError since Receiver has no error return.
func (r *registry[T]) ListenImpl(cb Callback[T]) {
	if cb == nil {
		panic(&CallbackError{Type: r.rt.String(), Got: "nil", Err: ErrNilCallback})
	}
	r.add("", cb, false)
}

func (r *registry[T]) add(name string, cb Callback[T], logged bool) string {
	r.mu.Lock()
	if name == "" {
		name = fmt.Sprintf("%s#%d", r.rt, len(r.entries)+1)
	}
	r.entries = append(r.entries, entry[T]{name: name, cb: cb, logged: logged})
	n := len(r.entries)
	r.mu.Unlock()

	r.bus.logger.Debug("listener registered", "bus", r.bus.id, "type", r.rt.String(), "listener", name, "position", n)
	return name
}

// Len returns the number of registered callbacks.
func (r *registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *registry[T]) snapshot() []entry[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.entries)
	return r.entries[:n:n]
}

func (r *registry[T]) dispatch(ts float64, msg T) {
	for _, e := range r.snapshot() {
		r.invoke(e, ts, msg)
	}
}

func (r *registry[T]) invoke(e entry[T], ts float64, msg T) {
	var start time.Time
	if e.logged {
		start = time.Now()
		r.bus.logger.Debug("delivering message", "type", r.rt.String(), "listener", e.name, "timestamp", ts)
	}

	defer func() {
		v := recover()
		if v == nil {
			return
		}
		r.failed.Add(1)
		r.bus.listenerFailed(r.attrs, &ListenerError{
			Type:      r.rt.String(),
			Listener:  e.name,
			Timestamp: ts,
			Value:     v,
		})
		if r.bus.policy == Propagate {
			panic(v)
		}
	}()

	e.cb(ts, msg)

	r.delivered.Add(1)
	r.bus.metrics.delivered.Add(context.Background(), 1, r.attrs)
	if e.logged {
		r.bus.logger.Debug("message delivered", "type", r.rt.String(), "listener", e.name, "duration", time.Since(start))
	}
}
