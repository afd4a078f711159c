// Package trace records what listeners observed, in invocation order.
package trace

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/OCAP2/msgbus/pkg/msgbus"
)

// Entry is one observed delivery.
type Entry[T any] struct {
	Timestamp float64
	Msg       T
}

func (e Entry[T]) String() string {
	return fmt.Sprintf("(%g, %+v)", e.Timestamp, e.Msg)
}

// Recorder is a thread-safe, append-only trace for one message type.
type Recorder[T any] struct {
	mu      sync.Mutex
	entries []Entry[T]
}

func New[T any]() *Recorder[T] {
	return &Recorder[T]{entries: make([]Entry[T], 0)}
}

// Record has the listener callback shape, so it can be registered directly.
func (r *Recorder[T]) Record(timestamp float64, msg T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry[T]{Timestamp: timestamp, Msg: msg})
}

// Attach registers Record on b for T.
func (r *Recorder[T]) Attach(b *msgbus.Bus, opts ...msgbus.ListenOption) error {
	return msgbus.Listen(b, r.Record, opts...)
}

// Entries returns a copy of the trace.
func (r *Recorder[T]) Entries() []Entry[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry[T], len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Drain returns all entries and clears the trace.
func (r *Recorder[T]) Drain() []Entry[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := r.entries
	r.entries = make([]Entry[T], 0, cap(r.entries))
	return result
}

func (r *Recorder[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = r.entries[:0]
}

// Event is one delivery in a Timeline.
type Event struct {
	Timestamp float64 `json:"timestamp"`
	Type      string  `json:"type"`
	Listener  string  `json:"listener,omitempty"`
	Msg       any     `json:"msg"`
}

// Timeline interleaves deliveries of several message types.
type Timeline struct {
	mu     sync.Mutex
	events []Event
}

// Observe registers a listener for T on b that appends to tl.
func Observe[T any](tl *Timeline, b *msgbus.Bus, listener string) error {
	typ := reflect.TypeFor[T]().String()
	return msgbus.Listen(b, func(ts float64, msg T) {
		tl.mu.Lock()
		defer tl.mu.Unlock()
		tl.events = append(tl.events, Event{Timestamp: ts, Type: typ, Listener: listener, Msg: msg})
	}, msgbus.Named(listener))
}

// Events returns a copy of the timeline.
func (tl *Timeline) Events() []Event {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	out := make([]Event, len(tl.events))
	copy(out, tl.events)
	return out
}
