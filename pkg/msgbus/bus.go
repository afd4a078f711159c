package msgbus

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
)

// Logger interface for pluggable logging. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// FailurePolicy decides what a listener panic does to the running dispatch.
type FailurePolicy uint8

const (
	// Propagate aborts the dispatch; the panic reaches the sender after it
	// has been logged and counted. Remaining listeners are not invoked.
	Propagate FailurePolicy = iota
	// Isolate recovers the panic, reports it and continues with the next listener.
	Isolate
)

func (p FailurePolicy) String() string {
	switch p {
	case Propagate:
		return "propagate"
	case Isolate:
		return "isolate"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

// ParseFailurePolicy maps a config value to a FailurePolicy. Empty means Propagate.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "propagate":
		return Propagate, nil
	case "isolate":
		return Isolate, nil
	default:
		return Propagate, fmt.Errorf("unknown failure policy %q", s)
	}
}

// Option configures a Bus.
type Option func(*config)

type config struct {
	times         TimeSource
	logger        Logger
	policy        FailurePolicy
	onFailure     func(*ListenerError)
	meterProvider metric.MeterProvider
	requirements  []requirement
}

// WithTimeSource replaces the StubTime placeholder.
func WithTimeSource(ts TimeSource) Option {
	return func(c *config) {
		if ts != nil {
			c.times = ts
		}
	}
}

// WithLogger sets the bus logger. The default discards everything.
func WithLogger(l Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithFailurePolicy sets how listener panics are handled.
func WithFailurePolicy(p FailurePolicy) Option {
	return func(c *config) {
		c.policy = p
	}
}

// WithFailureHandler is called for every listener panic, before the policy applies.
func WithFailureHandler(fn func(*ListenerError)) Option {
	return func(c *config) {
		c.onFailure = fn
	}
}

// WithMeterProvider sets the OTel meter provider. Defaults to the global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) {
		c.meterProvider = mp
	}
}

// Requires declares what a component will send and listen for. New fails if
// the manifest does not cover it, before the bus exists.
func Requires(component string, sends, receives TypeList) Option {
	return func(c *config) {
		c.requirements = append(c.requirements, requirement{
			component: component,
			sends:     sends,
			receives:  receives,
		})
	}
}

type requirement struct {
	component string
	sends     TypeList
	receives  TypeList
}

func (r requirement) check(m Manifest) error {
	for _, t := range r.sends.types {
		if !m.Senders.Contains(t) {
			return &DefinitionError{Op: "require", Component: r.component, Type: t.Name(),
				Set: SenderSet, Declared: m.Senders.Names(), Err: ErrNotDeclared}
		}
	}
	for _, t := range r.receives.types {
		if !m.Receivers.Contains(t) {
			return &DefinitionError{Op: "require", Component: r.component, Type: t.Name(),
				Set: ReceiverSet, Declared: m.Receivers.Names(), Err: ErrNotDeclared}
		}
	}
	return nil
}

// Bus composes one sender facet per SenderTypes entry and one listener
// registry per ReceiverTypes entry, and dispatches synchronously.
type Bus struct {
	id        string
	manifest  Manifest
	table     facetTable
	times     TimeSource
	logger    Logger
	policy    FailurePolicy
	onFailure func(*ListenerError)
	metrics   *instruments
}

// New validates m and every Requires option, then builds the bus.
// The bus is ready for use as soon as New returns.
func New(m Manifest, opts ...Option) (*Bus, error) {
	cfg := &config{
		times:  StubTime{},
		logger: nopLogger{},
		policy: Propagate,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	for _, r := range cfg.requirements {
		if err := r.check(m); err != nil {
			return nil, err
		}
	}

	b := &Bus{
		id:        uuid.NewString(),
		manifest:  m,
		table:     newFacetTable(m.Senders.Len() + m.Receivers.Len()),
		times:     cfg.times,
		logger:    cfg.logger,
		policy:    cfg.policy,
		onFailure: cfg.onFailure,
	}

	// Registries first: sender facets resolve their registry on construction.
	for _, t := range m.Receivers.types {
		if err := b.table.install(t.newReceiver(b)); err != nil {
			return nil, err
		}
	}
	for _, t := range m.Senders.types {
		if err := b.table.install(t.newSender(b)); err != nil {
			return nil, err
		}
	}

	inst, err := newInstruments(cfg.meterProvider, b)
	if err != nil {
		return nil, err
	}
	b.metrics = inst

	b.logger.Info("message bus ready",
		"bus", b.id,
		"senders", m.Senders.String(),
		"receivers", m.Receivers.String(),
		"policy", b.policy.String(),
	)
	return b, nil
}

// ID returns the instance id used in logs.
func (b *Bus) ID() string {
	return b.id
}

// Manifest returns the declared type lists.
func (b *Bus) Manifest() Manifest {
	return b.manifest
}

// Policy returns the listener failure policy.
func (b *Bus) Policy() FailurePolicy {
	return b.policy
}

func (b *Bus) listenerFailed(attrs metric.MeasurementOption, lerr *ListenerError) {
	b.metrics.failures.Add(context.Background(), 1, attrs)
	b.logger.Error("listener panicked",
		"bus", b.id,
		"type", lerr.Type,
		"listener", lerr.Listener,
		"panic", fmt.Sprint(lerr.Value),
		"policy", b.policy.String(),
	)
	if b.onFailure != nil {
		b.onFailure(lerr)
	}
}

// TypeStats describes one declared message type.
type TypeStats struct {
	Type      string `json:"type"`
	Sender    bool   `json:"sender"`
	Receiver  bool   `json:"receiver"`
	Listeners int    `json:"listeners"`
	Sent      uint64 `json:"sent"`
	Delivered uint64 `json:"delivered"`
	Failed    uint64 `json:"failed"`
}

// Stats is a point-in-time view of a bus.
type Stats struct {
	ID    string      `json:"id"`
	Types []TypeStats `json:"types"`
}

// Stats reports every declared type, senders first, in declaration order.
func (b *Bus) Stats() Stats {
	st := Stats{ID: b.id}
	index := make(map[reflect.Type]int)
	collect := func(l TypeList, c Capability) {
		for _, t := range l.types {
			i, ok := index[t.rt]
			if !ok {
				st.Types = append(st.Types, TypeStats{Type: t.Name()})
				i = len(st.Types) - 1
				index[t.rt] = i
			}
			if f, ok := b.table.get(c, t.rt); ok {
				f.describe(&st.Types[i])
			}
		}
	}
	collect(b.manifest.Senders, CapSend)
	collect(b.manifest.Receivers, CapReceive)
	return st
}
