package msgbus

import (
	"fmt"
	"reflect"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Capability names one side of the bus a facet implements.
type Capability uint8

const (
	CapSend Capability = iota + 1
	CapReceive
)

func (c Capability) String() string {
	switch c {
	case CapSend:
		return "send"
	case CapReceive:
		return "receive"
	default:
		return fmt.Sprintf("capability(%d)", uint8(c))
	}
}

// facet is the per-(capability, type) object owned by a bus.
type facet interface {
	capability() Capability
	messageType() reflect.Type
	describe(*TypeStats)
}

type facetKey struct {
	capability Capability
	rt         reflect.Type
}

// facetTable holds exactly one facet per key. It is written only while a
// bus is being built and read-only afterwards.
type facetTable struct {
	facets map[facetKey]facet
}

func newFacetTable(size int) facetTable {
	return facetTable{facets: make(map[facetKey]facet, size)}
}

func (t facetTable) install(f facet) error {
	key := facetKey{capability: f.capability(), rt: f.messageType()}
	if _, ok := t.facets[key]; ok {
		return fmt.Errorf("%s facet for %s already installed: %w", key.capability, key.rt, ErrDuplicateType)
	}
	t.facets[key] = f
	return nil
}

func (t facetTable) get(c Capability, rt reflect.Type) (facet, bool) {
	f, ok := t.facets[facetKey{capability: c, rt: rt}]
	return f, ok
}

func typeAttrs(rt reflect.Type) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("message.type", rt.String()))
}

func senderFor[T any](b *Bus, op string) (*senderFacet[T], error) {
	rt := reflect.TypeFor[T]()
	f, ok := b.table.get(CapSend, rt)
	if !ok {
		return nil, b.undeclared(op, rt, SenderSet, b.manifest.Senders)
	}
	return f.(*senderFacet[T]), nil
}

func registryFor[T any](b *Bus, op string) (*registry[T], error) {
	rt := reflect.TypeFor[T]()
	f, ok := b.table.get(CapReceive, rt)
	if !ok {
		return nil, b.undeclared(op, rt, ReceiverSet, b.manifest.Receivers)
	}
	return f.(*registry[T]), nil
}

func (b *Bus) undeclared(op string, rt reflect.Type, set string, declared TypeList) error {
	err := &DefinitionError{
		Op:       op,
		Type:     rt.String(),
		Set:      set,
		Declared: declared.Names(),
		Err:      ErrNotDeclared,
	}
	b.logger.Error("message type rejected", "bus", b.id, "op", op, "type", err.Type, "set", set)
	return err
}
