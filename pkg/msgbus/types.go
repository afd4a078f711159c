package msgbus

import (
	"reflect"
	"strings"
)

// MessageType identifies one declarable message type.
// Build it with Type; the zero value is not a valid declaration.
type MessageType struct {
	rt          reflect.Type
	newSender   func(b *Bus) facet
	newReceiver func(b *Bus) facet
}

// Type returns the declaration for message type T.
//
// Identity is the Go type itself: Type[Ping]() and Type[*Ping]() are different
// message types, and a named type never matches its underlying type.
func Type[T any]() MessageType {
	rt := reflect.TypeFor[T]()
	return MessageType{
		rt: rt,
		newSender: func(b *Bus) facet {
			return newSenderFacet[T](b, rt)
		},
		newReceiver: func(b *Bus) facet {
			return newRegistry[T](b, rt)
		},
	}
}

// Name returns the package-qualified type name, e.g. "messages.Ping".
func (m MessageType) Name() string {
	if m.rt == nil {
		return "<undeclared>"
	}
	return m.rt.String()
}

func (m MessageType) String() string {
	return m.Name()
}

// Is reports whether m and other declare the same Go type.
func (m MessageType) Is(other MessageType) bool {
	return m.rt != nil && m.rt == other.rt
}

func (m MessageType) valid() bool {
	return m.rt != nil && m.newSender != nil && m.newReceiver != nil
}

// TypeList is an ordered, duplicate-free list of message types.
// Construct it with Types or MustTypes; the zero value is the empty list.
type TypeList struct {
	types []MessageType
}

// Types builds a TypeList. Listing the same type twice is a definition error.
func Types(ts ...MessageType) (TypeList, error) {
	seen := make(map[reflect.Type]struct{}, len(ts))
	out := make([]MessageType, 0, len(ts))
	for _, t := range ts {
		if !t.valid() {
			return TypeList{}, &DefinitionError{Op: "declare", Type: t.Name(), Err: ErrInvalidType}
		}
		if _, dup := seen[t.rt]; dup {
			return TypeList{}, &DefinitionError{
				Op:       "declare",
				Type:     t.Name(),
				Declared: names(out),
				Err:      ErrDuplicateType,
			}
		}
		seen[t.rt] = struct{}{}
		out = append(out, t)
	}
	return TypeList{types: out}, nil
}

// MustTypes is like Types but panics on a definition error.
// It is meant for package-level type list declarations.
func MustTypes(ts ...MessageType) TypeList {
	l, err := Types(ts...)
	if err != nil {
		panic(err)
	}
	return l
}

// Concat appends other to l. The combined list must stay duplicate-free.
func (l TypeList) Concat(other TypeList) (TypeList, error) {
	all := make([]MessageType, 0, len(l.types)+len(other.types))
	all = append(all, l.types...)
	all = append(all, other.types...)
	return Types(all...)
}

// Contains reports whether t is declared in l.
func (l TypeList) Contains(t MessageType) bool {
	return l.lookup(t.rt)
}

func (l TypeList) lookup(rt reflect.Type) bool {
	for _, t := range l.types {
		if t.rt == rt {
			return true
		}
	}
	return false
}

// Has reports whether T is declared in l.
func Has[T any](l TypeList) bool {
	return l.lookup(reflect.TypeFor[T]())
}

// Len returns the number of declared types.
func (l TypeList) Len() int {
	return len(l.types)
}

// All returns a copy of the declared types in declaration order.
func (l TypeList) All() []MessageType {
	return append([]MessageType(nil), l.types...)
}

// Names returns the declared type names in declaration order.
func (l TypeList) Names() []string {
	return names(l.types)
}

func (l TypeList) String() string {
	return "[" + strings.Join(l.Names(), ", ") + "]"
}

func names(ts []MessageType) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Name()
	}
	return out
}

// Set names used in definition errors.
const (
	SenderSet   = "SenderTypes"
	ReceiverSet = "ReceiverTypes"
)

// Manifest is the fixed vocabulary of one bus kind.
type Manifest struct {
	Senders   TypeList
	Receivers TypeList
}

// Validate re-checks both lists. Lists built with Types are always valid;
// this guards manifests assembled from TypeList values of unknown origin.
func (m Manifest) Validate() error {
	if _, err := Types(m.Senders.types...); err != nil {
		return withSet(err, SenderSet)
	}
	if _, err := Types(m.Receivers.types...); err != nil {
		return withSet(err, ReceiverSet)
	}
	return nil
}

func withSet(err error, set string) error {
	if de, ok := err.(*DefinitionError); ok {
		de.Set = set
	}
	return err
}
