// Package msgbus is a type-safe, in-process publish/subscribe bus.
//
// A bus kind is described by a Manifest: the message types it may send and
// the message types it may listen for. New builds one sender facet per
// sendable type and one listener registry per receivable type, keyed by Go
// type, so every (capability, type) pair has exactly one owner.
//
//	var manifest = msgbus.Manifest{
//		Senders:   msgbus.MustTypes(msgbus.Type[Ping]()),
//		Receivers: msgbus.MustTypes(msgbus.Type[Ping](), msgbus.Type[Pong]()),
//	}
//
//	b, err := msgbus.New(manifest)
//	...
//	err = msgbus.Listen[Ping](b, func(ts float64, p Ping) { ... })
//	ts, err := msgbus.Send(b, Ping{ID: 1})
//
// Type membership is checked when the bus is built (Requires), when a
// capability is bound (SenderOf, ReceiverOf) and on every Send/Listen, always
// before any listener runs. Dispatch is synchronous: Send returns after every
// listener for the message's exact type has run, in registration order.
//
// Send timestamps come from a TimeSource. The default StubTime stamps every
// send with 0 and ignores the requested delay.
package msgbus
