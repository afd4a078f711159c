package messages

import "github.com/OCAP2/msgbus/pkg/msgbus"

// Sendable is SenderTypes as a type constraint. Keep the two in step:
// TestConstraintsMatchLists fails when they drift.
type Sendable interface {
	Ping
}

// Receivable is ReceiverTypes as a type constraint.
type Receivable interface {
	Ping | Pong
}

// Send is msgbus.Send restricted to SenderTypes, so sending anything else
// does not compile.
func Send[T Sendable](b *msgbus.Bus, msg T, opts ...msgbus.SendOption) (float64, error) {
	return msgbus.Send(b, msg, opts...)
}

// SenderOf is msgbus.SenderOf restricted to SenderTypes.
func SenderOf[T Sendable](b *msgbus.Bus) (msgbus.Sender[T], error) {
	return msgbus.SenderOf[T](b)
}

// Listen is msgbus.Listen restricted to ReceiverTypes.
func Listen[T Receivable](b *msgbus.Bus, cb msgbus.Callback[T], opts ...msgbus.ListenOption) error {
	return msgbus.Listen(b, cb, opts...)
}

// ReceiverOf is msgbus.ReceiverOf restricted to ReceiverTypes.
func ReceiverOf[T Receivable](b *msgbus.Bus) (msgbus.Receiver[T], error) {
	return msgbus.ReceiverOf[T](b)
}
