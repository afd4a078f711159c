package channel

import "github.com/OCAP2/msgbus/pkg/msgbus"

// Delivery is what a listener was called with.
type Delivery[T any] struct {
	Timestamp float64
	Msg       T
}

// Tap registers a listener for T on b that forwards every delivery into a
// channel named name. Listeners cannot be removed, so after Close the
// listener stays registered and its deliveries are dropped.
func Tap[T any](b *msgbus.Bus, name string, size int) (Channel[Delivery[T]], error) {
	ch := New[Delivery[T]](name, size)
	err := msgbus.Listen(b, func(ts float64, msg T) {
		ch.Send(Delivery[T]{Timestamp: ts, Msg: msg})
	}, msgbus.Named(name))
	if err != nil {
		ch.Close()
		return nil, err
	}
	return ch, nil
}
