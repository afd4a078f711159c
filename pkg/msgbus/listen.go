package msgbus

import (
	"fmt"
	"reflect"
)

// ListenOption configures listener registration.
type ListenOption func(*listenConfig)

type listenConfig struct {
	name   string
	logged bool
}

// Named sets the listener name used in logs and failure reports.
func Named(name string) ListenOption {
	return func(c *listenConfig) {
		c.name = name
	}
}

// Logged adds debug logging around every invocation of the listener.
func Logged() ListenOption {
	return func(c *listenConfig) {
		c.logged = true
	}
}

// Listen appends cb to the listeners for T. T must be given explicitly and
// must be on the ReceiverTypes list.
func Listen[T any](b *Bus, cb Callback[T], opts ...ListenOption) error {
	r, err := registryFor[T](b, "listen")
	if err != nil {
		return err
	}
	if cb == nil {
		return &CallbackError{Type: r.rt.String(), Got: "nil", Err: ErrNilCallback}
	}

	cfg := &listenConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	r.add(cfg.name, cb, cfg.logged)
	return nil
}

// ListenFunc registers a callback whose type is only known at run time.
// Anything other than a func(float64, T) is rejected here, at registration,
// with a *CallbackError.
func ListenFunc[T any](b *Bus, fn any, opts ...ListenOption) error {
	r, err := registryFor[T](b, "listen")
	if err != nil {
		return err
	}

	var cb Callback[T]
	switch f := fn.(type) {
	case Callback[T]:
		cb = f
	case func(float64, T):
		cb = f
	case nil:
		return &CallbackError{Type: r.rt.String(), Got: "nil", Err: ErrNilCallback}
	default:
		// Named function types with the listener signature convert.
		rv := reflect.ValueOf(fn)
		want := reflect.TypeFor[Callback[T]]()
		if rv.Kind() != reflect.Func || !rv.Type().ConvertibleTo(want) {
			return &CallbackError{Type: r.rt.String(), Got: fmt.Sprintf("%T", fn), Err: ErrCallbackShape}
		}
		cb = rv.Convert(want).Interface().(Callback[T])
	}
	return Listen(b, cb, opts...)
}

// ReceiverOf binds the Receiver capability for T.
func ReceiverOf[T any](b *Bus) (Receiver[T], error) {
	r, err := registryFor[T](b, "listen")
	if err != nil {
		return nil, err
	}
	return r, nil
}
