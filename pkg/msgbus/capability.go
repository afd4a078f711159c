package msgbus

// Callback is the fixed listener signature for message type T.
type Callback[T any] func(timestamp float64, msg T)

// Sender is the capability to submit messages of type T.
type Sender[T any] interface {
	// SendImpl sends msg and returns the time it was sent.
	// The delay may not be honored, depending on the bus TimeSource.
	SendImpl(msg T, delay float64) float64
}

// Receiver is the capability to register callbacks for messages of type T.
type Receiver[T any] interface {
	ListenImpl(cb Callback[T])
}

// TimeSource supplies the timestamp reported for a send.
// It is the seam for a scheduling service; the bus itself never waits on it.
type TimeSource interface {
	SendTime(delay float64) float64
}

// TimeSourceFunc adapts a function to TimeSource.
type TimeSourceFunc func(delay float64) float64

func (f TimeSourceFunc) SendTime(delay float64) float64 {
	return f(delay)
}

// StubTime is the placeholder TimeSource: every send is stamped 0 and the
// requested delay is ignored.
type StubTime struct{}

func (StubTime) SendTime(float64) float64 {
	return 0
}
