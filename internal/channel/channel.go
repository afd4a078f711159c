// Package channel bridges synchronous bus dispatch to goroutine consumers.
package channel

// Receiver is the consumer side of a tap.
type Receiver[T any] interface {
	Receive() <-chan T
	// Len reports values waiting to be received.
	Len() int
}

// Sender is the side a bus listener writes to. Send never panics, even after Close.
type Sender[T any] interface {
	Send(T)
}

// Channel is a named tap. Name labels its forward and drop metrics.
// Close ends the Receive channel; values sent after Close are dropped.
type Channel[T any] interface {
	Receiver[T]
	Sender[T]
	Name() string
	Close()
}
