package channel

import (
	"sync"

	"github.com/OCAP2/msgbus/internal/metrics"
)

// Unbuffered hands each value straight to a consumer: Send blocks until the
// value is received or the channel is closed.
type Unbuffered[T any] struct {
	name string
	ch   chan T
	done chan struct{}

	mu   sync.RWMutex
	once sync.Once
}

func NewUnbuffered[T any](name string) *Unbuffered[T] {
	return &Unbuffered[T]{
		name: name,
		ch:   make(chan T),
		done: make(chan struct{}),
	}
}

func (u *Unbuffered[T]) Send(v T) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	select {
	case <-u.done:
		metrics.IncTapDrop(u.name, metrics.ReasonClosed)
		return
	default:
	}
	select {
	case u.ch <- v:
		metrics.IncTapForward(u.name)
	case <-u.done:
		metrics.IncTapDrop(u.name, metrics.ReasonClosed)
	}
}

func (u *Unbuffered[T]) Name() string {
	return u.name
}

func (u *Unbuffered[T]) Receive() <-chan T {
	return u.ch
}

// Len always returns 0 for unbuffered channels
func (u *Unbuffered[T]) Len() int {
	return 0
}

// Close releases blocked senders, then closes the Receive channel.
func (u *Unbuffered[T]) Close() {
	u.once.Do(func() {
		close(u.done)
		u.mu.Lock()
		close(u.ch)
		u.mu.Unlock()
	})
}
