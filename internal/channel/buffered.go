package channel

import (
	"sync"

	"github.com/OCAP2/msgbus/internal/metrics"
)

// Buffered never blocks the sender: when the buffer is full or the channel
// is closed the value is dropped and counted under the channel's name.
type Buffered[T any] struct {
	name string
	ch   chan T

	mu     sync.RWMutex
	closed bool
}

func NewBuffered[T any](name string, size int) *Buffered[T] {
	if size < 1 {
		size = 1
	}
	return &Buffered[T]{name: name, ch: make(chan T, size)}
}

func (b *Buffered[T]) Send(v T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		metrics.IncTapDrop(b.name, metrics.ReasonClosed)
		return
	}
	select {
	case b.ch <- v:
		metrics.IncTapForward(b.name)
	default:
		metrics.IncTapDrop(b.name, metrics.ReasonFull)
	}
}

func (b *Buffered[T]) Name() string {
	return b.name
}

func (b *Buffered[T]) Receive() <-chan T {
	return b.ch
}

// Len returns the number of items currently in the buffer
func (b *Buffered[T]) Len() int {
	return len(b.ch)
}

// Close is idempotent.
func (b *Buffered[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.ch)
	}
}
