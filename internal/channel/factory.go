//go:build !debug

package channel

// New returns a buffered channel of the given size. Debug builds return an
// unbuffered one instead, so consumers run in lock-step with dispatch.
func New[T any](name string, size int) Channel[T] {
	return NewBuffered[T](name, size)
}
