package msgbus

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotDeclared is wrapped by definition errors for a type missing from a declared set.
	ErrNotDeclared = errors.New("message type not declared")
	// ErrDuplicateType is wrapped by definition errors for a type listed twice.
	ErrDuplicateType = errors.New("duplicate message type")
	// ErrInvalidType is wrapped when a zero MessageType is declared.
	ErrInvalidType = errors.New("invalid message type")
	// ErrCallbackShape is wrapped when a callback does not match func(float64, T).
	ErrCallbackShape = errors.New("callback does not match listener signature")
	// ErrNilCallback is wrapped when a nil callback is registered.
	ErrNilCallback = errors.New("nil callback")
)

// DefinitionError reports a message type used outside its declared set.
type DefinitionError struct {
	Op        string // "send", "listen", "declare" or "require"
	Component string // set for component requirement checks
	Type      string
	Set       string   // SenderSet or ReceiverSet, empty for list declarations
	Declared  []string // contents of the violated set
	Err       error
}

func (e *DefinitionError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Component != "" {
		fmt.Fprintf(&b, " (%s)", e.Component)
	}
	fmt.Fprintf(&b, ": message type %q", e.Type)
	switch {
	case errors.Is(e.Err, ErrNotDeclared):
		fmt.Fprintf(&b, " is not on the %s list", e.Set)
	case errors.Is(e.Err, ErrDuplicateType):
		b.WriteString(" is listed more than once")
		if e.Set != "" {
			fmt.Fprintf(&b, " in %s", e.Set)
		}
	default:
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	fmt.Fprintf(&b, " [%s]", strings.Join(e.Declared, ", "))
	return b.String()
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// CallbackError reports a listener callback rejected at registration.
type CallbackError struct {
	Type string // message type the callback was registered for
	Got  string // dynamic type of the rejected callback
	Err  error
}

func (e *CallbackError) Error() string {
	if errors.Is(e.Err, ErrNilCallback) {
		return fmt.Sprintf("listen: message type %q: nil callback", e.Type)
	}
	return fmt.Sprintf("listen: message type %q: callback %s does not match func(float64, %s)", e.Type, e.Got, e.Type)
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}

// ListenerError wraps a panic raised by a listener during dispatch.
type ListenerError struct {
	Type      string
	Listener  string
	Timestamp float64
	Value     any // recovered panic value
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("listener %s for %q panicked: %v", e.Listener, e.Type, e.Value)
}

// Unwrap exposes the panic value when the listener panicked with an error.
func (e *ListenerError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
