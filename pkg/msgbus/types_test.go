package msgbus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Ping struct{ ID int }

type Pong struct{ ID int }

type Tick struct{}

// LoudPing converts to and from Ping but is a distinct message type.
type LoudPing Ping

func TestType_Identity(t *testing.T) {
	assert.True(t, Type[Ping]().Is(Type[Ping]()))
	assert.False(t, Type[Ping]().Is(Type[*Ping]()))
	assert.False(t, Type[Ping]().Is(Type[LoudPing]()))
	assert.False(t, MessageType{}.Is(MessageType{}))

	assert.Equal(t, "msgbus.Ping", Type[Ping]().Name())
	assert.Equal(t, "*msgbus.Ping", Type[*Ping]().String())
	assert.Equal(t, "<undeclared>", MessageType{}.Name())
}

func TestTypes_RejectsDuplicates(t *testing.T) {
	_, err := Types(Type[Ping](), Type[Pong](), Type[Ping]())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateType)

	var de *DefinitionError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "declare", de.Op)
	assert.Equal(t, "msgbus.Ping", de.Type)
	assert.Equal(t, []string{"msgbus.Ping", "msgbus.Pong"}, de.Declared)
}

func TestTypes_RejectsZeroValue(t *testing.T) {
	_, err := Types(Type[Ping](), MessageType{})
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestMustTypes_PanicsOnDuplicate(t *testing.T) {
	assert.Panics(t, func() {
		MustTypes(Type[Tick](), Type[Tick]())
	})
	assert.NotPanics(t, func() {
		MustTypes(Type[Tick]())
	})
}

func TestTypeList_Concat(t *testing.T) {
	first := MustTypes(Type[Ping]())
	second := MustTypes(Type[Pong](), Type[Tick]())

	all, err := first.Concat(second)
	require.NoError(t, err)
	assert.Equal(t, []string{"msgbus.Ping", "msgbus.Pong", "msgbus.Tick"}, all.Names())

	// Sub-lists are left untouched.
	assert.Equal(t, 1, first.Len())
	assert.Equal(t, 2, second.Len())

	_, err = all.Concat(MustTypes(Type[Pong]()))
	assert.ErrorIs(t, err, ErrDuplicateType)
}

func TestTypeList_Membership(t *testing.T) {
	l := MustTypes(Type[Ping](), Type[Pong]())

	assert.True(t, l.Contains(Type[Ping]()))
	assert.False(t, l.Contains(Type[LoudPing]()))
	assert.True(t, Has[Pong](l))
	assert.False(t, Has[Tick](l))
	assert.False(t, Has[Ping](TypeList{}))

	assert.Equal(t, "[msgbus.Ping, msgbus.Pong]", l.String())
	assert.Equal(t, "[]", TypeList{}.String())
}

func TestTypeList_AllReturnsCopy(t *testing.T) {
	l := MustTypes(Type[Ping](), Type[Pong]())
	all := l.All()
	all[0] = Type[Tick]()

	assert.Equal(t, "msgbus.Ping", l.All()[0].Name())
}

func TestManifest_Validate(t *testing.T) {
	assert.NoError(t, Manifest{}.Validate())

	ok := Manifest{
		Senders:   MustTypes(Type[Ping]()),
		Receivers: MustTypes(Type[Ping](), Type[Pong]()),
	}
	assert.NoError(t, ok.Validate())

	// Only reachable from inside the package; Types never builds such a list.
	bad := Manifest{
		Senders:   MustTypes(Type[Ping]()),
		Receivers: TypeList{types: []MessageType{Type[Pong](), Type[Pong]()}},
	}
	err := bad.Validate()
	require.Error(t, err)

	var de *DefinitionError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, ReceiverSet, de.Set)
	assert.Contains(t, err.Error(), "is listed more than once in ReceiverTypes")
}

func TestDefinitionError_Message(t *testing.T) {
	err := &DefinitionError{
		Op:       "send",
		Type:     "msgbus.Pong",
		Set:      SenderSet,
		Declared: []string{"msgbus.Ping"},
		Err:      ErrNotDeclared,
	}
	assert.Equal(t, `send: message type "msgbus.Pong" is not on the SenderTypes list [msgbus.Ping]`, err.Error())

	err.Component = "ponger"
	err.Op = "require"
	assert.Equal(t, `require (ponger): message type "msgbus.Pong" is not on the SenderTypes list [msgbus.Ping]`, err.Error())
}
