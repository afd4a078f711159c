package messages

import (
	"testing"

	"github.com/OCAP2/msgbus/pkg/msgbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLists(t *testing.T) {
	assert.Equal(t, []string{"messages.Ping"}, SenderTypes.Names())
	assert.Equal(t, []string{"messages.Ping", "messages.Pong"}, ReceiverTypes.Names())
	assert.NoError(t, Manifest().Validate())
}

func TestManifest_PongIsReceiveOnly(t *testing.T) {
	b, err := msgbus.New(Manifest())
	require.NoError(t, err)

	assert.NoError(t, msgbus.Listen(b, func(float64, Pong) {}))

	_, err = msgbus.Send(b, Pong{ID: 1})
	assert.ErrorIs(t, err, msgbus.ErrNotDeclared)

	_, err = msgbus.SenderOf[Ping](b)
	assert.NoError(t, err)
}

func TestMustConcat_PanicsOnOverlap(t *testing.T) {
	assert.Panics(t, func() {
		mustConcat(coreReceivers, coreSenders)
	})
}

func TestConstraintsMatchLists(t *testing.T) {
	assert.True(t, msgbus.Has[Ping](SenderTypes))
	assert.Equal(t, 1, SenderTypes.Len(), "Sendable lists Ping only")

	assert.True(t, msgbus.Has[Ping](ReceiverTypes))
	assert.True(t, msgbus.Has[Pong](ReceiverTypes))
	assert.Equal(t, 2, ReceiverTypes.Len(), "Receivable lists Ping and Pong only")
}

func TestTypedSendAndListen(t *testing.T) {
	b, err := msgbus.New(Manifest())
	require.NoError(t, err)

	var pings []Ping
	var pongs int
	require.NoError(t, Listen(b, func(_ float64, p Ping) { pings = append(pings, p) }))
	require.NoError(t, Listen(b, func(float64, Pong) { pongs++ }))

	ts, err := Send(b, Ping{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, ts)

	s, err := SenderOf[Ping](b)
	require.NoError(t, err)
	s.SendImpl(Ping{ID: 2}, 0)

	r, err := ReceiverOf[Pong](b)
	require.NoError(t, err)
	r.ListenImpl(func(float64, Pong) { pongs++ })

	assert.Equal(t, []Ping{{ID: 1}, {ID: 2}}, pings)
	assert.Zero(t, pongs)
}

func TestTypedLayer_KeepsRuntimeGuard(t *testing.T) {
	// A bus built from a narrower manifest still rejects at bind time.
	b, err := msgbus.New(msgbus.Manifest{Receivers: ReceiverTypes})
	require.NoError(t, err)

	_, err = SenderOf[Ping](b)
	assert.ErrorIs(t, err, msgbus.ErrNotDeclared)
}
