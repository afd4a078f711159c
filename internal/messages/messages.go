// Package messages declares the message types this program's bus carries.
//
// To add a message type, define it here and append it to the sub-list for
// the capability it needs. Sub-lists are concatenated into SenderTypes and
// ReceiverTypes; a type listed twice fails at start-up.
package messages

import "github.com/OCAP2/msgbus/pkg/msgbus"

// Ping is sent by the pinger and heard by anyone on the bus.
type Ping struct {
	ID int `json:"id"`
}

// Pong can be listened for but is not on the sender list.
type Pong struct {
	ID int `json:"id"`
}

var (
	coreSenders = msgbus.MustTypes(
		msgbus.Type[Ping](),
	)

	coreReceivers = msgbus.MustTypes(
		msgbus.Type[Ping](),
	)

	replyReceivers = msgbus.MustTypes(
		msgbus.Type[Pong](),
	)
)

// SenderTypes and ReceiverTypes are the declared lists.
var (
	SenderTypes   = coreSenders
	ReceiverTypes = mustConcat(coreReceivers, replyReceivers)
)

// Manifest is the bus kind used by cmd/msgbus.
func Manifest() msgbus.Manifest {
	return msgbus.Manifest{
		Senders:   SenderTypes,
		Receivers: ReceiverTypes,
	}
}

func mustConcat(lists ...msgbus.TypeList) msgbus.TypeList {
	var out msgbus.TypeList
	for _, l := range lists {
		var err error
		out, err = out.Concat(l)
		if err != nil {
			panic(err)
		}
	}
	return out
}
