package main

import (
	"encoding/json"
	"fmt"

	"github.com/OCAP2/msgbus/internal/messages"
	"github.com/OCAP2/msgbus/pkg/msgbus"
	"github.com/spf13/cobra"
)

var manifestJSON bool

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Print and validate the declared message type lists",
	Args:  cobra.NoArgs,
	RunE:  runManifest,
}

func init() {
	manifestCmd.Flags().BoolVar(&manifestJSON, "json", false, "print the lists as JSON")
	rootCmd.AddCommand(manifestCmd)
}

// components lists what each part of the demo sends and listens for.
// New rejects the manifest if it does not cover them.
func components() []msgbus.Option {
	none := msgbus.TypeList{}
	return []msgbus.Option{
		msgbus.Requires("pinger", msgbus.MustTypes(msgbus.Type[messages.Ping]()), none),
		msgbus.Requires("trace", none, msgbus.MustTypes(msgbus.Type[messages.Ping]())),
		msgbus.Requires("pong-audit", none, msgbus.MustTypes(msgbus.Type[messages.Pong]())),
	}
}

func runManifest(cmd *cobra.Command, args []string) error {
	m := messages.Manifest()
	opts := append(components(), msgbus.WithLogger(app.logger))
	if _, err := msgbus.New(m, opts...); err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}

	out := cmd.OutOrStdout()
	if manifestJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string][]string{
			"senderTypes":   m.Senders.Names(),
			"receiverTypes": m.Receivers.Names(),
		})
	}

	fmt.Fprintf(out, "%s: %s\n", msgbus.SenderSet, m.Senders)
	fmt.Fprintf(out, "%s: %s\n", msgbus.ReceiverSet, m.Receivers)
	return nil
}
