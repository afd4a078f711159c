package main

import (
	"github.com/OCAP2/msgbus/internal/config"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

var (
	configDir   string
	logLevel    string
	metricsAddr string
)

var rootCmd = &cobra.Command{
	Use:          "msgbus",
	Short:        "Type-safe in-process message bus",
	Long:         "msgbus inspects the declared message type lists and runs a demo workload on the bus.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown(cmd.Context())
	},
}

func init() {
	rootCmd.Version = Version

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configDir, "config-dir", ".", "directory containing "+config.FileName)
	pf.StringVar(&logLevel, "log-level", "", "override logLevel from the config file")
	pf.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
}
