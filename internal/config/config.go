package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/OCAP2/msgbus/pkg/msgbus"
	"github.com/spf13/viper"
)

// FileName is looked up in the config directory passed to Load.
const FileName = "msgbus.cfg.json"

// BusConfig holds message bus settings.
type BusConfig struct {
	FailurePolicy   string        `json:"failurePolicy" mapstructure:"failurePolicy"`
	LogDeliveries   bool          `json:"logDeliveries" mapstructure:"logDeliveries"`
	MonitorInterval time.Duration `json:"monitorInterval" mapstructure:"monitorInterval"`
	TapBuffer       int           `json:"tapBuffer" mapstructure:"tapBuffer"`
	// StatusFile receives the latest monitor report as JSON. Empty disables it.
	StatusFile string `json:"statusFile" mapstructure:"statusFile"`
}

// Policy parses FailurePolicy.
func (c BusConfig) Policy() (msgbus.FailurePolicy, error) {
	return msgbus.ParseFailurePolicy(c.FailurePolicy)
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// GraylogConfig holds the GELF sink settings.
type GraylogConfig struct {
	Enabled  bool
	Address  string
	Facility string
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")
	viper.SetDefault("logToFile", false)

	viper.SetDefault("bus.failurePolicy", "propagate")
	viper.SetDefault("bus.logDeliveries", false)
	viper.SetDefault("bus.monitorInterval", "10s")
	viper.SetDefault("bus.tapBuffer", 64)
	viper.SetDefault("bus.statusFile", "")

	viper.SetDefault("metrics.address", "")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")
	viper.SetDefault("graylog.facility", "msgbus")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "msgbus")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// Load sets defaults and reads FileName from configDir.
// Defaults stay in effect when the file is missing; the error then
// satisfies IsNotFound.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// IsNotFound reports whether err came from a missing config file.
func IsNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf)
}

// GetBusConfig returns the bus section.
func GetBusConfig() BusConfig {
	return BusConfig{
		FailurePolicy:   viper.GetString("bus.failurePolicy"),
		LogDeliveries:   viper.GetBool("bus.logDeliveries"),
		MonitorInterval: viper.GetDuration("bus.monitorInterval"),
		TapBuffer:       viper.GetInt("bus.tapBuffer"),
		StatusFile:      viper.GetString("bus.statusFile"),
	}
}

// GetOTelConfig returns the otel section.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetGraylogConfig returns the graylog section.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled:  viper.GetBool("graylog.enabled"),
		Address:  viper.GetString("graylog.address"),
		Facility: viper.GetString("graylog.facility"),
	}
}

// Set overrides a value, e.g. from a command-line flag.
func Set(key string, value any) {
	viper.Set(key, value)
}

func GetString(key string) string {
	return viper.GetString(key)
}

func GetInt(key string) int {
	return viper.GetInt(key)
}

func GetBool(key string) bool {
	return viper.GetBool(key)
}
