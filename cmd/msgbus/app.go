package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/OCAP2/msgbus/internal/config"
	"github.com/OCAP2/msgbus/internal/logging"
	intOtel "github.com/OCAP2/msgbus/internal/otel"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// session holds what setup built for the current command.
type session struct {
	sessionStart time.Time
	slogManager  *logging.SlogManager
	logger       *slog.Logger
	logOut       io.Writer
	logFile      io.Writer
	graylog      io.Writer
	otel         *intOtel.Provider
	closers      []io.Closer
}

var app *session

func setup(ctx context.Context) error {
	rt := &session{
		sessionStart: time.Now(),
		slogManager:  logging.NewSlogManager(),
		logOut:       os.Stdout,
		otel:         &intOtel.Provider{},
	}
	app = rt

	cfgErr := config.Load(configDir)
	if cfgErr != nil && !config.IsNotFound(cfgErr) {
		return cfgErr
	}
	if logLevel != "" {
		config.Set("logLevel", logLevel)
	}
	if metricsAddr != "" {
		config.Set("metrics.address", metricsAddr)
	}

	if config.GetBool("logToFile") {
		path := logging.LogFilePath(config.GetString("logsDir"), "msgbus", rt.sessionStart)
		f, err := logging.OpenLogFile(path)
		if err != nil {
			return err
		}
		rt.closers = append(rt.closers, f)
		rt.logFile = f
		rt.logOut = f
	}

	rt.configureLogging(nil)
	if cfgErr != nil {
		rt.logger.Warn("Config file not found, using defaults", "dir", configDir)
	} else {
		rt.logger.Debug("Loaded config", "dir", configDir)
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		p, err := intOtel.New(intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    rt.logFile,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		})
		if err != nil {
			rt.logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			rt.otel = p
			p.InstallGlobal()
			rt.logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
		}
	}

	gl := config.GetGraylogConfig()
	if gl.Enabled {
		w, err := logging.NewGraylogWriter(gl.Address, gl.Facility)
		if err != nil {
			rt.logger.Error("Failed to connect to Graylog", "error", err)
		} else {
			rt.closers = append(rt.closers, w)
			rt.graylog = w
		}
	}

	// Re-setup with every sink that came up.
	rt.configureLogging(nil)
	return nil
}

// configureLogging (re)builds the application logger from the sinks in rt.
func (rt *session) configureLogging(ctxProvider logging.ContextProvider) {
	var provider *sdklog.LoggerProvider
	if rt.otel != nil {
		provider = rt.otel.LoggerProvider()
	}
	rt.slogManager.Setup(logging.Options{
		Level:    config.GetString("logLevel"),
		File:     rt.logFile,
		Graylog:  rt.graylog,
		Provider: provider,
		Context:  ctxProvider,
		Service:  config.GetOTelConfig().ServiceName,
	})
	rt.logger = rt.slogManager.Logger()
}

func teardown(ctx context.Context) error {
	if app == nil {
		return nil
	}
	rt := app
	app = nil

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	var errs []error
	if err := rt.slogManager.Flush(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("flushing logs: %w", err))
	}
	if err := rt.otel.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
