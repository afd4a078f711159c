package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/OCAP2/msgbus/internal/channel"
	"github.com/OCAP2/msgbus/internal/config"
	"github.com/OCAP2/msgbus/internal/logging"
	"github.com/OCAP2/msgbus/internal/messages"
	"github.com/OCAP2/msgbus/internal/metrics"
	"github.com/OCAP2/msgbus/internal/monitor"
	"github.com/OCAP2/msgbus/internal/trace"
	"github.com/OCAP2/msgbus/pkg/msgbus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	demoCount         int
	demoInterval      time.Duration
	demoInjectFailure bool
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Send pings through the bus and print what the listeners saw",
	Args:  cobra.NoArgs,
	RunE:  runDemo,
}

func init() {
	f := demoCmd.Flags()
	f.IntVar(&demoCount, "count", 10, "pings to send after the fixed scenarios")
	f.DurationVar(&demoInterval, "interval", 100*time.Millisecond, "delay between pings")
	f.BoolVar(&demoInjectFailure, "inject-failure", false, "add a listener that panics on every third ping (needs failurePolicy isolate)")
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	busCfg := config.GetBusConfig()
	policy, err := busCfg.Policy()
	if err != nil {
		return err
	}
	if demoInjectFailure && policy != msgbus.Isolate {
		return fmt.Errorf("--inject-failure needs failurePolicy %q, have %q", msgbus.Isolate, policy)
	}

	busLogger := logging.NewConsoleBusLogger(app.logOut, config.GetString("logLevel")).With("component", "bus")
	opts := append(components(),
		msgbus.WithLogger(busLogger),
		msgbus.WithFailurePolicy(policy),
		msgbus.WithMeterProvider(app.otel.MeterProvider()),
		msgbus.WithFailureHandler(func(e *msgbus.ListenerError) {
			app.logger.Warn("listener failed", "listener", e.Listener, "type", e.Type, "error", e.Error())
		}),
	)
	b, err := msgbus.New(messages.Manifest(), opts...)
	if err != nil {
		return err
	}

	listenOpts := func(name string) []msgbus.ListenOption {
		o := []msgbus.ListenOption{msgbus.Named(name)}
		if busCfg.LogDeliveries {
			o = append(o, msgbus.Logged())
		}
		return o
	}

	rec := trace.New[messages.Ping]()
	if err := rec.Attach(b, listenOpts("trace")...); err != nil {
		return err
	}
	var tl trace.Timeline
	for _, name := range []string{"logA", "logB"} {
		if err := trace.Observe[messages.Ping](&tl, b, name); err != nil {
			return err
		}
	}
	if err := messages.Listen(b, func(ts float64, p messages.Pong) {
		app.logger.Info("pong", "id", p.ID, "timestamp", ts)
	}, listenOpts("pong-audit")...); err != nil {
		return err
	}
	if demoInjectFailure {
		if err := messages.Listen(b, func(_ float64, p messages.Ping) {
			if p.ID%3 == 0 {
				panic(fmt.Sprintf("ping %d rejected", p.ID))
			}
		}, listenOpts("flaky")...); err != nil {
			return err
		}
	}

	// messages.SenderOf[messages.Pong] does not compile; the untyped library
	// call shows the bus turning it away while components are wired.
	_, err = msgbus.SenderOf[messages.Pong](b)
	fmt.Fprintf(out, "bind Sender[messages.Pong] -> %v\n", err)

	ping, err := messages.SenderOf[messages.Ping](b)
	if err != nil {
		return err
	}
	ts := ping.SendImpl(messages.Ping{ID: 1}, 0)
	fmt.Fprintf(out, "send Ping{ID:1} -> timestamp %g\n", ts)
	fmt.Fprintf(out, "trace: %v\n", rec.Entries())
	fmt.Fprintf(out, "order: %s\n", strings.Join(listenerOrder(tl.Events()), ", "))

	consumed, report, err := runWorkload(ctx, b, busCfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "tap consumer received %d of %d pings\n", consumed, demoCount)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func listenerOrder(events []trace.Event) []string {
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.Listener
	}
	return names
}

// runWorkload sends demoCount pings while a tap consumer, the status monitor
// and the optional metrics endpoint run alongside. The returned report is the
// one the monitor wrote on exit.
func runWorkload(ctx context.Context, b *msgbus.Bus, busCfg config.BusConfig) (int64, monitor.Report, error) {
	tap, err := channel.Tap[messages.Ping](b, "demo-consumer", busCfg.TapBuffer)
	if err != nil {
		return 0, monitor.Report{}, err
	}

	// Rebuild logging with the monitor attributes first so the monitor's own
	// logger carries them too.
	var mon *monitor.Service
	app.configureLogging(func(ctx context.Context) []slog.Attr {
		if mon == nil {
			return nil
		}
		return mon.LogAttrs(ctx)
	})
	mon = monitor.NewService(monitor.Dependencies{
		Bus:        b,
		Logger:     app.slogManager.Component("monitor"),
		Interval:   busCfg.MonitorInterval,
		OTel:       app.otel,
		StatusFile: busCfg.StatusFile,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		return mon.Run(gctx)
	})

	var consumed atomic.Int64
	g.Go(func() error {
		for range tap.Receive() {
			consumed.Add(1)
		}
		return nil
	})

	if addr := config.GetString("metrics.address"); addr != "" {
		g.Go(func() error {
			return serveMetrics(gctx, addr, b)
		})
	}

	g.Go(func() error {
		defer cancel()
		defer tap.Close()
		for i := 0; i < demoCount; i++ {
			select {
			case <-gctx.Done():
				return nil
			case <-time.After(demoInterval):
			}
			if _, err := messages.Send(b, messages.Ping{ID: i + 2}); err != nil {
				return err
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return consumed.Load(), mon.Last(), err
	}
	return consumed.Load(), mon.Last(), nil
}

func serveMetrics(ctx context.Context, addr string, b *msgbus.Bus) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(metrics.NewBusCollector(b)); err != nil {
		return fmt.Errorf("registering bus collector: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(
		prometheus.Gatherers{prometheus.DefaultGatherer, reg},
		promhttp.HandlerOpts{},
	))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	app.logger.Info("Serving metrics", "address", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	}
}
