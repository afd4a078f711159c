package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/OCAP2/msgbus/internal/otel"
	"github.com/OCAP2/msgbus/pkg/msgbus"
)

// ErrAlreadyRunning is returned by Run when the monitor is already running.
var ErrAlreadyRunning = errors.New("status monitor already running")

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Bus      *msgbus.Bus
	Logger   *slog.Logger
	Interval time.Duration
	// OTel is optional; when enabled its metric totals are added to reports.
	OTel *otel.Provider
	// StatusFile is optional; each report is written there as JSON.
	StatusFile string
}

// Report is one status snapshot.
type Report struct {
	Time    time.Time        `json:"time"`
	Bus     msgbus.Stats     `json:"bus"`
	Metrics map[string]int64 `json:"metrics,omitempty"`
}

// Service periodically reports bus status.
type Service struct {
	deps Dependencies

	mu        sync.RWMutex
	isRunning bool
	last      Report
}

func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Interval <= 0 {
		deps.Interval = 10 * time.Second
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Last returns the most recent report produced by Run.
func (s *Service) Last() Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Report builds a snapshot without logging it.
func (s *Service) Report(ctx context.Context) Report {
	r := Report{Time: time.Now().UTC(), Bus: s.deps.Bus.Stats()}
	if s.deps.OTel != nil && s.deps.OTel.Enabled() {
		rm, err := s.deps.OTel.Collect(ctx)
		if err != nil {
			s.deps.Logger.Error("Error collecting metrics", "error", err)
		} else {
			r.Metrics = otel.Int64Totals(rm)
		}
	}
	return r
}

// LogAttrs is a logging.ContextProvider: it tags records with the bus id
// and whether the monitor is running.
func (s *Service) LogAttrs(context.Context) []slog.Attr {
	return []slog.Attr{
		slog.String("bus", s.deps.Bus.ID()),
		slog.Bool("monitor", s.IsRunning()),
	}
}

// Run reports every Interval until ctx is done. It reports once more on exit.
func (s *Service) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.isRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
	}()

	logger := s.deps.Logger
	logger.Debug("Starting status monitor", "interval", s.deps.Interval)

	ticker := time.NewTicker(s.deps.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.tick(context.WithoutCancel(ctx))
			logger.Debug("Status monitor stopped")
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Service) tick(ctx context.Context) {
	r := s.Report(ctx)

	s.mu.Lock()
	s.last = r
	s.mu.Unlock()

	for _, ts := range r.Bus.Types {
		s.deps.Logger.Info("bus status",
			"type", ts.Type,
			"listeners", ts.Listeners,
			"sent", ts.Sent,
			"delivered", ts.Delivered,
			"failed", ts.Failed,
		)
	}

	if s.deps.StatusFile != "" {
		if err := writeStatus(s.deps.StatusFile, r); err != nil {
			s.deps.Logger.Error("Error writing status file", "error", err)
		}
	}
}

func writeStatus(path string, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding status: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing status: %w", err)
	}
	return nil
}
