package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/OCAP2/msgbus/pkg/msgbus"
	"github.com/rs/zerolog"
)

var _ msgbus.Logger = (*BusLogger)(nil)

// BusLogger adapts zerolog.Logger to the msgbus.Logger interface.
type BusLogger struct {
	logger zerolog.Logger
}

// NewBusLogger wraps an existing zerolog.Logger.
func NewBusLogger(logger zerolog.Logger) *BusLogger {
	return &BusLogger{logger: logger}
}

// NewConsoleBusLogger writes human-readable lines to w at the given level.
// Unknown levels fall back to info.
func NewConsoleBusLogger(w io.Writer, level string) *BusLogger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	return &BusLogger{logger: zerolog.New(out).Level(lvl).With().Timestamp().Logger()}
}

// With returns a logger that adds the given pairs to every entry.
func (l *BusLogger) With(keysAndValues ...any) *BusLogger {
	return &BusLogger{logger: l.logger.With().Fields(toFields(keysAndValues)).Logger()}
}

func (l *BusLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(toFields(keysAndValues)).Msg(msg)
}

func (l *BusLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info().Fields(toFields(keysAndValues)).Msg(msg)
}

func (l *BusLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Error().Fields(toFields(keysAndValues)).Msg(msg)
}

// toFields pairs up keys and values. Non-string keys are formatted with
// fmt; a trailing value without a key is kept under "!BADKEY", as slog does.
func toFields(keysAndValues []any) map[string]any {
	fields := make(map[string]any, (len(keysAndValues)+1)/2)
	i := 0
	for ; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		fields[key] = keysAndValues[i+1]
	}
	if i < len(keysAndValues) {
		fields["!BADKEY"] = keysAndValues[i]
	}
	return fields
}
