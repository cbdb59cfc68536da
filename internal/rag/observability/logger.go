package observability

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the structured-logging contract used throughout this module,
// satisfied by a zerolog.Logger wrapper rather than a package-level global —
// intelligencedev-manifold reaches for zerolog's global log.Logger (e.g.
// internal/skills/loader.go), but an injected collaborator keeps this
// module's components testable without a shared process-wide sink.
type Logger interface {
	Info(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
	Debug(msg string, fields map[string]any)
}

// Metrics is the counters/histograms contract the service layer emits
// ingestion and retrieval stage timings through (§7).
type Metrics interface {
	IncCounter(name string, labels map[string]string)
	ObserveHistogram(name string, value float64, labels map[string]string)
}

// NoopMetrics discards every observation; the default when no collector is
// configured.
type NoopMetrics struct{}

func (NoopMetrics) IncCounter(string, map[string]string)                {}
func (NoopMetrics) ObserveHistogram(string, float64, map[string]string) {}

// ZerologLogger adapts zerolog.Logger to the Logger interface.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger builds a JSON-console logger writing to w at the given
// level (e.g. "debug", "info", "error"); an unrecognized level falls back to
// info.
func NewZerologLogger(w io.Writer, level string) *ZerologLogger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return &ZerologLogger{logger: zerolog.New(w).Level(lvl).With().Timestamp().Logger()}
}

func (z *ZerologLogger) event(e *zerolog.Event, msg string, fields map[string]any) {
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	e.Msg(msg)
}

func (z *ZerologLogger) Info(msg string, fields map[string]any)  { z.event(z.logger.Info(), msg, fields) }
func (z *ZerologLogger) Error(msg string, fields map[string]any) { z.event(z.logger.Error(), msg, fields) }
func (z *ZerologLogger) Debug(msg string, fields map[string]any) { z.event(z.logger.Debug(), msg, fields) }
