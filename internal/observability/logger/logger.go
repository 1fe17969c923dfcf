package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/trace"
)

// Config holds logger configuration
type Config struct {
	Level       string // debug, info, warn, error
	Format      string // json (default) or text
	ServiceName string
	OTELEnabled bool
}

// Init installs the process-wide slog logger. Records go to stdout in
// the configured format, stamped with the active trace and span IDs so
// log lines correlate with exported traces. With OTEL export enabled,
// records are additionally fed through the otelslog bridge.
func Init(cfg Config) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().UTC().Format(time.RFC3339))
			}
			return a
		},
	}

	var stdout slog.Handler
	if cfg.Format == "text" {
		stdout = slog.NewTextHandler(os.Stdout, opts)
	} else {
		stdout = slog.NewJSONHandler(os.Stdout, opts)
	}

	handler := withSpanContext(stdout)
	if cfg.OTELEnabled {
		handler = tee(handler, otelslog.NewHandler(cfg.ServiceName))
	}

	slog.SetDefault(slog.New(handler))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// spanContextHandler stamps each record with the IDs of the span found
// in the log call's context, if any.
type spanContextHandler struct {
	slog.Handler
}

func withSpanContext(h slog.Handler) slog.Handler {
	return &spanContextHandler{Handler: h}
}

func (h *spanContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *spanContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &spanContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *spanContextHandler) WithGroup(name string) slog.Handler {
	return &spanContextHandler{Handler: h.Handler.WithGroup(name)}
}

// teeHandler forwards records to every destination on a best-effort
// basis; one failing destination never blocks the others.
type teeHandler struct {
	destinations []slog.Handler
}

func tee(destinations ...slog.Handler) slog.Handler {
	return &teeHandler{destinations: destinations}
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, d := range h.destinations {
		if d.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, d := range h.destinations {
		if d.Enabled(ctx, r.Level) {
			_ = d.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(h.destinations))
	for i, d := range h.destinations {
		out[i] = d.WithAttrs(attrs)
	}
	return tee(out...)
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(h.destinations))
	for i, d := range h.destinations {
		out[i] = d.WithGroup(name)
	}
	return tee(out...)
}
