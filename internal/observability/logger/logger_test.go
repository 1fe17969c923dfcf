package logger

import (
	"context"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

// recordingHandler captures every record it receives.
type recordingHandler struct {
	records []slog.Record
}

func (h *recordingHandler) Enabled(ctx context.Context, level slog.Level) bool { return true }

func (h *recordingHandler) Handle(ctx context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(name string) slog.Handler       { return h }

// TestPurpose: Log level names map to slog levels with info as the fallback.
//
// Scope: Unit test of level parsing.
// Expected: Known names parse case-insensitively; unknown input defaults to info.
//
// Test Case ID: OBS-01
func TestLogger_ParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

// TestPurpose: The tee handler forwards each record to every destination.
//
// Scope: Unit test of log fan-out.
// Expected: Both destinations receive the record; the source record is cloned per destination.
//
// Test Case ID: OBS-02
func TestLogger_TeeForwardsToAllDestinations(t *testing.T) {
	a := &recordingHandler{}
	b := &recordingHandler{}
	log := slog.New(tee(a, b))

	log.Info("tenant seeded", slog.String("tenant_id", "tenant-1"))

	if len(a.records) != 1 {
		t.Fatalf("first destination got %d records, want 1", len(a.records))
	}
	if len(b.records) != 1 {
		t.Fatalf("second destination got %d records, want 1", len(b.records))
	}
	if a.records[0].Message != "tenant seeded" {
		t.Errorf("unexpected message %q", a.records[0].Message)
	}
}

// TestPurpose: Records emitted inside an active span carry its trace and span IDs.
//
// Scope: Unit test of trace correlation attributes.
// Expected: trace_id and span_id attributes match the span context; records
// without a span carry neither attribute.
//
// Test Case ID: OBS-03
func TestLogger_SpanContextStamping(t *testing.T) {
	rec := &recordingHandler{}
	log := slog.New(withSpanContext(rec))

	traceID := trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10}
	spanID := trace.SpanID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	log.InfoContext(ctx, "inside span")
	log.Info("outside span")

	if len(rec.records) != 2 {
		t.Fatalf("got %d records, want 2", len(rec.records))
	}

	attrs := map[string]string{}
	rec.records[0].Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.String()
		return true
	})
	if attrs["trace_id"] != traceID.String() {
		t.Errorf("trace_id = %q, want %q", attrs["trace_id"], traceID.String())
	}
	if attrs["span_id"] != spanID.String() {
		t.Errorf("span_id = %q, want %q", attrs["span_id"], spanID.String())
	}

	rec.records[1].Attrs(func(a slog.Attr) bool {
		if a.Key == "trace_id" || a.Key == "span_id" {
			t.Errorf("record without span carries %s", a.Key)
		}
		return true
	})
}
