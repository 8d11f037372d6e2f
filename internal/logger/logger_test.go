package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func newBufferLogger(t *testing.T, cfg Config) (*Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	cfg.Sinks = nil
	cfg.Writers = []io.Writer{buf}
	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l, buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid json line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestJSONEventShape(t *testing.T) {
	l, buf := newBufferLogger(t, DefaultConfig())

	l.Info(context.Background(), "Fetched products", slog.Int("count", 3))

	lines := decodeLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	ev := lines[0]
	if ev["level"] != "info" {
		t.Fatalf("level = %v", ev["level"])
	}
	if ev["message"] != "Fetched products" {
		t.Fatalf("message = %v", ev["message"])
	}
	if ev["count"] != float64(3) {
		t.Fatalf("count = %v", ev["count"])
	}
	if _, ok := ev["timestamp"].(string); !ok {
		t.Fatalf("missing timestamp: %v", ev)
	}
	if _, ok := ev["msg"]; ok {
		t.Fatalf("msg key should be renamed: %v", ev)
	}
}

func TestRawJSONMetadataIsVerbatim(t *testing.T) {
	l, buf := newBufferLogger(t, DefaultConfig())

	l.Info(context.Background(), "Added to cart", slog.Any("body", json.RawMessage(`{"productId":1,"qty":2}`)))

	if !strings.Contains(buf.String(), `"body":{"productId":1,"qty":2}`) {
		t.Fatalf("body not embedded verbatim: %s", buf.String())
	}
}

func TestMinLevelFilters(t *testing.T) {
	l, buf := newBufferLogger(t, DefaultConfig())

	l.Debug(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug event written at info level: %s", buf.String())
	}
	if l.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug should be disabled")
	}

	cfg := DefaultConfig()
	cfg.MinLevel = "error"
	l, buf = newBufferLogger(t, cfg)
	l.Warn(context.Background(), "hidden")
	l.Error(context.Background(), "shown")
	lines := decodeLines(t, buf)
	if len(lines) != 1 || lines[0]["level"] != "error" {
		t.Fatalf("unexpected lines: %v", lines)
	}
}

func TestTraceEnrichment(t *testing.T) {
	l, buf := newBufferLogger(t, DefaultConfig())
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	l.Info(ctx, "with span")
	span.End()

	ev := decodeLines(t, buf)[0]
	if ev["trace_id"] != span.SpanContext().TraceID().String() {
		t.Fatalf("trace_id = %v", ev["trace_id"])
	}
	if ev["span_id"] != span.SpanContext().SpanID().String() {
		t.Fatalf("span_id = %v", ev["span_id"])
	}
	if ev["hostname"] != Hostname() {
		t.Fatalf("hostname = %v", ev["hostname"])
	}
}

func TestTextFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format = FormatText
	l, buf := newBufferLogger(t, cfg)

	l.Info(context.Background(), "hello", slog.Int("count", 3))

	out := buf.String()
	if !strings.Contains(out, "level=info") || !strings.Contains(out, "message=hello") || !strings.Contains(out, "count=3") {
		t.Fatalf("unexpected text line: %s", out)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cases := map[string]Config{
		"level":  {MinLevel: "loud"},
		"format": {Format: "xml"},
		"sink":   {Sinks: []string{"kafka"}},
		"file":   {Sinks: []string{SinkFile}},
		"remote": {Sinks: []string{SinkRemote}},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := New(cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.log")
	cfg := DefaultConfig()
	cfg.Sinks = []string{SinkFile}
	cfg.FilePath = path

	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info(context.Background(), "to file")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"message":"to file"`) {
		t.Fatalf("unexpected file content: %s", data)
	}
}

func TestRemoteSink(t *testing.T) {
	var (
		mu     sync.Mutex
		pushes []lokiPush
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p lokiPush
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decode push: %v", err)
		}
		mu.Lock()
		pushes = append(pushes, p)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Sinks = []string{SinkRemote}
	cfg.RemoteURI = srv.URL
	cfg.Job = "shop-test"
	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.Info(context.Background(), "Fetched products", slog.Int("count", 3))
	l.Debug(context.Background(), "filtered")
	_ = l.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(pushes) != 1 {
		t.Fatalf("expected 1 push, got %d", len(pushes))
	}
	stream := pushes[0].Streams[0]
	if stream.Stream["job"] != "shop-test" || stream.Stream["level"] != "info" {
		t.Fatalf("unexpected labels: %v", stream.Stream)
	}
	var line map[string]any
	if err := json.Unmarshal([]byte(stream.Values[0][1]), &line); err != nil {
		t.Fatalf("line is not json: %v", err)
	}
	if line["message"] != "Fetched products" || line["count"] != float64(3) {
		t.Fatalf("unexpected line: %v", line)
	}
}

func TestRemoteSinkFailureIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Sinks = []string{SinkRemote}
	cfg.RemoteURI = srv.URL
	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	errOut := &bytes.Buffer{}
	l.remote.errOut = errOut

	l.Info(context.Background(), "lost")
	_ = l.Close()

	if !strings.Contains(errOut.String(), "500") {
		t.Fatalf("expected status report on error stream, got %q", errOut.String())
	}
}
