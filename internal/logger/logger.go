package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config describes a Logger: minimum level, line format and the sinks every
// event is written to.
type Config struct {
	MinLevel  string   // debug, info, warn, error
	Format    string   // json or text
	Sinks     []string // console, stderr, file, remote
	FilePath  string   // used by the file sink
	RemoteURI string   // Loki push endpoint used by the remote sink
	Job       string   // Loki stream label

	// Writers are extra sinks supplied by the caller.
	Writers []io.Writer
}

func DefaultConfig() Config {
	return Config{
		MinLevel: "info",
		Format:   FormatJSON,
		Sinks:    []string{SinkConsole},
		Job:      "simple-shop",
	}
}

// Logger writes structured events to its sinks. Write failures are never
// reported back to callers.
type Logger struct {
	handler slog.Handler
	slog    *slog.Logger
	remote  *remoteSink
	closers []io.Closer
}

func New(cfg Config) (*Logger, error) {
	level, err := ParseLevel(cfg.MinLevel)
	if err != nil {
		return nil, err
	}

	sinks := cfg.Sinks
	if len(sinks) == 0 && len(cfg.Writers) == 0 {
		sinks = []string{SinkConsole}
	}

	l := &Logger{}
	writers := append([]io.Writer{}, cfg.Writers...)
	for _, name := range sinks {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == SinkRemote {
			if cfg.RemoteURI == "" {
				return nil, errors.New("remote sink requires a remote URI")
			}
			l.remote = newRemoteSink(cfg.RemoteURI, cfg.Job)
			continue
		}
		w, closer, err := openSink(name, cfg)
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
		if closer != nil {
			l.closers = append(l.closers, closer)
		}
	}

	var out io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		out = writers[0]
	default:
		out = io.MultiWriter(writers...)
	}

	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	}
	switch strings.ToLower(cfg.Format) {
	case "", FormatJSON:
		l.handler = slog.NewJSONHandler(out, opts)
	case FormatText:
		l.handler = slog.NewTextHandler(out, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	l.slog = slog.New(l.handler)

	return l, nil
}

// Slog exposes the underlying *slog.Logger for libraries that want one.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

func (l *Logger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.handler.Enabled(ctx, level)
}

func (l *Logger) Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelDebug, msg, attrs)
}

func (l *Logger) Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelInfo, msg, attrs)
}

func (l *Logger) Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelWarn, msg, attrs)
}

func (l *Logger) Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelError, msg, attrs)
}

// Close waits for in-flight remote deliveries and closes file sinks.
func (l *Logger) Close() error {
	if l.remote != nil {
		l.remote.wait()
	}
	var errs []error
	for _, c := range l.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func (l *Logger) log(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.handler.Enabled(ctx, level) {
		return
	}
	enriched := enrich(ctx, attrs...)
	l.slog.LogAttrs(ctx, level, msg, enriched...)
	if l.remote != nil {
		l.remote.send(levelName(level), msg, enriched)
	}
}

func enrich(ctx context.Context, attrs ...slog.Attr) []slog.Attr {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", span.SpanContext().TraceID().String()),
			slog.String("span_id", span.SpanContext().SpanID().String()),
			slog.String("hostname", Hostname()),
		)
	}

	return attrs
}

// replaceAttr renames the built-in keys to timestamp/level/message and
// lowercases the level.
func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		a.Key = "timestamp"
	case slog.MessageKey:
		a.Key = "message"
	case slog.LevelKey:
		if lvl, ok := a.Value.Any().(slog.Level); ok {
			return slog.String(slog.LevelKey, levelName(lvl))
		}
	}
	return a
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func levelName(level slog.Level) string {
	return strings.ToLower(level.String())
}
