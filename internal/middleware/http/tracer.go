package middleware_http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"simple-shop/internal/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

const tracerName = "HttpMiddleware"

// ResponseWriter captures status, size and, when capture is on, the body.
type ResponseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int64
	capture    bool
	buf        bytes.Buffer
}

func (rw *ResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *ResponseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += int64(n)

	if rw.capture && rw.buf.Len() < logger.MaxBodyLogged {
		toCopy := logger.MaxBodyLogged - rw.buf.Len()
		if n < toCopy {
			toCopy = n
		}
		rw.buf.Write(b[:toCopy])
	}
	return n, err
}

// Flush sends buffered output to the client.
func (rw *ResponseWriter) Flush() {
	_ = http.NewResponseController(rw.ResponseWriter).Flush()
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *ResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// TraceMiddleware starts one span per request, continuing any incoming
// trace context, and exposes the trace id in X-Trace-ID. Request and
// response access logs are written at debug level.
func TraceMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			ctx, span := otel.Tracer(tracerName).Start(ctx, r.Method+" "+r.URL.Path)
			defer func() {
				if rec := recover(); rec != nil {
					span.RecordError(errFromRecover(rec))
					span.SetStatus(codes.Error, "panic occurred")
					span.End()
					panic(rec)
				}
				span.End()
			}()
			span.SetAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", r.URL.Path),
			)
			if id := RequestIDFromContext(ctx); id != "" {
				span.SetAttributes(attribute.String("http.request_id", id))
			}

			debug := log.Enabled(ctx, slog.LevelDebug)
			if debug {
				body, _ := logger.CaptureBody(r)
				log.Debug(ctx, "HTTP", logger.RequestAttrs(r, body, "incoming::request")...)
			}

			rw := &ResponseWriter{ResponseWriter: w, statusCode: http.StatusOK, capture: debug}
			start := time.Now()

			rw.Header().Set("X-Trace-ID", span.SpanContext().TraceID().String())

			next.ServeHTTP(rw, r.WithContext(ctx))

			span.SetAttributes(attribute.Int("http.status_code", rw.statusCode))
			switch {
			case rw.statusCode >= 500:
				span.SetStatus(codes.Error, "internal server error")
			case rw.statusCode >= 400:
				span.SetStatus(codes.Error, "client error")
			default:
				span.SetStatus(codes.Ok, "")
			}

			if debug {
				log.Debug(ctx, "HTTP", logger.ResponseAttrs(r, rw.Header(), rw.statusCode, rw.size, rw.buf.Bytes(), time.Since(start), "incoming::response")...)
			}
		})
	}
}

// errFromRecover converts a panic value into an error for span recording.
func errFromRecover(rec any) error {
	if err, ok := rec.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", rec)
}
