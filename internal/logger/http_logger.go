package logger

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"
)

// MaxBodyLogged limits how much of a body the access log keeps. 1 << 14 = 16 KiB.
const MaxBodyLogged = 1 << 14

var allowedHeaders = map[string]bool{
	"content-type":   true,
	"content-length": true,
	"user-agent":     true,
	"x-request-id":   true,
	"x-trace-id":     true,
	"traceparent":    true,
	"authorization":  true,
	"cookie":         true,
	"set-cookie":     true,
}

// CaptureBody reads r.Body up to MaxBodyLogged bytes and puts an identical
// stream back for the next handler.
func CaptureBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	head, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyLogged))
	if err != nil {
		return nil, err
	}
	r.Body = readCloser{
		Reader: io.MultiReader(bytes.NewReader(head), r.Body),
		Closer: r.Body,
	}
	return head, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

func HeaderAttrs(hdr http.Header) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(hdr))
	for name, values := range hdr {
		lower := strings.ToLower(name)
		if !allowedHeaders[lower] {
			continue
		}
		joined := strings.Join(values, ", ")
		if lower == "authorization" || strings.HasSuffix(lower, "cookie") {
			joined = "***"
		}
		attrs = append(attrs, slog.String("http.header."+lower, joined))
	}
	return attrs
}

// BodyAttr renders a captured body: JSON verbatim, anything else as a
// truncated string.
func BodyAttr(contentType string, body []byte) (slog.Attr, bool) {
	if len(body) == 0 {
		return slog.Attr{}, false
	}
	ct, _, _ := mime.ParseMediaType(contentType)
	if (ct == "application/json" || strings.HasSuffix(ct, "+json")) && json.Valid(body) {
		return slog.Any("http.body", json.RawMessage(body)), true
	}
	return slog.String("http.body", string(body)), true
}

// RequestAttrs describes an inbound request for the access log.
func RequestAttrs(r *http.Request, body []byte, direction string) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("http.direction", direction),
		slog.String("http.remote_addr", r.RemoteAddr),
		slog.String("http.method", r.Method),
		slog.String("http.path", r.URL.Path),
	}
	if r.URL.RawQuery != "" {
		attrs = append(attrs, slog.String("http.query", r.URL.RawQuery))
	}
	attrs = append(attrs, HeaderAttrs(r.Header)...)
	if a, ok := BodyAttr(r.Header.Get("Content-Type"), body); ok {
		attrs = append(attrs, a)
	}
	return attrs
}

// ResponseAttrs describes the response written for r.
func ResponseAttrs(r *http.Request, header http.Header, status int, size int64, body []byte, elapsed time.Duration, direction string) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("http.direction", direction),
		slog.String("http.method", r.Method),
		slog.String("http.path", r.URL.Path),
		slog.Int("http.status", status),
		slog.Int64("http.size_bytes", size),
		slog.Int64("duration_ms", elapsed.Milliseconds()),
	}
	attrs = append(attrs, HeaderAttrs(header)...)
	if a, ok := BodyAttr(header.Get("Content-Type"), body); ok {
		attrs = append(attrs, a)
	}
	return attrs
}
