package middleware_http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"simple-shop/internal/logger"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

var emptyObject = json.RawMessage("{}")

// JSONBodyFromContext returns the body parsed by JSONBody, or {} when the
// request carried no JSON.
func JSONBodyFromContext(ctx context.Context) json.RawMessage {
	if v, ok := ctx.Value(ctxKeyJSONBody).(json.RawMessage); ok {
		return v
	}
	return emptyObject
}

// JSONBody parses application/json bodies before routing. gzip and deflate
// bodies are inflated first and the size limit applies to the inflated
// body. A body that is too large, uses another encoding or is not a JSON
// object/array is rejected with a client error and the route handler never
// runs.
func JSONBody(log *logger.Logger, maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody || !isJSON(r.Header.Get("Content-Type")) {
				next.ServeHTTP(w, r)
				return
			}

			src, berr := decodeContent(r)
			if berr != nil {
				reject(w, r, log, berr)
				return
			}
			body, err := io.ReadAll(io.LimitReader(src, maxBytes+1))
			if err != nil {
				reject(w, r, log, &bodyError{http.StatusBadRequest, "invalid request body"})
				return
			}
			if int64(len(body)) > maxBytes {
				reject(w, r, log, &bodyError{http.StatusRequestEntityTooLarge, "request entity too large"})
				return
			}

			trimmed := bytes.TrimSpace(body)
			if len(trimmed) == 0 {
				r.Body = io.NopCloser(bytes.NewReader(body))
				next.ServeHTTP(w, r)
				return
			}
			if (trimmed[0] != '{' && trimmed[0] != '[') || !json.Valid(trimmed) {
				reject(w, r, log, &bodyError{http.StatusBadRequest, "invalid JSON body"})
				return
			}

			// Downstream sees the decoded body.
			r.Body = io.NopCloser(bytes.NewReader(body))
			r.Header.Del("Content-Encoding")
			r.ContentLength = int64(len(body))
			ctx := context.WithValue(r.Context(), ctxKeyJSONBody, json.RawMessage(trimmed))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type bodyError struct {
	status int
	msg    string
}

func (e *bodyError) Error() string { return e.msg }

func reject(w http.ResponseWriter, r *http.Request, log *logger.Logger, err *bodyError) {
	log.Debug(r.Context(), "Rejected request body",
		slog.Int("status", err.status),
		slog.String("reason", err.msg),
	)
	http.Error(w, err.msg, err.status)
}

func decodeContent(r *http.Request) (io.Reader, *bodyError) {
	switch enc := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Encoding"))); enc {
	case "", "identity":
		return r.Body, nil
	case "gzip":
		zr, err := gzip.NewReader(r.Body)
		if err != nil {
			return nil, &bodyError{http.StatusBadRequest, "invalid gzip body"}
		}
		return zr, nil
	case "deflate":
		zr, err := zlib.NewReader(r.Body)
		if err != nil {
			return nil, &bodyError{http.StatusBadRequest, "invalid deflate body"}
		}
		return zr, nil
	default:
		return nil, &bodyError{http.StatusUnsupportedMediaType, "unsupported content encoding \"" + enc + "\""}
	}
}

func isJSON(contentType string) bool {
	ct, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return ct == "application/json"
}
