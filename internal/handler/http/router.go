package http

import (
	"net/http"
	"strings"

	"simple-shop/internal/logger"
	middleware_http "simple-shop/internal/middleware/http"
)

// NewRouter registers the routes and wraps them with, outermost first:
// request id, tracing, JSON parse-or-reject, path normalization.
func NewRouter(log *logger.Logger, maxBodyBytes int64, products *ProductHandler, cart *CartHandler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", products.GetAll)
	mux.HandleFunc("POST /cart", cart.Add)

	var h http.Handler = normalizePath(mux)
	h = middleware_http.JSONBody(log, maxBodyBytes)(h)
	h = middleware_http.TraceMiddleware(log)(h)
	h = middleware_http.RequestID(h)
	return h
}

// normalizePath matches routes case-insensitively and ignores one trailing
// slash, so /Products/ is served as /products.
func normalizePath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := strings.ToLower(r.URL.Path)
		if len(p) > 1 {
			p = strings.TrimSuffix(p, "/")
		}
		if p != r.URL.Path {
			r2 := r.Clone(r.Context())
			r2.URL.Path = p
			r2.URL.RawPath = ""
			r = r2
		}
		next.ServeHTTP(w, r)
	})
}
