package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"simple-shop/internal/logger"
	middleware_http "simple-shop/internal/middleware/http"
	"simple-shop/internal/model"
	"simple-shop/internal/service"

	"go.opentelemetry.io/otel"
)

type CartHandler struct {
	service *service.CartService
	log     *logger.Logger
}

var HttpCartHandlerTracer = otel.Tracer("HttpCartHandler")

func NewCartHandler(service *service.CartService, log *logger.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		log:     log,
	}
}

// Add acknowledges any submission. The body was already parsed by the
// JSONBody middleware.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpCartHandlerTracer.Start(r.Context(), "HttpCartHandler.Add")
	defer span.End()

	submission := model.CartSubmission(middleware_http.JSONBodyFromContext(ctx))
	ack := h.service.Add(ctx, submission)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(ack)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ack))
	flush(w)

	h.log.Info(ctx, "Added to cart", slog.Any("body", submission))
}
