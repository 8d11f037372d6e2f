package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"simple-shop/internal/logger"
	"simple-shop/internal/service"

	"go.opentelemetry.io/otel"
)

type ProductHandler struct {
	service *service.CatalogService
	log     *logger.Logger
}

var HttpProductHandlerTracer = otel.Tracer("HttpProductHandler")

func NewProductHandler(service *service.CatalogService, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		log:     log,
	}
}

// GetAll writes the catalog as a JSON array, then logs the count that was
// actually serialized. The response is on the wire before the log write.
func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.GetAll")
	defer span.End()

	products, err := h.service.ListProducts(ctx)
	if err != nil {
		http.Error(w, "Failed to fetch products", http.StatusInternalServerError)
		h.log.Error(ctx, "Failed to fetch products", slog.String("error", err.Error()))
		return
	}

	body, err := json.Marshal(products)
	if err != nil {
		http.Error(w, "Failed to encode products", http.StatusInternalServerError)
		h.log.Error(ctx, "Failed to encode products", slog.String("error", err.Error()))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
	flush(w)

	h.log.Info(ctx, "Fetched products", slog.Int("count", len(products)))
}

// flush pushes a complete response to the client so a slow log sink can
// not delay it.
func flush(w http.ResponseWriter) {
	_ = http.NewResponseController(w).Flush()
}
