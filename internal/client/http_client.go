package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"simple-shop/internal/logger"
	"simple-shop/internal/model"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

var HttpClientTracer = otel.Tracer("HttpClient")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// ShopClient talks to the shop HTTP API and propagates trace context.
type ShopClient struct {
	client  *http.Client
	baseURL string
	log     *logger.Logger
}

func NewShopClient(baseURL string, timeout time.Duration, log *logger.Logger) *ShopClient {
	return &ShopClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

func (c *ShopClient) ListProducts(ctx context.Context) ([]model.Product, error) {
	body, err := c.do(ctx, http.MethodGet, "/products", nil)
	if err != nil {
		return nil, err
	}
	var products []model.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

// AddToCart posts payload as JSON and returns the acknowledgement text.
func (c *ShopClient) AddToCart(ctx context.Context, payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode cart payload: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, "/cart", raw)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *ShopClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	ctx, span := HttpClientTracer.Start(ctx, "HttpClient "+method+" "+path)
	defer span.End()

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Inject standard otel headers
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		c.log.Error(ctx, "HttpClient request failed", slog.String("url", req.URL.String()), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	c.log.Debug(ctx, "HttpClient response",
		slog.String("method", method),
		slog.String("url", req.URL.String()),
		slog.Int("status", resp.StatusCode),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, "unexpected status")
		return nil, &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
