package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	handler "simple-shop/internal/handler/http"
	"simple-shop/internal/logger"
	"simple-shop/internal/repository"
	"simple-shop/internal/service"
)

func newTestLogger(t *testing.T, w io.Writer) *logger.Logger {
	t.Helper()
	cfg := logger.DefaultConfig()
	cfg.Sinks = nil
	cfg.Writers = []io.Writer{w}
	l, err := logger.New(cfg)
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return l
}

func newShopServer(t *testing.T, log *logger.Logger) *httptest.Server {
	t.Helper()
	repo := repository.NewStaticProductRepository(repository.DefaultProducts())
	router := handler.NewRouter(log, 100<<10,
		handler.NewProductHandler(service.NewCatalogService(repo), log),
		handler.NewCartHandler(service.NewCartService(), log),
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestShopClientAgainstServer(t *testing.T) {
	serverLog := &bytes.Buffer{}
	srv := newShopServer(t, newTestLogger(t, serverLog))
	c := NewShopClient(srv.URL+"/", 2*time.Second, newTestLogger(t, io.Discard))

	products, err := c.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(products) != 3 || products[1].Name != "Product B" || products[1].Price != 20 {
		t.Fatalf("unexpected products: %+v", products)
	}

	ack, err := c.AddToCart(context.Background(), map[string]int{"productId": 1, "qty": 2})
	if err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if ack != "Item added to cart" {
		t.Fatalf("unexpected ack %q", ack)
	}

	// Close waits for in-flight handlers, which log after responding.
	srv.Close()
	if !bytes.Contains(serverLog.Bytes(), []byte(`"body":{"productId":1,"qty":2}`)) {
		t.Fatalf("server did not log the cart body: %s", serverLog.String())
	}
}

func TestShopClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewShopClient(srv.URL, time.Second, newTestLogger(t, io.Discard))
	_, err := c.ListProducts(context.Background())

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusServiceUnavailable || se.Body != "boom" {
		t.Fatalf("unexpected error %+v", se)
	}
}
