package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"simple-shop/internal/client"
	"simple-shop/internal/config"
	"simple-shop/internal/logger"
	"simple-shop/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Instance()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		MinLevel: cfg.LogLevel,
		Format:   cfg.LogFormat,
		Sinks:    []string{logger.SinkConsole},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid logger configuration: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	delay := time.Duration(cfg.ClientDelayMs) * time.Millisecond
	log.Info(ctx, "HTTP client started",
		slog.String("target", cfg.ClientTarget),
		slog.Int64("delay_ms", cfg.ClientDelayMs),
		slog.String("version", version.Version),
	)

	shop := client.NewShopClient(cfg.ClientTarget, 2*time.Second, log)

	for {
		products, err := shop.ListProducts(ctx)
		if err != nil {
			log.Error(ctx, "Failed to list products", slog.String("error", err.Error()))
		} else {
			log.Info(ctx, "Received products", slog.Int("count", len(products)))
			if len(products) > 0 {
				ack, err := shop.AddToCart(ctx, map[string]int{"productId": products[0].ID, "qty": 1})
				if err != nil {
					log.Error(ctx, "Failed to add to cart", slog.String("error", err.Error()))
				} else {
					log.Info(ctx, "Cart acknowledged", slog.String("ack", ack))
				}
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}
