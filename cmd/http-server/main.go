package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"simple-shop/internal/config"
	handler "simple-shop/internal/handler/http"
	"simple-shop/internal/logger"
	"simple-shop/internal/repository"
	"simple-shop/internal/service"
	"simple-shop/internal/tracer"
	"simple-shop/internal/version"
)

func main() {
	globalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Instance()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		MinLevel:  cfg.LogLevel,
		Format:    cfg.LogFormat,
		Sinks:     cfg.LogSinks,
		FilePath:  cfg.LogFilePath,
		RemoteURI: cfg.RemoteLogHttpURI,
		Job:       cfg.AppName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid logger configuration: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Debug(globalCtx, cfg.AppName,
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("buildTime", version.BuildTime),
	)
	log.Debug(globalCtx, "Configuration loaded successfully", config.StructAttrs("data", cfg.ToSafeConfig())...)

	// Initialize telemetry (OpenTelemetry + Pyroscope)
	shutdownTracer, err := tracer.Init(globalCtx, cfg, log)
	if err != nil {
		log.Error(globalCtx, "Failed to initialize tracer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Wiring
	productRepo := repository.NewStaticProductRepository(repository.DefaultProducts())
	catalogService := service.NewCatalogService(productRepo)
	cartService := service.NewCartService()
	productHandler := handler.NewProductHandler(catalogService, log)
	cartHandler := handler.NewCartHandler(cartService, log)

	router := handler.NewRouter(log, cfg.MaxBodyBytes, productHandler, cartHandler)
	if err := run(globalCtx, cfg.Addr(), cfg.AppHost, router, log); err != nil {
		log.Error(globalCtx, "Server failed", slog.String("error", err.Error()))
		_ = shutdownTracer(context.Background())
		_ = log.Close()
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "Error shutting down tracer provider", slog.String("error", err.Error()))
	}
}
