package tracer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"simple-shop/internal/config"
	"simple-shop/internal/logger"
	"simple-shop/internal/version"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"github.com/grafana/pyroscope-go"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

// ShutdownFunc flushes spans and stops the profiler.
type ShutdownFunc func(context.Context) error

var stdoutTraceWriter io.Writer = os.Stdout

var pyroLogrus = func() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.JSONFormatter{})
	return l
}()

// Init installs the global tracer provider and propagator. Spans are always
// created so logs carry trace ids; they are only exported when an OTLP
// endpoint or stdout export is configured.
func Init(ctx context.Context, cfg *config.Config, log *logger.Logger) (ShutdownFunc, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.AppName),
			semconv.ServiceVersionKey.String(version.Version),
			semconv.HostNameKey.String(logger.Hostname()),
		),
	)
	if err != nil {
		return nil, err
	}

	opts := []trace.TracerProviderOption{trace.WithResource(res)}

	// OTLP exporter (Tempo, etc)
	if cfg.RemoteTraceRpcURI != "" {
		exp, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(cfg.RemoteTraceRpcURI),
			otlptracegrpc.WithCompressor("gzip"),
			otlptracegrpc.WithDialOption(grpc.WithUserAgent(cfg.AppName+"/"+version.Version)),
		)
		if err != nil {
			return nil, err
		}
		opts = append(opts, trace.WithBatcher(exp))
		log.Info(ctx, "OTLP trace exporter configured", slog.String("endpoint", cfg.RemoteTraceRpcURI))
	}

	if cfg.TraceStdout {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(stdoutTraceWriter))
		if err != nil {
			return nil, err
		}
		opts = append(opts, trace.WithSyncer(exp))
	}

	tp := trace.NewTracerProvider(opts...)
	var provider oteltrace.TracerProvider = tp

	var profiler *pyroscope.Profiler
	if cfg.RemoteProfilingHttpURI != "" {
		profiler, err = pyroscope.Start(pyroscope.Config{
			ApplicationName: cfg.AppName,
			ServerAddress:   cfg.RemoteProfilingHttpURI,
			Logger:          pyroLogrus,
			Tags:            map[string]string{"hostname": logger.Hostname()},
		})
		if err != nil {
			log.Error(ctx, "Pyroscope failed to start", slog.String("error", err.Error()))
		} else {
			// Links profiles to span ids.
			provider = otelpyroscope.NewTracerProvider(tp)
			log.Info(ctx, "Pyroscope started successfully")
		}
	}

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Debug(ctx, "OpenTelemetry Tracer initialized")

	return func(ctx context.Context) error {
		var errs []error
		errs = append(errs, tp.Shutdown(ctx))
		if profiler != nil {
			errs = append(errs, profiler.Stop())
		}
		return errors.Join(errs...)
	}, nil
}
