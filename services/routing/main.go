// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/margsathi/margsathi/pkg/logging"
	"github.com/margsathi/margsathi/services/routing/config"
	"github.com/margsathi/margsathi/services/routing/decision"
	"github.com/margsathi/margsathi/services/routing/detour"
	"github.com/margsathi/margsathi/services/routing/events"
	"github.com/margsathi/margsathi/services/routing/handlers"
	"github.com/margsathi/margsathi/services/routing/middleware"
	"github.com/margsathi/margsathi/services/routing/providers"
	"github.com/margsathi/margsathi/services/routing/routes"
	"github.com/margsathi/margsathi/services/routing/spatial"
	"github.com/margsathi/margsathi/services/routing/webhooks"
)

func initTracer(endpoint string) (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("routing-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// buildChain turns the configured fallback order into provider clients.
// Unknown names are skipped with a warning so a config typo degrades
// instead of crashing.
func buildChain(cfg config.ProvidersConfig, logger *logging.Logger) []providers.Provider {
	chain := make([]providers.Provider, 0, len(cfg.Chain))
	for _, name := range cfg.Chain {
		switch name {
		case "mapbox":
			chain = append(chain, providers.NewMapboxClient(cfg.Mapbox.APIKey, cfg.Mapbox.BaseURL))
		case "google":
			chain = append(chain, providers.NewGoogleClient(cfg.Google.APIKey, cfg.Google.BaseURL))
		case "mapmyindia":
			chain = append(chain, providers.NewMapplsClient(cfg.MapmyIndia.APIKey, cfg.MapmyIndia.BaseURL))
		case "osrm":
			chain = append(chain, providers.NewOSRMClient(cfg.OSRM.BaseURL))
		default:
			logger.Warn("unknown provider in fallback chain, skipping", "provider", name)
		}
	}
	return chain
}

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	cfg := config.Global

	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Logging.Level),
		LogDir:  cfg.Logging.Dir,
		Service: "routing",
		JSON:    cfg.Logging.JSON,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	if cfg.Server.OTLPEndpoint != "" {
		cleanup, err := initTracer(cfg.Server.OTLPEndpoint)
		if err != nil {
			log.Fatalf("failed to setup the OTLP tracer: %v", err)
		}
		defer cleanup(context.Background())
	} else {
		logger.Info("OTLP endpoint not configured, tracing disabled")
	}

	chain := buildChain(cfg.Providers, logger)
	if len(chain) == 0 {
		log.Fatal("no routing providers in the fallback chain")
	}
	gateway := providers.NewGateway(chain, providers.GatewayOptions{
		RequestsPerSecond: cfg.Providers.RequestsPerSecond,
		Logger:            logger,
	})

	engine := decision.NewEngine(gateway, logger)
	engine.SetDefaultRadius(cfg.Detour.DefaultImpactRadiusMeters)

	index := spatial.New(cfg.Spatial.Resolution)
	finder := detour.NewFinder(index, gateway, detour.Options{
		OffsetsKm:       cfg.Detour.OffsetsKm,
		RingScaleMeters: cfg.Detour.RingScaleMeters,
		Logger:          logger,
	})

	deps := handlers.Deps{
		Engine:    engine,
		Finder:    finder,
		Gateway:   gateway,
		Processor: events.NewProcessor(nil, engine, logger),
		Webhooks:  webhooks.NewRegistry(webhooks.NewMemoryStore(), logger),
		Logger:    logger,
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("routing-service"))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))

	routes.SetupRoutes(router, deps)

	for _, status := range gateway.Status() {
		logger.Info("provider registered",
			"provider", status.Name,
			"configured", status.Configured,
			"supports_avoidance", status.SupportsAvoidance)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("starting the routing server", "addr", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
