package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-narrator/internal/client"
	"github.com/kjstillabower/weather-narrator/internal/config"
	httphandler "github.com/kjstillabower/weather-narrator/internal/http"
	"github.com/kjstillabower/weather-narrator/internal/lifecycle"
	"github.com/kjstillabower/weather-narrator/internal/observability"
	"github.com/kjstillabower/weather-narrator/internal/prompt"
	"github.com/kjstillabower/weather-narrator/internal/service"
)

func main() {
	logger, err := observability.NewLogger(observability.LoggerOptionsFromEnv("weather-narrator"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	tp, err := observability.SetupTracing(context.Background(), cfg.TracingServiceName, cfg.TracingEndpoint)
	if err != nil {
		logger.Fatal("tracing", zap.Error(err))
	}
	if cfg.TracingEndpoint != "" {
		logger.Info("trace export enabled", zap.String("endpoint", cfg.TracingEndpoint))
	}

	geocoder, err := client.NewOpenWeatherGeocoder(cfg.OpenWeatherAPIKey, cfg.GeocodeURL, cfg.ProviderTimeout)
	if err != nil {
		logger.Fatal("geocode client", zap.Error(err))
	}
	weatherClient, err := client.NewOpenWeatherClient(cfg.OpenWeatherAPIKey, cfg.WeatherURL, cfg.ProviderTimeout)
	if err != nil {
		logger.Fatal("weather client", zap.Error(err))
	}
	generator, err := client.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.GenerationURL, cfg.GenerationModel, cfg.ProviderTimeout)
	if err != nil {
		logger.Fatal("generation client", zap.Error(err))
	}
	prompts, err := prompt.NewBuilder()
	if err != nil {
		logger.Fatal("prompt templates", zap.Error(err))
	}
	narrationService := service.NewNarrationService(geocoder, weatherClient, generator, prompts)

	clock := clockwork.NewRealClock()
	healthConfig := &httphandler.HealthConfig{
		DegradedWindow:   cfg.DegradedWindow,
		DegradedErrorPct: cfg.DegradedErrorPct,
		StartTime:        clock.Now(),
	}
	handler := httphandler.NewHandler(narrationService, healthConfig, logger, clock, cfg.CityMaxLength)

	router := mux.NewRouter()
	router.Use(httphandler.CorrelationIDMiddleware(logger))
	router.Use(httphandler.TracingMiddleware)
	router.Use(httphandler.MetricsMiddleware)
	router.Use(httphandler.RecoverMiddleware)
	router.HandleFunc("/", handler.GetIndex).Methods("GET")
	router.HandleFunc("/health", handler.GetHealth).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler())
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(httphandler.TimeoutMiddleware(cfg.RequestTimeout))
	apiRouter.HandleFunc("/narrate", handler.PostNarrate).Methods("POST")

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", ":"+cfg.ServerPort),
			zap.String("model", cfg.GenerationModel),
			zap.Duration("provider_timeout", cfg.ProviderTimeout),
			zap.Duration("request_timeout", cfg.RequestTimeout))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.BeginDrain(clock.Now())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	inFlight := httphandler.InFlightCount()
	logger.Info("waiting for in-flight requests",
		zap.Int64("count", inFlight),
		zap.Duration("draining", lifecycle.DrainingFor(clock.Now())))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, clock, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	logger.Info("shutdown complete")
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := observability.FlushTelemetry(flushCtx, logger, tp); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry flush: %v\n", err)
	}
}
