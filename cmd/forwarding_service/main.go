package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/rentalops/telephony_services/internal/forwarding_service/adapters/numberapi"
	"github.com/rentalops/telephony_services/internal/forwarding_service/adapters/stateapi"
	"github.com/rentalops/telephony_services/internal/forwarding_service/app"
	"github.com/rentalops/telephony_services/internal/forwarding_service/catalog"
	"github.com/rentalops/telephony_services/internal/forwarding_service/repository/postgres"
	httptransport "github.com/rentalops/telephony_services/internal/forwarding_service/transport/http"
	"github.com/rentalops/telephony_services/internal/platform/config"
	"github.com/rentalops/telephony_services/internal/platform/database"
	"github.com/rentalops/telephony_services/internal/platform/logger"
	"github.com/rentalops/telephony_services/internal/platform/messagebroker"
)

const (
	serviceName     = "forwarding_service"
	shutdownTimeout = 15 * time.Second
)

func main() {
	mainCtx, mainCancel := context.WithCancel(context.Background())
	defer mainCancel()

	cfg, err := config.Load(serviceName)
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger = appLogger.With("service", serviceName)
	appLogger.Info("Forwarding service starting...", "port", cfg.ServerPort)

	dbPool, err := database.NewDBPool(mainCtx, cfg.PostgresDSN)
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	appLogger.Info("Connected to PostgreSQL database")

	attemptRepo := postgres.NewPgAttemptRepository(dbPool)

	httpClient := &http.Client{Timeout: time.Duration(cfg.HTTPClientTimeoutSeconds) * time.Second}
	stateClient := stateapi.NewClient(appLogger, cfg.StateAPIBaseURL, cfg.StateAPIToken, httpClient)
	numberClient := numberapi.NewClient(appLogger, cfg.NumberAPIBaseURL, cfg.NumberAPIToken, httpClient)

	carrierCatalog := loadCatalog(mainCtx, cfg, stateClient, appLogger)
	appLogger.Info("Carrier catalog loaded", "entries", carrierCatalog.Len())

	// Event publishing is best-effort; the service stays up without NATS.
	var events app.EventPublisher
	natsClient, err := messagebroker.NewNATSClient(cfg.NATSUrl, serviceName, appLogger)
	if err != nil {
		appLogger.Warn("Failed to connect to NATS; forwarding events will not be published", "error", err)
	} else {
		defer natsClient.Close()
		events = natsClient
		appLogger.Info("NATS client connected", "url", cfg.NATSUrl)
	}

	forwardingService := app.NewForwardingAppService(
		stateClient, numberClient, carrierCatalog, attemptRepo, events, appLogger)

	validate := validator.New()
	handler := httptransport.NewForwardingHandler(forwardingService, appLogger, validate)
	authMW := httptransport.AuthMiddleware(cfg.JWTAccessSecret, appLogger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(httptransport.PrometheusMetricsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok", "service": serviceName})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(authMW)
		handler.RegisterRoutes(api)
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: r,
	}

	g, groupCtx := errgroup.WithContext(mainCtx)

	g.Go(func() error {
		appLogger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-quit:
			appLogger.Info("Shutdown signal received", "signal", sig.String())
			mainCancel()
		case <-groupCtx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Service exited with error", "error", err)
		os.Exit(1)
	}
	appLogger.Info("Forwarding service stopped cleanly")
}

// loadCatalog tries the state API's copy of the carrier catalog once at startup
// and falls back to the compiled-in reference list. The loaded catalog is immutable
// for the life of the process.
func loadCatalog(ctx context.Context, cfg *config.Config, stateClient *stateapi.Client, appLogger *slog.Logger) *catalog.Catalog {
	if !cfg.CatalogRefreshOnStart {
		return catalog.Default()
	}

	fetchCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	profiles, err := stateClient.FetchCarrierCatalog(fetchCtx)
	if err != nil || len(profiles) == 0 {
		appLogger.Warn("Could not load carrier catalog from state API; using built-in reference list", "error", err)
		return catalog.Default()
	}
	return catalog.New(profiles)
}
