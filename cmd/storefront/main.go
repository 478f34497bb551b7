package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aresheg/restaurant-storefront/api/routes"
	"github.com/aresheg/restaurant-storefront/internal/cart"
	"github.com/aresheg/restaurant-storefront/internal/orders"
	"github.com/aresheg/restaurant-storefront/internal/orderservice"
	"github.com/aresheg/restaurant-storefront/pkg/config"
	"github.com/aresheg/restaurant-storefront/pkg/logger"
	"github.com/aresheg/restaurant-storefront/pkg/metrics"
	"github.com/aresheg/restaurant-storefront/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	client, err := newOrderServiceClient(cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to set up order service client", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, idempotency guard runs in passthrough mode")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	orderMetrics := metrics.NewOrderMetrics(registry)

	carts := cart.NewStore()
	cache := orders.NewCache()
	svc, err := orders.NewService(orders.ServiceDeps{
		Client:  client,
		Carts:   carts,
		Cache:   cache,
		Logger:  logg,
		Metrics: orderMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}
	editor, err := orders.NewAdminEditor(client, cache, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create admin editor", err)
		os.Exit(1)
	}
	tracker := orders.NewTracker(svc, cfg.Poller.Interval, logg, orderMetrics)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
		"mode": cfg.OrderService.Mode,
	})
	logg.Info(ctx, "starting storefront server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			Carts:       carts,
			Orders:      svc,
			AdminEditor: editor,
			Tracker:     tracker,
			Redis:       redisClient,
			Registry:    registry,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "storefront server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "error draining http server", err)
		}
		// pollers stop last so in-flight refreshes finish cleanly
		tracker.Shutdown()
	}
	logg.Info(ctx, "storefront server stopped")
}

func newOrderServiceClient(cfg *config.Config, logg *logger.Logger) (orderservice.Client, error) {
	switch strings.ToLower(cfg.OrderService.Mode) {
	case config.OrderServiceModeMemory:
		sim, err := orderservice.NewSimulator(cfg.Fees)
		if err != nil {
			return nil, err
		}
		sim.SeedDefaultCatalog()
		logg.Info(context.Background(), "using in-memory order service simulator")
		return sim, nil
	default:
		return orderservice.NewHTTPClient(cfg.OrderService)
	}
}
