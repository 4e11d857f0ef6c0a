package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/service"
	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/infra/adapters/upstream"
	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/infra/httpx"
	"github.com/jcmexdev/storefront-gateway/internal/pkg/config"
	"github.com/jcmexdev/storefront-gateway/internal/pkg/metrics"
	"github.com/jcmexdev/storefront-gateway/internal/pkg/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.InitLogger(telemetry.LoggerOptions{
		Service: cfg.ServiceName,
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("gateway stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	shutdownTracer := telemetry.NoopShutdown
	if cfg.TracingEnabled() {
		var err error
		shutdownTracer, err = telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint, cfg.AppEnv)
		if err != nil {
			return err
		}
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			slog.Error("cart store close error", "error", err)
		}
	}()

	catalog, err := upstream.New(upstream.Config{
		BaseURL:   cfg.Upstream.BaseURL,
		APIKey:    cfg.Upstream.APIKey,
		Username:  cfg.Upstream.Username,
		Password:  cfg.Upstream.Password,
		UserAgent: cfg.Upstream.UserAgent,
		Timeout:   cfg.Upstream.Timeout,
	})
	if err != nil {
		return err
	}

	locks := service.NewKeyedMutex()
	handler := httpx.NewHandler(catalog,
		service.NewCartService(store, catalog, locks),
		service.NewOrderService(store, locks),
		httpx.HandlerOptions{
			PlaceholderImageURL: cfg.PlaceholderImageURL,
			RequestTimeout:      cfg.RequestTimeout,
		},
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	router := httpx.NewRouter(handler, httpx.RouterOptions{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: cfg.CORSAllowedMethods,
		Metrics:        metrics.NewServerMetrics(reg, "gateway"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(router, "storefront-gateway"),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if cfg.RequestTimeout > 0 {
		srv.WriteTimeout = cfg.RequestTimeout + 5*time.Second
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("storefront gateway listening",
			"addr", srv.Addr,
			"env", cfg.AppEnv,
			"cart_store", cfg.CartStore,
			"upstream", cfg.Upstream.BaseURL,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
