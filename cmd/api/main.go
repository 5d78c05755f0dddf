package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/axcshop/axcshop-backend/api/routes"
	"github.com/axcshop/axcshop-backend/internal/carrier"
	checkoutsvc "github.com/axcshop/axcshop-backend/internal/checkout"
	"github.com/axcshop/axcshop-backend/internal/coupons"
	"github.com/axcshop/axcshop-backend/internal/customers"
	"github.com/axcshop/axcshop-backend/internal/inventory"
	"github.com/axcshop/axcshop-backend/internal/ledger"
	"github.com/axcshop/axcshop-backend/internal/orders"
	"github.com/axcshop/axcshop-backend/internal/payments"
	"github.com/axcshop/axcshop-backend/internal/sequence"
	"github.com/axcshop/axcshop-backend/pkg/config"
	"github.com/axcshop/axcshop-backend/pkg/db"
	"github.com/axcshop/axcshop-backend/pkg/logger"
	"github.com/axcshop/axcshop-backend/pkg/metrics"
	"github.com/axcshop/axcshop-backend/pkg/migrate"
	"github.com/axcshop/axcshop-backend/pkg/outbox"
	"github.com/axcshop/axcshop-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	conn := dbClient.DB()
	fulfillmentMetrics := metrics.NewFulfillmentMetrics(prometheus.DefaultRegisterer)

	outboxService := outbox.NewService(outbox.NewRepository(conn), logg)
	ordersRepo := orders.NewRepository(conn)

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.Deps{
		Tx:        dbClient,
		Catalog:   checkoutsvc.NewCatalogReader(conn),
		Allocator: sequence.NewAllocator(conn),
		Guard:     coupons.NewGuard(conn),
		Engine:    inventory.NewEngine(conn),
		Orders:    ordersRepo,
		Customers: customers.NewRepository(conn),
		Outbox:    outboxService,
		Pricing:   cfg.Pricing,
		Metrics:   fulfillmentMetrics,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo, dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	walletClient, err := payments.NewWalletClient(cfg.Wallet)
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet client", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(dbClient, ordersRepo, walletClient, outboxService, fulfillmentMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	ledgerRepo := ledger.NewRepository(conn)
	ledgerService, err := ledger.NewService(ledgerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	carrierProcessor, err := carrier.NewProcessor(carrier.ProcessorDeps{
		Tx:          dbClient,
		Orders:      ordersRepo,
		Shipping:    carrier.NewShippingRepository(conn),
		Ledger:      ledgerRepo,
		Outbox:      outboxService,
		CarrierName: cfg.Carrier.Name,
		Metrics:     fulfillmentMetrics,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create carrier processor", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			checkoutService,
			ordersService,
			paymentsService,
			ledgerService,
			carrierProcessor,
			carrier.NewAuthenticator(cfg.Carrier.WebhookSecret),
		),
	}

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	closeErr = multierr.Append(closeErr, redisClient.Close())
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if closeErr != nil {
		logg.Error(ctx, "shutdown finished with errors", closeErr)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shut down gracefully")
}
