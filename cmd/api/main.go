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

	"github.com/homeshopping/homeshopping-backend/api/controllers"
	"github.com/homeshopping/homeshopping-backend/api/routes"
	"github.com/homeshopping/homeshopping-backend/internal/auth"
	"github.com/homeshopping/homeshopping-backend/internal/basket"
	"github.com/homeshopping/homeshopping-backend/internal/checkout"
	"github.com/homeshopping/homeshopping-backend/internal/orders"
	product "github.com/homeshopping/homeshopping-backend/internal/products"
	"github.com/homeshopping/homeshopping-backend/internal/users"
	pkgauth "github.com/homeshopping/homeshopping-backend/pkg/auth"
	"github.com/homeshopping/homeshopping-backend/pkg/config"
	"github.com/homeshopping/homeshopping-backend/pkg/db"
	"github.com/homeshopping/homeshopping-backend/pkg/logger"
	"github.com/homeshopping/homeshopping-backend/pkg/metrics"
	"github.com/homeshopping/homeshopping-backend/pkg/migrate"
	"github.com/homeshopping/homeshopping-backend/pkg/outbox"
	"github.com/homeshopping/homeshopping-backend/pkg/redis"
	"github.com/homeshopping/homeshopping-backend/pkg/security"
)

const shutdownTimeout = 15 * time.Second

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

	cfg.Service.Kind = "api"

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
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := metrics.NewRegistry()
	deps, err := buildDeps(cfg, logg, dbClient, redisClient, registry)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}
	deps.Readiness = map[string]controllers.Pinger{
		"postgres": dbClient,
		"redis":    redisClient,
	}

	if err := deps.Products.WarmListCache(context.Background()); err != nil {
		logg.Warn(context.Background(), "catalog cache warm failed: "+err.Error())
	}

	addr := ":" + cfg.App.Port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"addr":        addr,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func buildDeps(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, registry *prometheus.Registry) (routes.Deps, error) {
	conn := dbClient.DB()
	basketRepo := basket.NewRepository(conn)
	productRepo := product.NewRepository(conn)
	ledger := product.NewStockLedger(conn)

	codec, err := pkgauth.NewBasketTokenCodec(cfg.Basket.SigningSecret(cfg.JWT), cfg.JWT.Issuer, cfg.Basket.CookieLifetime)
	if err != nil {
		return routes.Deps{}, err
	}
	resolver, err := basket.NewIdentityResolver(basketRepo, dbClient, codec, logg)
	if err != nil {
		return routes.Deps{}, err
	}
	validator := basket.NewLineValidator(basketRepo, productRepo, ledger)
	baskets, err := basket.NewService(basketRepo, dbClient, validator, logg)
	if err != nil {
		return routes.Deps{}, err
	}
	products, err := product.NewService(productRepo, dbClient, redisClient, cfg.Catalog, logg)
	if err != nil {
		return routes.Deps{}, err
	}
	orderRepo := orders.NewRepository(conn)
	orderSvc, err := orders.NewService(orderRepo)
	if err != nil {
		return routes.Deps{}, err
	}
	checkoutSvc, err := checkout.NewService(checkout.Deps{
		Tx:       dbClient,
		Baskets:  basketRepo,
		Orders:   orderRepo,
		Products: productRepo,
		Ledger:   ledger,
		Outbox:   outbox.NewService(outbox.NewRepository(conn), logg),
		Metrics:  metrics.NewCheckoutMetrics(registry),
		Config:   cfg.Basket,
		Logger:   logg,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	userRepo := users.NewRepository(conn)
	userSvc, err := users.NewService(userRepo)
	if err != nil {
		return routes.Deps{}, err
	}
	authSvc, err := auth.NewService(auth.ServiceParams{
		UserRepo:  userRepo,
		Hasher:    security.NewHasher(cfg.Password),
		JWTConfig: cfg.JWT,
		Logger:    logg,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	return routes.Deps{
		Config:      cfg,
		Logger:      logg,
		Registry:    registry,
		HTTPMetrics: metrics.NewHTTPMetrics(registry),
		Idempotency: redisClient,
		RateLimiter: redisClient,
		Resolver:    resolver,
		Baskets:     baskets,
		Checkout:    checkoutSvc,
		Products:    products,
		Orders:      orderSvc,
		Auth:        authSvc,
		Users:       userSvc,
	}, nil
}
