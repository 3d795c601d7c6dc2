package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-checkout/internal/client"
	"github.com/iliyamo/cinema-checkout/internal/config"
	"github.com/iliyamo/cinema-checkout/internal/database"
	"github.com/iliyamo/cinema-checkout/internal/handler"
	"github.com/iliyamo/cinema-checkout/internal/logger"
	"github.com/iliyamo/cinema-checkout/internal/middleware"
	"github.com/iliyamo/cinema-checkout/internal/queue"
	"github.com/iliyamo/cinema-checkout/internal/repository"
	"github.com/iliyamo/cinema-checkout/internal/router"
	"github.com/iliyamo/cinema-checkout/internal/service"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()
	// amounts in API responses are JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
	cfg := config.Load()

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Development = cfg.LogDevelopment || cfg.IsDev()
	zl, err := logger.New(logCfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		zl.Fatal("redis unavailable", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		zl.Fatal("mysql unavailable", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	ledger := repository.NewSubmissionRepo(db)
	if err := ledger.EnsureSchema(ctx); err != nil {
		zl.Fatal("ledger schema", zap.Error(err))
	}

	backend := client.New(cfg.BackendBaseURL, cfg.BackendTimeout, zl.Named("backend"))

	deps := service.CheckoutDeps{
		Catalog:  backend,
		Bookings: backend,
		Drafts:   repository.NewDraftRepo(rdb, "draft", cfg.DraftTTL),
		Ledger:   ledger,
		Locks:    repository.NewLockRepo(rdb, "lock"),
		Log:      zl.Named("checkout"),
		LockTTL:  cfg.SubmitLockTTL,
	}
	if cfg.RabbitMQURL != "" {
		deps.Events = service.NewQueuePublisher(cfg.RabbitMQURL, zl.Named("publisher"))
		consumer := &queue.Consumer{URL: cfg.RabbitMQURL, LogPath: cfg.AuditLogPath, Log: zl.Named("consumer")}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zl.Error("booking consumer stopped", zap.Error(err))
			}
		}()
	} else {
		zl.Info("RABBITMQ_URL not set; booking events are not published")
	}

	checkout := service.NewCheckoutService(deps)
	bookings := service.NewBookingService(backend)
	admin := service.NewAdminService(backend, repository.NewConfirmationRepo(rdb, "confirm", cfg.ConfirmTTL), zl.Named("admin"))

	mw := router.Middlewares{
		RateLimit:   middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, zl),
		SubmitLimit: middleware.NewTokenBucket(config.LoadSubmitRateLimitConfig(), rdb, zl),
		Cache:       middleware.NewRedisCache(config.LoadCacheConfig(), rdb, zl),
	}

	e := router.New(zl)

	ch := handler.NewCheckoutHandler(checkout)
	router.RegisterRoutes(e, handler.Ready(map[string]handler.Pinger{
		"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		"mysql": db.PingContext,
	}))
	router.RegisterPublic(e, ch, mw)
	router.RegisterCustomer(e, ch, handler.NewBookingHandler(bookings), cfg.JWTSecret, mw)
	router.RegisterAdmin(e, handler.NewAdminHandler(admin), cfg.JWTSecret, mw)

	addr := ":" + cfg.Port
	go func() {
		zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
}
