package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	cashboxapp "github.com/lending/backend/internal/application/cashbox"
	creditapp "github.com/lending/backend/internal/application/credit"
	"github.com/lending/backend/internal/domain/shared"
	"github.com/lending/backend/internal/infrastructure/auth"
	"github.com/lending/backend/internal/infrastructure/config"
	"github.com/lending/backend/internal/infrastructure/event"
	"github.com/lending/backend/internal/infrastructure/logger"
	"github.com/lending/backend/internal/infrastructure/persistence"
	"github.com/lending/backend/internal/infrastructure/scheduler"
	"github.com/lending/backend/internal/interfaces/http/handler"
	"github.com/lending/backend/internal/interfaces/http/middleware"
	"github.com/lending/backend/internal/interfaces/http/router"
)

var version = "dev"

const maxBodyBytes = 1 << 20 // lifecycle payloads are small JSON documents

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting lending backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	clock, err := shared.NewBusinessClock(cfg.Engine.Timezone)
	if err != nil {
		log.Fatal("Invalid business timezone", zap.String("timezone", cfg.Engine.Timezone), zap.Error(err))
	}
	engineCfg := cfg.Engine.CreditConfig()

	// Repositories
	creditRepo := persistence.NewGormCreditRepository(db.DB)
	installmentRepo := persistence.NewGormInstallmentRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	receiptRepo := persistence.NewGormReceiptRepository(db.DB)
	movementRepo := persistence.NewGormCashMovementRepository(db.DB)
	borrowers := persistence.NewGormBorrowerDirectory(db.DB)
	methods := persistence.NewGormMethodCatalog(db.DB)
	uow := persistence.NewGormUnitOfWork(db.DB)

	// Application services
	ledgerService := cashboxapp.NewLedgerService(movementRepo, uow)
	creditService := creditapp.NewCreditService(
		creditRepo, installmentRepo, paymentRepo, borrowers, methods,
		ledgerService, engineCfg, clock, uow,
	)
	settlementService := creditapp.NewSettlementService(
		creditRepo, installmentRepo, paymentRepo, receiptRepo, methods,
		ledgerService, engineCfg, clock, uow,
	)
	refinanceService := creditapp.NewRefinanceService(
		creditRepo, installmentRepo, engineCfg, clock, uow,
	)

	// Lifecycle events feed in-process consumers; the audit handler logs
	// every credit transition.
	eventBus := event.NewInMemoryBus(log)
	eventBus.Subscribe(event.NewCreditAuditHandler(log))
	creditService.SetEventPublisher(eventBus)
	settlementService.SetEventPublisher(eventBus)
	refinanceService.SetEventPublisher(eventBus)

	// Accrual is synchronized lazily on every read; the nightly sweep covers
	// credits nobody looked at.
	sweep := scheduler.NewAccrualSweep(scheduler.DefaultAccrualSweepConfig(), creditRepo, creditService, log)
	if err := sweep.Start(context.Background()); err != nil {
		log.Fatal("Failed to start accrual sweep", zap.Error(err))
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	engine := router.New(
		router.Config{
			Environment: cfg.App.Env,
			CORS: middleware.CORSConfig{
				AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
				AllowMethods:     cfg.HTTP.CORSAllowMethods,
				AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
				ExposeHeaders:    []string{"X-Request-ID"},
				AllowCredentials: true,
				MaxAge:           12 * time.Hour,
			},
			MaxBodyBytes: maxBodyBytes,
		},
		router.Dependencies{
			Logger:  log,
			JWT:     jwtService,
			Credits: handler.NewCreditHandler(creditService, settlementService, refinanceService),
			System:  handler.NewSystemHandler(db, version),
		},
	)
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sweep.Stop(ctx); err != nil {
		log.Warn("Accrual sweep did not stop cleanly", zap.Error(err))
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
