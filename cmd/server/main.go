package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/mamadbah2/steelrolls/internal/config"
	"github.com/mamadbah2/steelrolls/internal/observability"
	"github.com/mamadbah2/steelrolls/internal/repository"
	badgerrepo "github.com/mamadbah2/steelrolls/internal/repository/badger"
	"github.com/mamadbah2/steelrolls/internal/repository/memory"
	"github.com/mamadbah2/steelrolls/internal/repository/mongodb"
	"github.com/mamadbah2/steelrolls/internal/repository/sheets"
	"github.com/mamadbah2/steelrolls/internal/repository/sqlite"
	"github.com/mamadbah2/steelrolls/internal/scheduler"
	"github.com/mamadbah2/steelrolls/internal/server/handlers"
	"github.com/mamadbah2/steelrolls/internal/server/router"
	"github.com/mamadbah2/steelrolls/internal/service/inventory"
	reportingsvc "github.com/mamadbah2/steelrolls/internal/service/reporting"
	"github.com/mamadbah2/steelrolls/pkg/clients/notify"
	"github.com/mamadbah2/steelrolls/pkg/logger"
)

// stores is the storage selected by STORAGE_DRIVER.
type stores struct {
	rolls      repository.RollRepository
	reports    repository.ReportRepository
	maintainer scheduler.Maintainer
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)
	gin.SetMode(gin.ReleaseMode)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := openStores(startupCtx, cfg, baseLogger)
	cancelStartup()
	if err != nil {
		baseLogger.Fatal("failed to init storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer func() {
		if err := store.rolls.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close storage", zap.Error(err))
		}
	}()

	reportCfg := reportingsvc.Config{WindowDays: cfg.Reporting.WindowDays, Metrics: metrics}

	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		reportCfg.Exporter = sheets.NewReportExporter(sheetsRepo, cfg.Sheets.ReportRange)
		baseLogger.Info("google sheets report export enabled")
	}

	if cfg.Notify.WebhookURL != "" {
		reportCfg.Notifier = notify.NewClient(cfg.Notify)
		baseLogger.Info("report webhook enabled")
	}

	inventorySvc := inventory.NewService(store.rolls, baseLogger.Named("svc.inventory"), inventory.WithMetrics(metrics))
	reportingSvc := reportingsvc.NewService(inventorySvc, store.reports, reportCfg, baseLogger.Named("svc.reporting"))

	engine := router.New(router.Deps{
		Rolls:    handlers.NewRollsHandler(inventorySvc, baseLogger.Named("handlers.rolls")),
		Reports:  handlers.NewReportsHandler(reportingSvc, baseLogger.Named("handlers.reports")),
		Metrics:  metrics,
		Gatherer: registry,
	}, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reporting, reportingSvc, store.maintainer, metrics, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (stores, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return stores{rolls: memory.NewRollRepository(), reports: memory.NewReportRepository()}, nil

	case config.DriverSQLite:
		repo, err := sqlite.NewRollRepository(cfg.Storage.SQLitePath, log.Named("repo.sqlite"))
		if err != nil {
			return stores{}, err
		}
		return stores{rolls: repo, reports: memory.NewReportRepository()}, nil

	case config.DriverBadger:
		repo, err := badgerrepo.NewRollRepository(badgerrepo.Config{
			Path:     cfg.Storage.BadgerPath,
			InMemory: cfg.Storage.BadgerInMemory,
		}, log.Named("repo.badger"))
		if err != nil {
			return stores{}, err
		}
		return stores{rolls: repo, reports: memory.NewReportRepository(), maintainer: repo}, nil

	case config.DriverMongoDB:
		repo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, log.Named("repo.mongodb"))
		if err != nil {
			return stores{}, err
		}
		return stores{rolls: repo, reports: repo}, nil
	}

	return stores{}, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}
