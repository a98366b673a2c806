package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/frdg/internal/config"
	"github.com/mamadbah2/frdg/internal/repository"
	"github.com/mamadbah2/frdg/internal/repository/mongodb"
	"github.com/mamadbah2/frdg/internal/repository/postgres"
	"github.com/mamadbah2/frdg/internal/repository/sheets"
	"github.com/mamadbah2/frdg/internal/scheduler"
	"github.com/mamadbah2/frdg/internal/server/handlers"
	"github.com/mamadbah2/frdg/internal/server/router"
	expirysvc "github.com/mamadbah2/frdg/internal/service/expiry"
	foodsvc "github.com/mamadbah2/frdg/internal/service/foods"
	"github.com/mamadbah2/frdg/pkg/logger"
)

func main() {
	cfg, err := config.LoadServer("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := openRepository(ctx, cfg, baseLogger.Named("repo"))
	if err != nil {
		baseLogger.Fatal("failed to init food repository", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close food repository", zap.Error(err))
		}
	}()

	var exporter sheets.Exporter
	if cfg.Sheets.Enabled() {
		sheetsExporter, err := sheets.NewGoogleSheetExporter(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		exporter = sheetsExporter
		baseLogger.Info("google sheets expiry export enabled")
	} else {
		baseLogger.Info("google sheets not configured, expiry export disabled")
	}

	foodSvc := foodsvc.NewService(repo, baseLogger.Named("svc.foods"))
	expirySvc := expirysvc.NewService(repo, exporter, config.Location(cfg.Expiry.Timezone), baseLogger.Named("svc.expiry"))

	foodsHandler := handlers.NewFoodsHandler(foodSvc, baseLogger.Named("handlers.foods"))
	engine := router.New(foodsHandler, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Expiry, expirySvc, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("driver", cfg.Database.Driver))
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

func openRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.FoodRepository, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if cfg.Database.Driver == config.DriverMongoDB {
		repo, err := mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName, logger.Named("mongodb"))
		if err != nil {
			return nil, err
		}
		return repo, nil
	}

	repo, err := postgres.Open(connectCtx, cfg.Database.PostgresDSN, logger.Named("postgres"))
	if err != nil {
		return nil, err
	}
	return repo, nil
}
