package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"fire_backend/internal/app/di"
	"fire_backend/internal/app/router"
	"fire_backend/internal/feature/firedetection/adapters"
	"fire_backend/internal/feature/firedetection/adapters/alertstore"
	firehandler "fire_backend/internal/feature/firedetection/transport/handler"
	"fire_backend/internal/feature/firedetection/usecase"
	"fire_backend/internal/platform/config"
	platformdb "fire_backend/internal/platform/db"
	platformhandler "fire_backend/internal/platform/http/handler"
	"fire_backend/internal/platform/logger"
	platformredis "fire_backend/internal/platform/redis"
)

func main() {
	os.Exit(run())
}

func run() int {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	cfg := config.Load()

	log, closer := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	slog.SetDefault(log)
	defer func() {
		if err := closer.Close(); err != nil {
			slog.Error("failed to close log file", "error", err)
		}
	}()

	ctx := context.Background()

	// db
	db, err := platformdb.OpenDB(platformdb.LoadConfigFromEnv(), &adapters.FireEventModel{}, &adapters.SessionStateModel{})
	if err != nil {
		slog.Error("failed to open database", "error", err)
		return 1
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("failed to access database handle", "error", err)
		return 1
	}
	readyChecks := map[string]platformhandler.Pinger{"db": sqlDB.PingContext}

	// Redis
	var rdb *redisv9.Client
	if tmp, err := platformredis.NewRedisClient(ctx, platformredis.LoadOptionsFromEnv()); err != nil {
		slog.Warn("Redis unavailable. Falling back to database state without cache.", "error", err)
	} else {
		rdb = tmp
		readyChecks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// Repository
	state := di.NewStateRepository(rdb, db, cfg.Mode)
	events := adapters.NewEventGorm(db)
	alerts, err := alertstore.NewFileStore(cfg.AlertsDir)
	if err != nil {
		slog.Error("failed to prepare alerts directory", "dir", cfg.AlertsDir, "error", err)
		return 1
	}

	// Detector
	detector, closeDetector, err := di.NewFireDetector(ctx, cfg)
	if err != nil {
		slog.Error("failed to create fire detector", "engine", cfg.Engine, "error", err)
		return 1
	}
	defer func() {
		if err := closeDetector(); err != nil {
			slog.Error("failed to close fire detector", "error", err)
		}
	}()

	// Usecase
	detectionUC := usecase.NewDetectionUsecase(detector, state, events, alerts, usecase.DetectionConfig{
		MaxDimension:        cfg.MaxImageDimension,
		FrameSampleInterval: cfg.FrameSampleInterval,
	}, di.NewDetectionOptions(ctx, cfg, rdb)...)
	modeUC := usecase.NewModeUsecase(state)

	// Handler
	fireH := firehandler.NewFireDetectionHandler(detectionUC, modeUC)

	// ルータ生成
	r := router.NewRouter(router.Options{CORSEnabled: cfg.CORSEnabled, ReadyChecks: readyChecks}, fireH)

	slog.Info("fire detection server starting", "port", cfg.Port, "engine", cfg.Engine, "mode", cfg.Mode)
	if err := r.Run(":" + cfg.Port); err != nil {
		slog.Error("server stopped", "error", err)
		return 1
	}
	return 0
}
