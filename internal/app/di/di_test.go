package di_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fire_backend/internal/app/di"
	"fire_backend/internal/feature/firedetection/adapters"
	"fire_backend/internal/feature/firedetection/domain/entity"
	"fire_backend/internal/feature/firedetection/usecase"
	"fire_backend/internal/platform/config"
	"fire_backend/internal/platform/session"
)

func TestNewStateRepository(t *testing.T) {
	t.Run("success: redis available", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })

		repo := di.NewStateRepository(rdb, nil, entity.ModeHighSensitivity)
		assert.IsType(t, &session.StateRedis{}, repo)

		st, err := repo.RecordFire(context.Background(), "cam-1", "20260701_120000")
		require.NoError(t, err)
		assert.Equal(t, int64(1), st.FireCount)
		assert.Equal(t, entity.ModeHighSensitivity, st.Mode)
		assert.True(t, mr.Exists(di.StatePrefix+":cam-1"))
	})

	t.Run("success: falls back to database", func(t *testing.T) {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
		require.NoError(t, err)
		require.NoError(t, db.AutoMigrate(&adapters.SessionStateModel{}))

		repo := di.NewStateRepository(nil, db, entity.ModeHighSensitivity)
		_, isRedis := repo.(*session.StateRedis)
		assert.False(t, isRedis)

		st, err := repo.Get(context.Background(), "cam-1")
		require.NoError(t, err)
		assert.Equal(t, entity.ModeHighSensitivity, st.Mode)

		st, err = repo.SetMode(context.Background(), "cam-1", entity.ModeLowSensitivity)
		require.NoError(t, err)
		assert.Equal(t, entity.ModeLowSensitivity, st.Mode)
	})
}

func TestNewFireDetector_Heuristic(t *testing.T) {
	cfg := config.Config{Engine: config.EngineHeuristic, Thresholds: entity.DefaultThresholds()}

	d, closeFn, err := di.NewFireDetector(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &usecase.HeuristicDetector{}, d)
	assert.Equal(t, entity.SourceHeuristic, d.Name())
	assert.NoError(t, closeFn())
}

func TestNewDetectionOptions(t *testing.T) {
	t.Run("success: nothing configured", func(t *testing.T) {
		opts := di.NewDetectionOptions(context.Background(), config.Config{}, nil)
		assert.Empty(t, opts)
	})

	t.Run("success: cache and webhook", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })

		cfg := config.Config{WebhookURL: "http://127.0.0.1:9/hook"}
		opts := di.NewDetectionOptions(context.Background(), cfg, rdb)
		assert.Len(t, opts, 2)
	})
}
