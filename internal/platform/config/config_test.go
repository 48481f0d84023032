package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fire_backend/internal/feature/firedetection/domain/entity"
)

// TestLoad_Defaults は環境変数が未設定の場合に既定値が使われることを検証します。
func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"PORT", "DETECTION_ENGINE", "DETECTION_MODE", "REGION_MODE", "FIRE_RED_MIN",
		"FIRE_MIN_RATIO", "FIRE_MIN_SPREAD", "MAX_IMAGE_DIMENSION", "CACHE_TTL", "CORS_ENABLED",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, EngineHeuristic, cfg.Engine)
	assert.Equal(t, entity.DefaultMode, cfg.Mode)
	assert.Equal(t, entity.RegionModeStatic, cfg.RegionMode)
	assert.Equal(t, entity.DefaultThresholds(), cfg.Thresholds)
	assert.Equal(t, 1280, cfg.MaxImageDimension)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.CORSEnabled)
}

// TestLoad_Overrides は環境変数の値が反映されることを検証します。
func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DETECTION_ENGINE", "vision")
	t.Setenv("DETECTION_MODE", "low_sensitivity")
	t.Setenv("REGION_MODE", "mask")
	t.Setenv("FIRE_RED_MIN", "170")
	t.Setenv("FIRE_STRICT_GREEN", "true")
	t.Setenv("FIRE_MIN_SPREAD", "0")
	t.Setenv("FRAME_SAMPLE_INTERVAL", "10")
	t.Setenv("WEBHOOK_TIMEOUT", "2s")
	t.Setenv("PUBLIC_BASE_URL", "https://fire.example.com/")
	t.Setenv("GEMINI_ENABLED", "1")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, EngineVision, cfg.Engine)
	assert.Equal(t, entity.ModeLowSensitivity, cfg.Mode)
	assert.Equal(t, entity.RegionModeMask, cfg.RegionMode)
	assert.Equal(t, 170.0, cfg.Thresholds.RedMin)
	assert.True(t, cfg.Thresholds.StrictGreenOverBlue)
	assert.Zero(t, cfg.Thresholds.MinSpread)
	assert.Equal(t, 10, cfg.FrameSampleInterval)
	assert.Equal(t, 2*time.Second, cfg.WebhookTimeout)
	assert.Equal(t, "https://fire.example.com", cfg.PublicBaseURL)
	assert.True(t, cfg.GeminiEnabled)
}

// TestLoad_InvalidValuesFallBack は不正な値が既定値に戻ることを検証します。
func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DETECTION_ENGINE", "yolo")
	t.Setenv("DETECTION_MODE", "paranoid")
	t.Setenv("REGION_MODE", "circle")
	t.Setenv("MAX_IMAGE_DIMENSION", "-5")
	t.Setenv("CACHE_TTL", "soon")
	t.Setenv("CORS_ENABLED", "maybe")
	t.Setenv("FIRE_MIN_RATIO", "1.5")

	cfg := Load()

	assert.Equal(t, EngineHeuristic, cfg.Engine)
	assert.Equal(t, entity.DefaultMode, cfg.Mode)
	assert.Equal(t, entity.RegionModeStatic, cfg.RegionMode)
	assert.Equal(t, 1280, cfg.MaxImageDimension)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.CORSEnabled)
	assert.Equal(t, entity.DefaultThresholds(), cfg.Thresholds, "out-of-range thresholds reset to defaults")
}
