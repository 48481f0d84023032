// Package config loads service configuration from environment variables.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"fire_backend/internal/feature/firedetection/domain/entity"
)

// Engine selects the fire detector implementation.
type Engine string

const (
	EngineHeuristic Engine = "heuristic"
	EngineVision    Engine = "vision"
)

// Config holds every tunable of the fire detection service.
type Config struct {
	Port string

	Engine     Engine
	Mode       entity.Mode
	RegionMode entity.RegionMode
	Thresholds entity.Thresholds

	MaxImageDimension   int
	FrameSampleInterval int

	AlertsDir      string
	PublicBaseURL  string
	WebhookURL     string
	WebhookTimeout time.Duration

	// VisionRateLimit is calls per minute; 0 disables the limiter.
	VisionRateLimit int
	GeminiEnabled   bool
	CacheTTL        time.Duration
	CORSEnabled     bool

	LogLevel string
	LogFile  string
}

// Load reads the configuration from environment variables.
// Invalid values fall back to their defaults with a warning.
func Load() Config {
	th := entity.DefaultThresholds()
	th.RedMin = getFloat("FIRE_RED_MIN", th.RedMin)
	th.GreenMin = getFloat("FIRE_GREEN_MIN", th.GreenMin)
	th.BlueMax = getFloat("FIRE_BLUE_MAX", th.BlueMax)
	th.StrictGreenOverBlue = getBool("FIRE_STRICT_GREEN", th.StrictGreenOverBlue)
	th.MinFireRatio = getFloat("FIRE_MIN_RATIO", th.MinFireRatio)
	th.MinBrightness = getFloat("FIRE_MIN_BRIGHTNESS", th.MinBrightness)
	th.MinSpread = getFloat("FIRE_MIN_SPREAD", th.MinSpread)
	if err := th.Validate(); err != nil {
		slog.Warn("invalid fire thresholds, using defaults", "error", err)
		th = entity.DefaultThresholds()
	}

	cfg := Config{
		Port:                getString("PORT", "8080"),
		Engine:              EngineHeuristic,
		Mode:                entity.DefaultMode,
		RegionMode:          entity.RegionModeStatic,
		Thresholds:          th,
		MaxImageDimension:   getInt("MAX_IMAGE_DIMENSION", 1280),
		FrameSampleInterval: getInt("FRAME_SAMPLE_INTERVAL", 1),
		AlertsDir:           getString("ALERTS_DIR", "alerts"),
		PublicBaseURL:       strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		WebhookURL:          os.Getenv("WEBHOOK_URL"),
		WebhookTimeout:      getDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		VisionRateLimit:     getInt("VISION_RATE_LIMIT", 60),
		GeminiEnabled:       getBool("GEMINI_ENABLED", false),
		CacheTTL:            getDuration("CACHE_TTL", 10*time.Minute),
		CORSEnabled:         getBool("CORS_ENABLED", false),
		LogLevel:            getString("LOG_LEVEL", "info"),
		LogFile:             os.Getenv("LOG_FILE"),
	}

	switch e := Engine(getString("DETECTION_ENGINE", string(EngineHeuristic))); e {
	case EngineHeuristic, EngineVision:
		cfg.Engine = e
	default:
		slog.Warn("unknown DETECTION_ENGINE, using heuristic", "value", e)
	}

	if v := os.Getenv("DETECTION_MODE"); v != "" {
		m, err := entity.ParseMode(v)
		if err != nil {
			slog.Warn("invalid DETECTION_MODE, using default", "value", v, "error", err)
		} else {
			cfg.Mode = m
		}
	}

	if v := os.Getenv("REGION_MODE"); v != "" {
		rm, err := entity.ParseRegionMode(v)
		if err != nil {
			slog.Warn("invalid REGION_MODE, using static", "value", v, "error", err)
		} else {
			cfg.RegionMode = rm
		}
	}

	return cfg
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		slog.Warn("invalid integer env, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("invalid float env, using default", "key", key, "value", v, "default", def)
		return def
	}
	return f
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		slog.Warn("invalid duration env, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}
