package di

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"fire_backend/internal/feature/firedetection/adapters/gemini"
	"fire_backend/internal/feature/firedetection/adapters/vision"
	"fire_backend/internal/feature/firedetection/adapters/webhook"
	"fire_backend/internal/feature/firedetection/usecase"
	"fire_backend/internal/platform/cache"
	"fire_backend/internal/platform/config"
	platformhttp "fire_backend/internal/platform/http"
	"fire_backend/internal/shared/ratelimiter"
)

// VerdictNamespace prefixes cached verdict keys.
const VerdictNamespace = "verdicts"

// NewFireDetector returns the detector selected by cfg.Engine and a function releasing its resources.
func NewFireDetector(ctx context.Context, cfg config.Config) (usecase.FireDetector, func() error, error) {
	switch cfg.Engine {
	case config.EngineVision:
		limiter := ratelimiter.NewRateLimiter(cfg.VisionRateLimit, time.Minute)
		d, err := vision.NewVisionFireDetector(ctx, limiter)
		if err != nil {
			return nil, nil, fmt.Errorf("create vision detector: %w", err)
		}
		return d, d.Close, nil
	default:
		return usecase.NewHeuristicDetector(cfg.Thresholds, cfg.RegionMode), func() error { return nil }, nil
	}
}

// NewDetectionOptions wires the optional collaborators of the detection usecase.
// Unavailable collaborators are skipped with a warning.
func NewDetectionOptions(ctx context.Context, cfg config.Config, rdb *redis.Client) []usecase.Option {
	var opts []usecase.Option

	if rdb != nil {
		opts = append(opts, usecase.WithCache(cache.NewVerdictCache(rdb, cfg.CacheTTL, VerdictNamespace)))
	}

	if cfg.GeminiEnabled {
		advisor, err := gemini.NewGeminiAdvisor(ctx)
		if err != nil {
			slog.Warn("Gemini unavailable. Running without advisories.", "error", err)
		} else {
			opts = append(opts, usecase.WithAdvisor(advisor))
		}
	}

	if cfg.WebhookURL != "" {
		client := platformhttp.NewHTTPClient(cfg.WebhookTimeout)
		opts = append(opts, usecase.WithNotifier(webhook.NewNotifier(client, cfg.WebhookURL, cfg.PublicBaseURL)))
	}

	return opts
}
