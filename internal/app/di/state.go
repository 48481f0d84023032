// Package di provides dependency injection factories for creating application components.
package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"fire_backend/internal/feature/firedetection/adapters"
	"fire_backend/internal/feature/firedetection/domain/entity"
	"fire_backend/internal/feature/firedetection/usecase"
	"fire_backend/internal/platform/session"
)

// StatePrefix namespaces session state keys in Redis.
const StatePrefix = "fire:state"

// NewStateRepository creates a StateRepository implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the database.
// Sessions that never chose a mode report defaultMode.
func NewStateRepository(rdb *redis.Client, db *gorm.DB, defaultMode entity.Mode) usecase.StateRepository {
	if rdb != nil {
		return session.NewStateRedis(rdb, StatePrefix).WithDefaultMode(defaultMode)
	}
	return adapters.NewStateGorm(db).WithDefaultMode(defaultMode)
}
