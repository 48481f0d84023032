// Package adapters はfiredetectionフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"fire_backend/internal/feature/firedetection/domain"
	"fire_backend/internal/feature/firedetection/domain/entity"
	"fire_backend/internal/feature/firedetection/usecase"
)

// pgUniqueViolation はPostgreSQLの一意制約違反コードです。
const pgUniqueViolation = "23505"

// eventGorm はEventRepositoryインターフェースのGORM実装です。
// SQLite（開発・テスト）とPostgreSQL（本番）の両方で動作します。
type eventGorm struct {
	db *gorm.DB
}

// eventGormがEventRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.EventRepository = (*eventGorm)(nil)

// NewEventGorm は指定されたgorm.DB接続でeventGormの新しいインスタンスを生成します。
func NewEventGorm(db *gorm.DB) *eventGorm {
	return &eventGorm{db: db}
}

// Create は火災イベントを保存します。
// 同じIDのイベントが既に存在する場合、domain.ErrEventExistsを返します。
func (r *eventGorm) Create(ctx context.Context, e *entity.FireEvent) error {
	if e == nil || e.ID == "" {
		return fmt.Errorf("%w: fire event id is required", domain.ErrInvalidArgument)
	}
	if err := r.db.WithContext(ctx).Create(FireEventModelFromEntity(e)).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrEventExists, e.ID)
		}
		return err
	}
	return nil
}

// FindByID はIDで火災イベントを取得します。
// 存在しない場合、domain.ErrEventNotFoundを返します。
func (r *eventGorm) FindByID(ctx context.Context, id string) (*entity.FireEvent, error) {
	var m FireEventModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrEventNotFound, id)
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
