package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fire_backend/internal/feature/firedetection/domain/entity"
	"fire_backend/internal/feature/firedetection/usecase"
)

// SessionStateModel is the GORM model for the session_states table.
type SessionStateModel struct {
	SessionID  string    `gorm:"primaryKey;size:128"`
	FireCount  int64     `gorm:"not null;default:0"`
	LastFireID string    `gorm:"size:32;not null;default:''"`
	Mode       string    `gorm:"size:32;not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (SessionStateModel) TableName() string {
	return "session_states"
}

// ToEntity converts the GORM model to a domain entity.
// An empty mode column means the session never chose a mode and maps to defaultMode.
func (m *SessionStateModel) ToEntity(defaultMode entity.Mode) *entity.SessionState {
	mode := entity.Mode(m.Mode)
	if mode == "" {
		mode = defaultMode
	}
	return &entity.SessionState{
		SessionID:  m.SessionID,
		FireCount:  m.FireCount,
		LastFireID: m.LastFireID,
		Mode:       mode,
	}
}

// stateGorm はStateRepositoryのGORM実装です。Redisが使えない場合のフォールバックです。
type stateGorm struct {
	db          *gorm.DB
	defaultMode entity.Mode
}

var _ usecase.StateRepository = (*stateGorm)(nil)

// NewStateGorm は指定されたgorm.DB接続でstateGormの新しいインスタンスを生成します。
func NewStateGorm(db *gorm.DB) *stateGorm {
	return &stateGorm{db: db, defaultMode: entity.DefaultMode}
}

// WithDefaultMode はモード未選択のセッションに使うモードを設定します。
func (r *stateGorm) WithDefaultMode(mode entity.Mode) *stateGorm {
	if mode != "" {
		r.defaultMode = mode
	}
	return r
}

// Get はセッション状態を取得します。存在しない場合は既定モードのゼロ状態を返します。
func (r *stateGorm) Get(ctx context.Context, sessionID string) (*entity.SessionState, error) {
	var m SessionStateModel
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &entity.SessionState{SessionID: sessionID, Mode: r.defaultMode}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state for %s: %w", sessionID, err)
	}
	return m.ToEntity(r.defaultMode), nil
}

// RecordFire はfireIDが直前のIDと異なる場合だけ火災数を加算します。
// 条件付きUPDATE1文で判定するため、同時リクエストでも二重計上しません。
func (r *stateGorm) RecordFire(ctx context.Context, sessionID, fireID string) (*entity.SessionState, error) {
	var out *entity.SessionState
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.ensure(tx, sessionID); err != nil {
			return err
		}
		if err := tx.Model(&SessionStateModel{}).
			Where("session_id = ? AND last_fire_id <> ?", sessionID, fireID).
			Updates(map[string]any{
				"fire_count":   gorm.Expr("fire_count + 1"),
				"last_fire_id": fireID,
				"updated_at":   time.Now(),
			}).Error; err != nil {
			return err
		}
		var m SessionStateModel
		if err := tx.Where("session_id = ?", sessionID).First(&m).Error; err != nil {
			return err
		}
		out = m.ToEntity(r.defaultMode)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record fire for %s: %w", sessionID, err)
	}
	return out, nil
}

// SetMode はセッションの検出モードを保存します。
func (r *stateGorm) SetMode(ctx context.Context, sessionID string, mode entity.Mode) (*entity.SessionState, error) {
	var out *entity.SessionState
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.ensure(tx, sessionID); err != nil {
			return err
		}
		if err := tx.Model(&SessionStateModel{}).
			Where("session_id = ?", sessionID).
			Updates(map[string]any{"mode": string(mode), "updated_at": time.Now()}).Error; err != nil {
			return err
		}
		var m SessionStateModel
		if err := tx.Where("session_id = ?", sessionID).First(&m).Error; err != nil {
			return err
		}
		out = m.ToEntity(r.defaultMode)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set mode for %s: %w", sessionID, err)
	}
	return out, nil
}

// ensure は行が無ければ作成します。モードは空のまま保存し、読み出し時に既定モードを当てます。
func (r *stateGorm) ensure(tx *gorm.DB, sessionID string) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&SessionStateModel{
		SessionID: sessionID,
		UpdatedAt: time.Now(),
	}).Error
}
