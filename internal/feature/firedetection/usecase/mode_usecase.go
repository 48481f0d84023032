package usecase

import (
	"context"
	"fmt"

	"fire_backend/internal/feature/firedetection/domain/entity"
)

// modeUsecase は検出モードの参照と切り替えを扱います。
type modeUsecase struct {
	state StateRepository
}

// NewModeUsecase はmodeUsecaseの新しいインスタンスを生成します。
func NewModeUsecase(state StateRepository) *modeUsecase {
	return &modeUsecase{state: state}
}

// Status はセッションの現在の状態を返します。
func (u *modeUsecase) Status(ctx context.Context, sessionID string) (*entity.SessionState, error) {
	sessionID, err := entity.NormalizeSessionID(sessionID)
	if err != nil {
		return nil, err
	}
	st, err := u.state.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session state: %w", err)
	}
	return st, nil
}

// SetMode は検出モードを切り替えます。未知のモードはErrInvalidModeを返します。
func (u *modeUsecase) SetMode(ctx context.Context, sessionID, mode string) (*entity.SessionState, error) {
	m, err := entity.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	sessionID, err = entity.NormalizeSessionID(sessionID)
	if err != nil {
		return nil, err
	}
	st, err := u.state.SetMode(ctx, sessionID, m)
	if err != nil {
		return nil, fmt.Errorf("failed to set mode %s: %w", m, err)
	}
	return st, nil
}

// Modes は選択可能なモードの一覧です。
func (u *modeUsecase) Modes() []entity.Mode {
	return entity.Modes()
}
