package entity

import (
	"fmt"

	"fire_backend/internal/feature/firedetection/domain"
)

// Mode は管理者が切り替える検出感度です。
type Mode string

const (
	ModeBalanced        Mode = "balanced"
	ModeHighSensitivity Mode = "high_sensitivity"
	ModeLowSensitivity  Mode = "low_sensitivity"
)

// DefaultMode は状態が存在しない場合のモードです。
const DefaultMode = ModeBalanced

// Modes は選択可能なモードを表示順に返します。
func Modes() []Mode {
	return []Mode{ModeBalanced, ModeHighSensitivity, ModeLowSensitivity}
}

// ParseMode は文字列からModeを解決します。
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidMode, s)
}

// Label は画面表示用の名称です。
func (m Mode) Label() string {
	switch m {
	case ModeHighSensitivity:
		return "High Sensitivity (Early Warning)"
	case ModeLowSensitivity:
		return "Low Sensitivity (Strict)"
	default:
		return "Balanced (Recommended)"
	}
}

// ModelConfidence はモデル検出器に渡す最低信頼度です。
func (m Mode) ModelConfidence() float64 {
	switch m {
	case ModeHighSensitivity:
		return 0.2
	case ModeLowSensitivity:
		return 0.6
	default:
		return 0.4
	}
}

// Thresholds はbaseを起点にモードごとのプリセットを適用します。
// Balancedはbaseをそのまま使います。Highはbaseより厳しくならず、Lowはbaseより緩くなりません。
func (m Mode) Thresholds(base Thresholds) Thresholds {
	switch m {
	case ModeHighSensitivity:
		base.MinFireRatio = min(base.MinFireRatio, highMinFireRatio)
	case ModeLowSensitivity:
		base.MinFireRatio = max(base.MinFireRatio, lowMinFireRatio)
		base.MinBrightness = max(base.MinBrightness, lowMinBrightness)
	}
	return base
}

const (
	highMinFireRatio = 0.005
	lowMinFireRatio  = 0.02
	lowMinBrightness = 150
)
