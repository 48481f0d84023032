package entity

import (
	"fmt"
	"math"

	"fire_backend/internal/feature/firedetection/domain"
)

// Thresholds はヒューリスティック分類器の3段階のしきい値です。
// 最小値はすべて境界を含みます（等しい値は合格）。
type Thresholds struct {
	// 色マスク: r > RedMin, g > GreenMin, b < BlueMax, r > g, g >= b
	RedMin   float64
	GreenMin float64
	BlueMax  float64
	// StrictGreenOverBlue がtrueならg > bを要求します。
	StrictGreenOverBlue bool

	MinFireRatio  float64
	MinBrightness float64
	// MinSpread は0で第3段階を無効にします。
	MinSpread float64
}

// DefaultThresholds はBalancedモードの既定値を返します。
func DefaultThresholds() Thresholds {
	return Thresholds{
		RedMin:        150,
		GreenMin:      80,
		BlueMax:       130,
		MinFireRatio:  0.01,
		MinBrightness: 120,
		MinSpread:     0.15,
	}
}

// Validate はしきい値が取りうる範囲に収まっているかを検証します。
func (t Thresholds) Validate() error {
	channels := []struct {
		name string
		v    float64
	}{
		{"red_min", t.RedMin},
		{"green_min", t.GreenMin},
		{"blue_max", t.BlueMax},
		{"min_brightness", t.MinBrightness},
	}
	for _, c := range channels {
		if math.IsNaN(c.v) || c.v < 0 || c.v > 255 {
			return fmt.Errorf("%w: %s=%v out of [0,255]", domain.ErrInvalidArgument, c.name, c.v)
		}
	}
	ratios := []struct {
		name string
		v    float64
	}{
		{"min_fire_ratio", t.MinFireRatio},
		{"min_spread", t.MinSpread},
	}
	for _, r := range ratios {
		if math.IsNaN(r.v) || r.v < 0 || r.v > 1 {
			return fmt.Errorf("%w: %s=%v out of [0,1]", domain.ErrInvalidArgument, r.name, r.v)
		}
	}
	return nil
}
