// Package entity はfiredetectionフィーチャーのドメインモデルを定義します。
package entity

import (
	"fmt"
	"image"
	"math"

	"fire_backend/internal/feature/firedetection/domain"
)

// Region は画像の幅・高さに対する比率で表した矩形です（0.0 ~ 1.0）。
type Region struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// DefaultRegion は中央20%〜80%を覆う固定の矩形です。
// 分類器はマスクから矩形を計算しないため、通常はこの矩形が描画されます。
var DefaultRegion = Region{X1: 0.2, Y1: 0.2, X2: 0.8, Y2: 0.8}

// Validate は比率が[0,1]に収まり、左上が右下より小さいことを検証します。
func (r Region) Validate() error {
	for _, v := range []float64{r.X1, r.Y1, r.X2, r.Y2} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: region fraction %v out of [0,1]", domain.ErrInvalidArgument, v)
		}
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return fmt.Errorf("%w: region corners are inverted", domain.ErrInvalidArgument)
	}
	return nil
}

// Rect は比率をboundsのピクセル座標に変換します。
func (r Region) Rect(bounds image.Rectangle) image.Rectangle {
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	return image.Rect(
		bounds.Min.X+int(r.X1*w),
		bounds.Min.Y+int(r.Y1*h),
		bounds.Min.X+int(r.X2*w),
		bounds.Min.Y+int(r.Y2*h),
	)
}

// RegionFromRect はピクセル矩形をbounds基準の比率に変換します。
// 空の矩形や面積ゼロのboundsではfalseを返します。
func RegionFromRect(rect, bounds image.Rectangle) (Region, bool) {
	if rect.Empty() || bounds.Empty() {
		return Region{}, false
	}
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	return Region{
		X1: float64(rect.Min.X-bounds.Min.X) / w,
		Y1: float64(rect.Min.Y-bounds.Min.Y) / h,
		X2: float64(rect.Max.X-bounds.Min.X) / w,
		Y2: float64(rect.Max.Y-bounds.Min.Y) / h,
	}, true
}

// RegionMode は注釈矩形の決め方です。
type RegionMode string

const (
	// RegionModeStatic は常にDefaultRegionを描画します。
	RegionModeStatic RegionMode = "static"
	// RegionModeMask は火災マスクの外接矩形を描画します（オプトイン）。
	RegionModeMask RegionMode = "mask"
)

// ParseRegionMode は文字列からRegionModeを解決します。
func ParseRegionMode(s string) (RegionMode, error) {
	switch RegionMode(s) {
	case RegionModeStatic, RegionModeMask:
		return RegionMode(s), nil
	case "":
		return RegionModeStatic, nil
	}
	return "", fmt.Errorf("%w: unknown region mode %q", domain.ErrInvalidArgument, s)
}
