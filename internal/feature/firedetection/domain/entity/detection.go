package entity

import "image"

// Stage は分類が失敗した段階を表します。
type Stage string

const (
	StageNone       Stage = "none"
	StageColor      Stage = "color"
	StageBrightness Stage = "brightness"
	StageSpread     Stage = "spread"
)

// ClassifierResult はヒューリスティック分類器の判定結果と診断値です。
type ClassifierResult struct {
	IsFire         bool
	Confidence     float64
	FireRatio      float64
	MeanBrightness float64
	RowSpread      float64
	ColSpread      float64
	FailedStage    Stage
	// MaskBounds は火災色ピクセルの外接矩形です。該当ピクセルが無ければ空です。
	MaskBounds image.Rectangle
}

// Detection は検出器（ヒューリスティックまたはモデル）の出力です。
type Detection struct {
	IsFire     bool     `json:"is_fire"`
	Confidence float64  `json:"confidence"`
	Source     string   `json:"source"`
	Labels     []string `json:"labels,omitempty"`
	Regions    []Region `json:"regions,omitempty"`

	// ヒューリスティック検出時のみ設定されます。
	FireRatio      float64 `json:"fire_ratio,omitempty"`
	MeanBrightness float64 `json:"mean_brightness,omitempty"`
}

const (
	SourceHeuristic = "heuristic"
	SourceVision    = "vision"
)
