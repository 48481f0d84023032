// Package dto はfiredetectionフィーチャーのHTTPリクエスト・レスポンス型を定義します。
package dto

import "time"

// ErrorResponse はエラー応答です。
type ErrorResponse struct {
	Error string `json:"error"`
}

// RegionResponse は画像サイズに対する比率で表した矩形です。
type RegionResponse struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// DetectionResponse は POST /v1/fire/detect の応答です。
type DetectionResponse struct {
	IsFire         bool             `json:"is_fire"`
	Confidence     float64          `json:"confidence"`
	Source         string           `json:"source"`
	Labels         []string         `json:"labels,omitempty"`
	Regions        []RegionResponse `json:"regions,omitempty"`
	FireRatio      float64          `json:"fire_ratio"`
	MeanBrightness float64          `json:"mean_brightness"`
	FrameIndex     int              `json:"frame_index"`
	FramesScanned  int              `json:"frames_scanned"`
	Event          *EventResponse   `json:"event,omitempty"`
	State          StateResponse    `json:"state"`
}

// EventResponse は記録された火災イベントです。
type EventResponse struct {
	ID         string    `json:"id"`
	FireID     string    `json:"fire_id"`
	ImageURL   string    `json:"image_url"`
	Advisory   string    `json:"advisory,omitempty"`
	DetectedAt time.Time `json:"detected_at"`
}

// StateResponse はセッションの状態です。
type StateResponse struct {
	SessionID  string `json:"session_id"`
	FireCount  int64  `json:"fire_count"`
	LastFireID string `json:"last_fire_id,omitempty"`
	Mode       string `json:"mode"`
	ModeLabel  string `json:"mode_label"`
}

// ModeRequest は PUT /v1/fire/mode のリクエストです。
type ModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// ModeResponse は選択可能なモードの1件です。
type ModeResponse struct {
	Mode            string  `json:"mode"`
	Label           string  `json:"label"`
	ModelConfidence float64 `json:"model_confidence"`
}
