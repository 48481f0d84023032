package entity

import "time"

// FireIDLayout は火災IDの書式です。同じ秒内の検出は同一イベントとして数えます。
const FireIDLayout = "20060102_150405"

// FireEvent は永続化された火災検出イベントです。
type FireEvent struct {
	ID             string
	FireID         string
	SessionID      string
	Source         string
	Mode           Mode
	Confidence     float64
	FireRatio      float64
	MeanBrightness float64
	FrameIndex     int
	// ImagePath は注釈付きJPEGの保存先です。
	ImagePath string
	// Advisory はAIが生成した避難アドバイスです（任意）。
	Advisory   string
	DetectedAt time.Time
}

// Verdict は1回のアップロードに対するフレーム走査の判定です。キャッシュ可能な単位です。
type Verdict struct {
	Detection Detection `json:"detection"`
	// FrameIndex は陽性となったフレーム、陰性なら最後に調べたフレームです。
	FrameIndex    int `json:"frame_index"`
	FramesScanned int `json:"frames_scanned"`
}

// Analysis は検出ユースケースの結果です。
type Analysis struct {
	Verdict
	// Event とState は陽性の場合のみ設定されます。
	Event *FireEvent
	State *SessionState
}
