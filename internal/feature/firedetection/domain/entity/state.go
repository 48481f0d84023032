package entity

import (
	"fmt"

	"fire_backend/internal/feature/firedetection/domain"
)

// DefaultSessionID はX-Session-IDヘッダーが無い場合のセッションIDです。
const DefaultSessionID = "default"

// MaxSessionIDLength はセッションIDの最大バイト数です（session_states.session_idの列長）。
const MaxSessionIDLength = 128

// SessionState は呼び出し側（UIレイヤー）が所有するアプリケーション状態です。
// 分類器はこの構造体にアクセスしません。
type SessionState struct {
	SessionID  string
	FireCount  int64  // このセッションで検出した火災イベント数
	LastFireID string // 直前に数えた火災ID（秒単位のタイムスタンプ）
	Mode       Mode
}

// NormalizeSessionID は空のIDをDefaultSessionIDに置き換え、長すぎるIDを拒否します。
func NormalizeSessionID(id string) (string, error) {
	if id == "" {
		return DefaultSessionID, nil
	}
	if len(id) > MaxSessionIDLength {
		return "", fmt.Errorf("%w: session id longer than %d bytes", domain.ErrInvalidArgument, MaxSessionIDLength)
	}
	return id, nil
}
