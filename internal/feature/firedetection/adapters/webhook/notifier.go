// Package webhook は火災イベントをHTTP Webhookへ通知します。
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"fire_backend/internal/feature/firedetection/domain/entity"
	"fire_backend/internal/feature/firedetection/usecase"
)

// Label は通知ペイロードのラベルです。
const Label = "fire"

// Payload はWebhookに送信するJSONです。
type Payload struct {
	EventID       string  `json:"eventId"`
	Source        string  `json:"source"`
	SessionID     string  `json:"sessionId"`
	AlertImageURL string  `json:"alertImageURL"`
	Label         string  `json:"label"`
	Confidence    float64 `json:"confidence"`
	Mode          string  `json:"mode"`
	Advisory      string  `json:"advisory,omitempty"`
	Timestamp     string  `json:"timestamp"`
}

// Notifier はWebhook URLへ火災イベントをPOSTします。
type Notifier struct {
	client *http.Client
	url    string
	// imageBaseURL はアラート画像URLの組み立てに使う公開ベースURLです。
	imageBaseURL string
}

var _ usecase.Notifier = (*Notifier)(nil)

// NewNotifier はNotifierの新しいインスタンスを生成します。
// clientにはplatform/http.NewHTTPClientで作成したタイムアウト付きクライアントを渡します。
func NewNotifier(client *http.Client, url, imageBaseURL string) *Notifier {
	return &Notifier{client: client, url: url, imageBaseURL: imageBaseURL}
}

// NewPayload はイベントから通知ペイロードを組み立てます。
func (n *Notifier) NewPayload(e *entity.FireEvent) Payload {
	return Payload{
		EventID:       e.ID,
		Source:        e.Source,
		SessionID:     e.SessionID,
		AlertImageURL: fmt.Sprintf("%s/v1/fire/alerts/%s/image", n.imageBaseURL, e.ID),
		Label:         Label,
		Confidence:    e.Confidence,
		Mode:          string(e.Mode),
		Advisory:      e.Advisory,
		Timestamp:     e.DetectedAt.Format(time.RFC3339),
	}
}

// Notify はイベントをJSONでPOSTします。2xx以外の応答はエラーです。
func (n *Notifier) Notify(ctx context.Context, e *entity.FireEvent) error {
	body, err := json.Marshal(n.NewPayload(e))
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
