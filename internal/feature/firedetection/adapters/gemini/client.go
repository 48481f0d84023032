// Package gemini はGoogle Gemini APIを使用した火災アラートの助言生成クライアントを提供します。
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"fire_backend/internal/feature/firedetection/domain/entity"
	"fire_backend/internal/feature/firedetection/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
	// AdvisoryPromptTemplate は避難アドバイスのプロンプトテンプレートです。
	AdvisoryPromptTemplate = "A camera detected a possible fire at %s (detector: %s, sensitivity: %s, confidence: %.0f%%). " +
		"Give three short, numbered safety instructions for people nearby. Plain text only."
)

// generateFunc はテキスト生成の呼び出しを抽象化します（テスト用）。
type generateFunc func(ctx context.Context, prompt string) (string, error)

// GeminiAdvisor はGoogle Gemini APIを使用して避難アドバイスを生成します。
type GeminiAdvisor struct {
	generate generateFunc
}

// GeminiAdvisorがAdvisorを実装していることをコンパイル時に検証します。
var _ usecase.Advisor = (*GeminiAdvisor)(nil)

// NewGeminiAdvisor はADCを使用してGeminiAdvisorの新しいインスタンスを生成します。
// 環境変数 GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION が必要です。
func NewGeminiAdvisor(ctx context.Context) (*GeminiAdvisor, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiAdvisor{
		generate: func(ctx context.Context, prompt string) (string, error) {
			resp, err := client.Models.GenerateContent(ctx, DefaultModel, genai.Text(prompt), nil)
			if err != nil {
				return "", err
			}
			return resp.Text(), nil
		},
	}, nil
}

// Advise は火災イベントの内容から避難アドバイスを生成します。
func (g *GeminiAdvisor) Advise(ctx context.Context, event *entity.FireEvent) (string, error) {
	if event == nil {
		return "", fmt.Errorf("fire event is required")
	}
	text, err := g.generate(ctx, BuildPrompt(event))
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// BuildPrompt はイベントからプロンプトを組み立てます。
func BuildPrompt(event *entity.FireEvent) string {
	return fmt.Sprintf(AdvisoryPromptTemplate,
		event.DetectedAt.Format("2006-01-02 15:04:05"),
		event.Source,
		event.Mode.Label(),
		event.Confidence*100,
	)
}
