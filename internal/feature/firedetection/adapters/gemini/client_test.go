package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fire_backend/internal/feature/firedetection/domain/entity"
)

func testEvent() *entity.FireEvent {
	return &entity.FireEvent{
		ID:         "evt-1",
		Source:     entity.SourceHeuristic,
		Mode:       entity.ModeHighSensitivity,
		Confidence: 0.876,
		DetectedAt: time.Date(2026, 7, 1, 9, 5, 0, 0, time.UTC),
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	prompt := BuildPrompt(testEvent())

	assert.Contains(t, prompt, "2026-07-01 09:05:00")
	assert.Contains(t, prompt, "detector: heuristic")
	assert.Contains(t, prompt, "High Sensitivity (Early Warning)")
	assert.Contains(t, prompt, "confidence: 88%")
}

func TestGeminiAdvisor_Advise(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		generate  generateFunc
		event     *entity.FireEvent
		want      string
		expectErr string
	}{
		{
			name: "success: trims generated text",
			generate: func(ctx context.Context, prompt string) (string, error) {
				return "  1. Leave now.\n", nil
			},
			event: testEvent(),
			want:  "1. Leave now.",
		},
		{
			name: "error: api failure",
			generate: func(ctx context.Context, prompt string) (string, error) {
				return "", errors.New("quota exceeded")
			},
			event:     testEvent(),
			expectErr: "gemini API request failed: quota exceeded",
		},
		{
			name:      "error: nil event",
			event:     nil,
			expectErr: "fire event is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := &GeminiAdvisor{generate: tt.generate}

			got, err := g.Advise(context.Background(), tt.event)
			if tt.expectErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
