package usecase

import (
	"context"
	"fmt"
	"image"

	"fire_backend/internal/feature/firedetection/domain"
	"fire_backend/internal/feature/firedetection/domain/entity"
)

// FrameFunc は1フレームを判定する関数です。
type FrameFunc func(ctx context.Context, frame image.Image) (entity.Detection, error)

// ScanFrames はinterval枚ごとにフレームを判定し、最初の陽性で停止します。
// 判定関数は毎回同じ意味で呼ばれ、呼び出し間で状態を持ち越しません。
func ScanFrames(ctx context.Context, frames []image.Image, interval int, detect FrameFunc) (entity.Verdict, error) {
	if len(frames) == 0 {
		return entity.Verdict{}, fmt.Errorf("%w: no frames", domain.ErrInvalidImage)
	}
	if interval < 1 {
		interval = 1
	}

	var v entity.Verdict
	for i := 0; i < len(frames); i += interval {
		if err := ctx.Err(); err != nil {
			return entity.Verdict{}, err
		}
		det, err := detect(ctx, frames[i])
		if err != nil {
			return entity.Verdict{}, fmt.Errorf("frame %d: %w", i, err)
		}
		v.Detection = det
		v.FrameIndex = i
		v.FramesScanned++
		if det.IsFire {
			break
		}
	}
	return v, nil
}
