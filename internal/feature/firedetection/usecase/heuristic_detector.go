package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"

	"fire_backend/internal/feature/firedetection/classifier"
	"fire_backend/internal/feature/firedetection/domain/entity"
)

// HeuristicDetector は色ヒューリスティック分類器をFireDetectorとして公開します。
type HeuristicDetector struct {
	base       entity.Thresholds
	regionMode entity.RegionMode
}

var (
	_ FireDetector  = (*HeuristicDetector)(nil)
	_ Fingerprinter = (*HeuristicDetector)(nil)
)

// NewHeuristicDetector はHeuristicDetectorの新しいインスタンスを生成します。
// baseはBalancedモードのしきい値で、他のモードはここからプリセットを適用します。
func NewHeuristicDetector(base entity.Thresholds, regionMode entity.RegionMode) *HeuristicDetector {
	if regionMode == "" {
		regionMode = entity.RegionModeStatic
	}
	return &HeuristicDetector{base: base, regionMode: regionMode}
}

// Name は検出器の識別子です。
func (d *HeuristicDetector) Name() string {
	return entity.SourceHeuristic
}

// Fingerprint はしきい値と領域モードの短いハッシュです。設定が変わるとキャッシュキーも変わります。
func (d *HeuristicDetector) Fingerprint() string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%+v|%s", d.base, d.regionMode))
	return hex.EncodeToString(sum[:6])
}

// DetectFire は1フレームを分類します。
// RegionModeMaskのときだけマスクの外接矩形をRegionsに設定し、それ以外は呼び出し側が固定矩形を描きます。
func (d *HeuristicDetector) DetectFire(_ context.Context, img image.Image, mode entity.Mode) (entity.Detection, error) {
	res, err := classifier.Classify(img, mode.Thresholds(d.base))
	if err != nil {
		return entity.Detection{}, err
	}

	det := entity.Detection{
		IsFire:         res.IsFire,
		Confidence:     res.Confidence,
		Source:         entity.SourceHeuristic,
		FireRatio:      res.FireRatio,
		MeanBrightness: res.MeanBrightness,
	}
	if res.IsFire && d.regionMode == entity.RegionModeMask {
		b := img.Bounds()
		if r, ok := entity.RegionFromRect(res.MaskBounds, image.Rect(0, 0, b.Dx(), b.Dy())); ok {
			det.Regions = []entity.Region{r}
		}
	}
	return det, nil
}
