// Package vision はGoogle Cloud Vision APIを使用した火災検出クライアントを提供します。
package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"slices"
	"strings"
	"unicode"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"fire_backend/internal/feature/firedetection/domain"
	"fire_backend/internal/feature/firedetection/domain/entity"
	"fire_backend/internal/feature/firedetection/usecase"
	"fire_backend/internal/shared/ratelimiter"
)

const (
	// jpegQuality はAPIへ送信するフレームのJPEG品質です。
	jpegQuality = 90
	// MaxObjects はリクエストするラベル候補の最大数です。
	MaxObjects = 20
)

// fireTerms はラベル名・物体名のうち火災とみなす語です。
var fireTerms = []string{"fire", "flame", "smoke", "wildfire", "bonfire", "campfire"}

// annotateFunc はBatchAnnotateImagesの呼び出しを抽象化します（テスト用）。
type annotateFunc func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error)

// VisionFireDetector はGoogle Cloud Vision APIの物体検出とラベル検出で火災を判定します。
type VisionFireDetector struct {
	annotate annotateFunc
	limiter  ratelimiter.Limiter
	close    func() error
}

// VisionFireDetectorがFireDetectorを実装していることをコンパイル時に検証します。
var _ usecase.FireDetector = (*VisionFireDetector)(nil)

// NewVisionFireDetector はADCを使用してVisionFireDetectorの新しいインスタンスを生成します。
// limiterがnilの場合はレート制限を行いません。
func NewVisionFireDetector(ctx context.Context, limiter ratelimiter.Limiter) (*VisionFireDetector, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	annotate := func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		return client.BatchAnnotateImages(ctx, req)
	}
	return &VisionFireDetector{annotate: annotate, limiter: limiter, close: client.Close}, nil
}

// Close はVision APIクライアントを解放します。
func (v *VisionFireDetector) Close() error {
	if v.close == nil {
		return nil
	}
	return v.close()
}

// Name は検出器の識別子です。
func (v *VisionFireDetector) Name() string {
	return entity.SourceVision
}

// DetectFire はフレームをJPEGで送信し、モードの最低信頼度以上の火災ラベル・物体を集計します。
func (v *VisionFireDetector) DetectFire(ctx context.Context, img image.Image, mode entity.Mode) (entity.Detection, error) {
	if img == nil || img.Bounds().Empty() {
		return entity.Detection{}, fmt.Errorf("%w: empty frame", domain.ErrInvalidImage)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return entity.Detection{}, fmt.Errorf("failed to encode frame: %w", err)
	}

	if v.limiter != nil {
		if err := v.limiter.Wait(ctx); err != nil {
			return entity.Detection{}, err
		}
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: buf.Bytes()},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_OBJECT_LOCALIZATION, MaxResults: MaxObjects},
					{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: MaxObjects},
				},
			},
		},
	}

	resp, err := v.annotate(ctx, req)
	if err != nil {
		return entity.Detection{}, fmt.Errorf("%w: vision API request failed: %v", domain.ErrDetectorUnavailable, err)
	}

	det := entity.Detection{Source: entity.SourceVision}
	if len(resp.GetResponses()) == 0 {
		return det, nil
	}

	r := resp.GetResponses()[0]
	if r.GetError() != nil {
		return entity.Detection{}, fmt.Errorf("%w: vision API error: %s", domain.ErrDetectorUnavailable, r.GetError().GetMessage())
	}

	minScore := mode.ModelConfidence()
	for _, label := range r.GetLabelAnnotations() {
		score := float64(label.GetScore())
		if !isFireTerm(label.GetDescription()) || score < minScore {
			continue
		}
		det.IsFire = true
		det.Labels = append(det.Labels, label.GetDescription())
		det.Confidence = max(det.Confidence, score)
	}
	for _, obj := range r.GetLocalizedObjectAnnotations() {
		score := float64(obj.GetScore())
		if !isFireTerm(obj.GetName()) || score < minScore {
			continue
		}
		det.IsFire = true
		det.Labels = append(det.Labels, obj.GetName())
		det.Confidence = max(det.Confidence, score)
		if region, ok := regionFromPoly(obj.GetBoundingPoly()); ok {
			det.Regions = append(det.Regions, region)
		}
	}
	return det, nil
}

// isFireTerm は名前のいずれかの単語がfireTermsと一致するかを判定します。
func isFireTerm(name string) bool {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		if slices.Contains(fireTerms, w) {
			return true
		}
	}
	return false
}

// regionFromPoly は正規化頂点の外接矩形をRegionに変換します。
func regionFromPoly(poly *visionpb.BoundingPoly) (entity.Region, bool) {
	vs := poly.GetNormalizedVertices()
	if len(vs) == 0 {
		return entity.Region{}, false
	}
	r := entity.Region{X1: 1, Y1: 1}
	for _, p := range vs {
		x := clamp01(float64(p.GetX()))
		y := clamp01(float64(p.GetY()))
		r.X1, r.Y1 = min(r.X1, x), min(r.Y1, y)
		r.X2, r.Y2 = max(r.X2, x), max(r.Y2, y)
	}
	if r.Validate() != nil {
		return entity.Region{}, false
	}
	return r, true
}

func clamp01(v float64) float64 {
	return min(1, max(0, v))
}
