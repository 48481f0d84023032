// Package classifier は色ヒューリスティックによる火災判定と、検出領域の注釈描画を提供します。
//
// すべての関数は純粋関数です。呼び出し間で状態を保持しないため、
// 動画フレームごとに繰り返し呼び出しても、並行に呼び出しても同じ結果になります。
package classifier

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"fire_backend/internal/feature/firedetection/domain"
	"fire_backend/internal/feature/firedetection/domain/entity"
)

const (
	// confidenceRatioWeight は信頼度計算における面積比の重みです。
	confidenceRatioWeight = 20.0
	maxChannel            = 255.0
)

// FireMask は火災色と判定されたピクセルの真偽グリッドです。
type FireMask struct {
	Width  int
	Height int
	Count  int
	cells  []bool
}

// At は(x, y)が火災色ならtrueを返します。範囲外はfalseです。
func (m *FireMask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.cells[y*m.Width+x]
}

// Ratio は全ピクセルに対する火災色ピクセルの割合です。
func (m *FireMask) Ratio() float64 {
	return float64(m.Count) / float64(m.Width*m.Height)
}

// scanResult は1回の走査で集計した値です。
type scanResult struct {
	width, height int
	count         int
	brightnessSum float64
	rows, cols    int
	bounds        image.Rectangle
}

// FromRGB は高さ×幅×3のRGBバイト列を画像に変換します。
// 長さがwidth*height*3でない場合はErrInvalidArgumentを返します。
func FromRGB(width, height int, pix []byte) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: zero-area raster %dx%d", domain.ErrInvalidImage, width, height)
	}
	if len(pix) != width*height*3 {
		return nil, fmt.Errorf("%w: expected %d bytes for %dx%dx3 raster, got %d",
			domain.ErrInvalidArgument, width*height*3, width, height, len(pix))
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i < len(pix); i, j = i+3, j+4 {
		img.Pix[j] = pix[i]
		img.Pix[j+1] = pix[i+1]
		img.Pix[j+2] = pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img, nil
}

// Classify は画像が火災を写しているかを3段階で判定します。
//
//  1. 色マスク: 火災色ピクセルの面積比がMinFireRatio以上
//  2. 輝度: 火災色ピクセルの平均輝度がMinBrightness以上
//  3. 空間的広がり: 火災色を含む行・列の割合がどちらもMinSpread以上
//
// 画像がnilまたは面積ゼロの場合はErrInvalidImageを返します。それ以外で失敗することはありません。
func Classify(img image.Image, th entity.Thresholds) (entity.ClassifierResult, error) {
	if err := th.Validate(); err != nil {
		return entity.ClassifierResult{}, err
	}
	src, err := normalize(img)
	if err != nil {
		return entity.ClassifierResult{}, err
	}

	s := scan(src, th, nil)

	res := entity.ClassifierResult{
		FireRatio:   float64(s.count) / float64(s.width*s.height),
		FailedStage: entity.StageColor,
	}
	if s.count > 0 {
		res.MeanBrightness = s.brightnessSum / float64(s.count)
		res.RowSpread = float64(s.rows) / float64(s.height)
		res.ColSpread = float64(s.cols) / float64(s.width)
		res.MaskBounds = s.bounds
	}
	res.Confidence = Confidence(res.FireRatio, res.MeanBrightness)

	switch {
	case s.count == 0 || res.FireRatio < th.MinFireRatio:
		res.FailedStage = entity.StageColor
	case res.MeanBrightness < th.MinBrightness:
		res.FailedStage = entity.StageBrightness
	case th.MinSpread > 0 && (res.RowSpread < th.MinSpread || res.ColSpread < th.MinSpread):
		res.FailedStage = entity.StageSpread
	default:
		res.IsFire = true
		res.FailedStage = entity.StageNone
	}
	return res, nil
}

// Mask は画像の火災マスクを計算します。
func Mask(img image.Image, th entity.Thresholds) (*FireMask, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	src, err := normalize(img)
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	m := &FireMask{Width: b.Dx(), Height: b.Dy(), cells: make([]bool, b.Dx()*b.Dy())}
	s := scan(src, th, m.cells)
	m.Count = s.count
	return m, nil
}

// Confidence は面積比と平均輝度から信頼度を算出します。
// 校正された値ではありませんが、両方の入力に対して単調増加です。
func Confidence(fireRatio, meanBrightness float64) float64 {
	return math.Min(1.0, fireRatio*confidenceRatioWeight+meanBrightness/maxChannel)
}

// IsFireColor は1ピクセルが火災色の条件を満たすかを判定します。
func IsFireColor(r, g, b float64, th entity.Thresholds) bool {
	if r <= th.RedMin || g <= th.GreenMin || b >= th.BlueMax || r <= g {
		return false
	}
	if th.StrictGreenOverBlue {
		return g > b
	}
	return g >= b
}

// scan は全ピクセルを1回走査して集計します。cellsがnilでなければマスクも書き込みます。
func scan(src *image.NRGBA, th entity.Thresholds, cells []bool) scanResult {
	b := src.Bounds()
	s := scanResult{width: b.Dx(), height: b.Dy()}
	colSeen := make([]bool, s.width)
	minX, minY, maxX, maxY := s.width, s.height, -1, -1

	for y := 0; y < s.height; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+s.width*4]
		rowHit := false
		for x := 0; x < s.width; x++ {
			r, g, bl := float64(row[x*4]), float64(row[x*4+1]), float64(row[x*4+2])
			if !IsFireColor(r, g, bl, th) {
				continue
			}
			s.count++
			s.brightnessSum += (r + g + bl) / 3
			rowHit = true
			if !colSeen[x] {
				colSeen[x] = true
				s.cols++
			}
			if cells != nil {
				cells[y*s.width+x] = true
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
		if rowHit {
			s.rows++
		}
	}
	if s.count > 0 {
		s.bounds = image.Rect(minX, minY, maxX+1, maxY+1)
	}
	return s
}

// normalize は画像を原点(0,0)の8bit非乗算RGBAに揃えます。
// 既に揃っている*image.NRGBAはコピーせずにそのまま読み取ります。
func normalize(img image.Image) (*image.NRGBA, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", domain.ErrInvalidImage)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: zero-area image %dx%d", domain.ErrInvalidImage, b.Dx(), b.Dy())
	}
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n, nil
	}
	return imaging.Clone(img), nil
}
