package classifier

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"fire_backend/internal/feature/firedetection/domain"
	"fire_backend/internal/feature/firedetection/domain/entity"
)

const (
	// Label は検出矩形の上に描く文字列です。
	Label = "FIRE"

	boxLineWidth = 3.0
	labelSize    = 18.0
	labelOffset  = 10.0
)

// BoxColor は矩形とラベルの色です。
var BoxColor = color.RGBA{R: 0xff, A: 0xff}

var labelFont *truetype.Font

func init() {
	var err error
	labelFont, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// Annotate は画像のコピーに矩形と"FIRE"ラベルを描画して返します。
// regionがnilの場合はentity.DefaultRegionを使います。入力画像は変更しません。
func Annotate(img image.Image, region *entity.Region) (*image.RGBA, error) {
	r := entity.DefaultRegion
	if region != nil {
		r = *region
	}
	return AnnotateAll(img, []entity.Region{r})
}

// AnnotateAll は複数の矩形を1枚のコピーに描画します。
// 出力は入力と同じ幅・高さで、原点は(0,0)です。
func AnnotateAll(img image.Image, regions []entity.Region) (*image.RGBA, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", domain.ErrInvalidImage)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: zero-area image %dx%d", domain.ErrInvalidImage, b.Dx(), b.Dy())
	}
	for _, r := range regions {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	dc := gg.NewContextForRGBA(dst)
	dc.SetFontFace(truetype.NewFace(labelFont, &truetype.Options{Size: labelSize}))
	dc.SetColor(BoxColor)
	dc.SetLineWidth(boxLineWidth)

	for _, r := range regions {
		rect := r.Rect(dst.Bounds())
		dc.DrawRectangle(float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()))
		dc.Stroke()

		// 上端に余白が無い場合は矩形の内側に描く
		y := float64(rect.Min.Y) - labelOffset
		if y < labelSize {
			y = float64(rect.Min.Y) + labelSize + boxLineWidth
		}
		dc.DrawString(Label, float64(rect.Min.X)+boxLineWidth, y)
	}
	return dst, nil
}
