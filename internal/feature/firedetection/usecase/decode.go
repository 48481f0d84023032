package usecase

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"fire_backend/internal/feature/firedetection/domain"
)

const (
	// MaxPixels は1フレームあたりの最大画素数です（幅×高さ）。
	MaxPixels = 25_000_000
	// MaxGIFFrames はアニメーションGIFの最大フレーム数です。
	MaxGIFFrames = 300
	// MaxGIFPixels はアニメーションGIF全体の画素数の上限です（フレーム数×幅×高さ）。
	MaxGIFPixels = 50_000_000
)

var errTruncatedGIF = errors.New("gif: truncated block")

// frameSet はサンプリング対象のデコード済みフレームと元のフレーム番号です。
type frameSet struct {
	frames  []image.Image
	indices []int
}

// frame は元のフレーム番号に対応するフレームを返します。
func (s frameSet) frame(index int) (image.Image, bool) {
	for i, idx := range s.indices {
		if idx == index {
			return s.frames[i], true
		}
	}
	return nil, false
}

// decodeFrames は画像データをinterval枚ごとのフレームにデコードします。
// 静止画は1フレーム、アニメーションGIFは合成済みのフレームを返します。
// 画素数・フレーム数が上限を超える場合はデコード前にErrImageTooLargeを返します。
func decodeFrames(data []byte, interval int) (frameSet, error) {
	if interval < 1 {
		interval = 1
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return frameSet{}, fmt.Errorf("%w: %v", domain.ErrUnsupportedFormat, err)
	}
	pixels := int64(cfg.Width) * int64(cfg.Height)
	if pixels > MaxPixels {
		return frameSet{}, fmt.Errorf("%w: %dx%d exceeds %d pixels", domain.ErrImageTooLarge, cfg.Width, cfg.Height, MaxPixels)
	}

	if format == "gif" {
		n, err := gifFrameCount(data)
		if err != nil {
			return frameSet{}, fmt.Errorf("%w: %v", domain.ErrUnsupportedFormat, err)
		}
		if n > MaxGIFFrames {
			return frameSet{}, fmt.Errorf("%w: more than %d frames", domain.ErrImageTooLarge, MaxGIFFrames)
		}
		if int64(n)*pixels > MaxGIFPixels {
			return frameSet{}, fmt.Errorf("%w: %d frames of %dx%d", domain.ErrImageTooLarge, n, cfg.Width, cfg.Height)
		}
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return frameSet{}, fmt.Errorf("%w: %v", domain.ErrUnsupportedFormat, err)
		}
		return composeGIF(g, interval), nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return frameSet{}, fmt.Errorf("%w: %v", domain.ErrUnsupportedFormat, err)
	}
	return frameSet{frames: []image.Image{img}, indices: []int{0}}, nil
}

// composeGIF は差分フレームをキャンバスに重ね、interval枚ごとのフレームだけを複製します。
func composeGIF(g *gif.GIF, interval int) frameSet {
	canvas := image.NewRGBA(image.Rect(0, 0, g.Config.Width, g.Config.Height))
	var out frameSet
	for i, frame := range g.Image {
		var previous *image.RGBA
		disposal := byte(0)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			previous = cloneRGBA(canvas)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		if i%interval == 0 {
			out.frames = append(out.frames, cloneRGBA(canvas))
			out.indices = append(out.indices, i)
		}

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = previous
		}
	}
	return out
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

// gifFrameCount はGIFのブロック構造だけを読み、画像記述子の数を数えます。
// MaxGIFFramesを超えた時点で走査を打ち切ります。
func gifFrameCount(data []byte) (int, error) {
	const (
		headerLen      = 13
		blockExtension = 0x21
		blockImage     = 0x2C
		blockTrailer   = 0x3B
	)
	if len(data) < headerLen {
		return 0, errTruncatedGIF
	}
	pos := headerLen
	if flags := data[10]; flags&0x80 != 0 {
		pos += 3 << ((flags & 0x07) + 1)
	}

	n := 0
	for pos < len(data) {
		switch data[pos] {
		case blockExtension:
			pos += 2
		case blockImage:
			if pos+10 > len(data) {
				return 0, errTruncatedGIF
			}
			flags := data[pos+9]
			pos += 10
			if flags&0x80 != 0 {
				pos += 3 << ((flags & 0x07) + 1)
			}
			// LZW最小コードサイズ
			pos++
			n++
			if n > MaxGIFFrames {
				return n, nil
			}
		case blockTrailer:
			return n, nil
		default:
			return 0, fmt.Errorf("gif: unknown block 0x%02x", data[pos])
		}

		// データサブブロック列（サイズ0で終端）
		for {
			if pos >= len(data) {
				return 0, errTruncatedGIF
			}
			size := int(data[pos])
			pos++
			if size == 0 {
				break
			}
			pos += size
		}
	}
	return n, nil
}
