// Command firescan classifies local image files with the heuristic fire classifier.
//
// Usage:
//
//	firescan [-mode balanced|high_sensitivity|low_sensitivity] [-region static|mask] [-annotate dir] files...
//
// Thresholds are read from the same FIRE_* environment variables as the server.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"fire_backend/internal/feature/firedetection/classifier"
	"fire_backend/internal/feature/firedetection/domain/entity"
	"fire_backend/internal/platform/config"
)

func main() {
	_ = godotenv.Load(".env")
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	mode        entity.Mode
	regionMode  entity.RegionMode
	annotateDir string
	thresholds  entity.Thresholds
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()

	fs := flag.NewFlagSet("firescan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	mode := fs.String("mode", string(cfg.Mode), "detection mode: balanced, high_sensitivity, low_sensitivity")
	region := fs.String("region", string(cfg.RegionMode), "annotation region: static or mask")
	annotate := fs.String("annotate", "", "directory to write annotated PNGs for positive images")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: firescan [-mode m] [-region static|mask] [-annotate dir] files...")
		return 2
	}

	m, err := entity.ParseMode(*mode)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	rm, err := entity.ParseRegionMode(*region)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	opts := options{mode: m, regionMode: rm, annotateDir: *annotate, thresholds: m.Thresholds(cfg.Thresholds)}

	if opts.annotateDir != "" {
		if err := os.MkdirAll(opts.annotateDir, 0o755); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}

	fire := color.New(color.FgRed, color.Bold)
	calm := color.New(color.FgGreen)
	fail := color.New(color.FgYellow)

	code := 0
	for _, path := range fs.Args() {
		res, out, err := scanFile(path, opts)
		if err != nil {
			fail.Fprintf(stderr, "%s: %v\n", path, err)
			code = 1
			continue
		}

		verdict, c := "no fire", calm
		if res.IsFire {
			verdict, c = "FIRE", fire
		}
		c.Fprintf(stdout, "%-7s", verdict)
		fmt.Fprintf(stdout, " %s ratio=%.4f brightness=%.1f spread=%.2fx%.2f confidence=%.2f",
			path, res.FireRatio, res.MeanBrightness, res.RowSpread, res.ColSpread, res.Confidence)
		if !res.IsFire {
			fmt.Fprintf(stdout, " failed=%s", res.FailedStage)
		}
		if out != "" {
			fmt.Fprintf(stdout, " annotated=%s", out)
		}
		fmt.Fprintln(stdout)
	}
	return code
}

// closeInput closes a file opened for reading and logs a failure.
func closeInput(c io.Closer, path string) {
	if err := c.Close(); err != nil {
		slog.Warn("画像ファイルのクローズに失敗", "path", path, "error", err)
	}
}

// scanFile classifies one file and writes the annotated copy when requested.
func scanFile(path string, opts options) (entity.ClassifierResult, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return entity.ClassifierResult{}, "", err
	}
	defer closeInput(f, path)

	img, _, err := image.Decode(f)
	if err != nil {
		return entity.ClassifierResult{}, "", fmt.Errorf("decode: %w", err)
	}

	res, err := classifier.Classify(img, opts.thresholds)
	if err != nil {
		return entity.ClassifierResult{}, "", err
	}
	if !res.IsFire || opts.annotateDir == "" {
		return res, "", nil
	}

	var region *entity.Region
	if opts.regionMode == entity.RegionModeMask {
		b := img.Bounds()
		if r, ok := entity.RegionFromRect(res.MaskBounds, image.Rect(0, 0, b.Dx(), b.Dy())); ok {
			region = &r
		}
	}
	annotated, err := classifier.Annotate(img, region)
	if err != nil {
		return res, "", err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + "_fire.png"
	out := filepath.Join(opts.annotateDir, name)
	if err := writePNG(out, annotated); err != nil {
		return res, "", err
	}
	return res, out, nil
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return png.Encode(f, img)
}
