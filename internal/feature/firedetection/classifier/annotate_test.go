package classifier_test

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fire_backend/internal/feature/firedetection/classifier"
	"fire_backend/internal/feature/firedetection/domain"
	"fire_backend/internal/feature/firedetection/domain/entity"
)

func TestAnnotate_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	img := solid(120, 90, black)
	before := bytes.Clone(img.Pix)

	out, err := classifier.Annotate(img, nil)
	require.NoError(t, err)

	assert.Equal(t, before, img.Pix, "input pixels changed")
	assert.Equal(t, img.Bounds().Size(), out.Bounds().Size())
}

func TestAnnotate_DefaultRegionOutline(t *testing.T) {
	t.Parallel()

	img := solid(100, 100, black)
	out, err := classifier.Annotate(img, nil)
	require.NoError(t, err)

	// DefaultRegion -> (20,20)-(80,80)
	left := out.RGBAAt(20, 50)
	assert.Greater(t, left.R, uint8(200))
	assert.Less(t, left.G, uint8(50))

	right := out.RGBAAt(80, 50)
	assert.Greater(t, right.R, uint8(200))

	center := out.RGBAAt(50, 50)
	assert.Equal(t, uint8(0), center.R, "interior must stay untouched")
}

func TestAnnotate_CustomRegion(t *testing.T) {
	t.Parallel()

	img := solid(200, 100, black)
	region := entity.Region{X1: 0.5, Y1: 0.5, X2: 0.9, Y2: 0.9}
	out, err := classifier.Annotate(img, &region)
	require.NoError(t, err)

	assert.Greater(t, out.RGBAAt(100, 70).R, uint8(200))
	assert.Equal(t, uint8(0), out.RGBAAt(40, 50).R, "default region must not be drawn")
}

func TestAnnotate_NonZeroOrigin(t *testing.T) {
	t.Parallel()

	big := solid(100, 100, black)
	sub := big.SubImage(image.Rect(50, 50, 100, 100))

	out, err := classifier.Annotate(sub, nil)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 50, 50), out.Bounds())
}

func TestAnnotateAll(t *testing.T) {
	t.Parallel()

	img := solid(100, 100, black)
	out, err := classifier.AnnotateAll(img, []entity.Region{
		{X1: 0.1, Y1: 0.3, X2: 0.3, Y2: 0.5},
		{X1: 0.6, Y1: 0.6, X2: 0.9, Y2: 0.9},
	})
	require.NoError(t, err)
	assert.Greater(t, out.RGBAAt(10, 40).R, uint8(200))
	assert.Greater(t, out.RGBAAt(60, 75).R, uint8(200))
}

func TestAnnotate_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := classifier.Annotate(nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidImage)

	bad := entity.Region{X1: 0.8, Y1: 0.2, X2: 0.2, Y2: 0.8}
	_, err = classifier.Annotate(solid(10, 10, black), &bad)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
