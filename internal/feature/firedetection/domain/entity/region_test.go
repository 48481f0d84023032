package entity_test

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"fire_backend/internal/feature/firedetection/domain"
	"fire_backend/internal/feature/firedetection/domain/entity"
)

func TestRegion_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		region  entity.Region
		wantErr bool
	}{
		{"success: default", entity.DefaultRegion, false},
		{"success: full frame", entity.Region{X1: 0, Y1: 0, X2: 1, Y2: 1}, false},
		{"error: negative", entity.Region{X1: -0.1, Y1: 0, X2: 1, Y2: 1}, true},
		{"error: beyond one", entity.Region{X1: 0, Y1: 0, X2: 1.2, Y2: 1}, true},
		{"error: inverted x", entity.Region{X1: 0.8, Y1: 0.2, X2: 0.2, Y2: 0.8}, true},
		{"error: zero height", entity.Region{X1: 0.2, Y1: 0.5, X2: 0.8, Y2: 0.5}, true},
		{"error: NaN", entity.Region{X1: math.NaN(), Y1: 0, X2: 1, Y2: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.region.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidArgument)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegion_Rect(t *testing.T) {
	t.Parallel()

	assert.Equal(t, image.Rect(40, 20, 160, 80), entity.DefaultRegion.Rect(image.Rect(0, 0, 200, 100)))
	assert.Equal(t, image.Rect(30, 30, 90, 90), entity.DefaultRegion.Rect(image.Rect(10, 10, 110, 110)))
}

func TestRegionFromRect(t *testing.T) {
	t.Parallel()

	r, ok := entity.RegionFromRect(image.Rect(10, 20, 60, 70), image.Rect(0, 0, 100, 100))
	assert.True(t, ok)
	assert.Equal(t, entity.Region{X1: 0.1, Y1: 0.2, X2: 0.6, Y2: 0.7}, r)

	_, ok = entity.RegionFromRect(image.Rectangle{}, image.Rect(0, 0, 100, 100))
	assert.False(t, ok)
}

func TestParseRegionMode(t *testing.T) {
	t.Parallel()

	m, err := entity.ParseRegionMode("")
	assert.NoError(t, err)
	assert.Equal(t, entity.RegionModeStatic, m)

	m, err = entity.ParseRegionMode("mask")
	assert.NoError(t, err)
	assert.Equal(t, entity.RegionModeMask, m)

	_, err = entity.ParseRegionMode("tight")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
