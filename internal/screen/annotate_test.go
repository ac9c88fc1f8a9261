// internal/screen/annotate_test.go
package screen

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZevCorp/iu-screenagent/internal/schemas"
)

func grayRaster(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	gray := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, gray)
		}
	}
	return img
}

func TestAnnotateRetinaDownscale(t *testing.T) {
	geo := schemas.DisplayGeometry{LogicalWidth: 1440, LogicalHeight: 900, Scale: 2}
	raw := grayRaster(2880, 1800)

	img := Annotate(raw, geo, 0.1)

	require.Equal(t, 1440, img.Bounds().Dx())
	require.Equal(t, 900, img.Bounds().Dy())

	// Vertical grid lines land on multiples of 144 (10% of 1440). The dash
	// pattern paints the first dashLength rows of every line.
	base := img.RGBAAt(100, 50)
	for _, x := range []int{144, 288, 432, 720, 1296} {
		assert.NotEqual(t, base, img.RGBAAt(x, 2), "expected grid line at x=%d", x)
	}
	// Horizontal lines at multiples of 90.
	for _, y := range []int{90, 450, 810} {
		assert.NotEqual(t, base, img.RGBAAt(2, y), "expected grid line at y=%d", y)
	}
	// Off-grid interior pixels keep the source color.
	assert.Equal(t, base, img.RGBAAt(200, 50))
}

func TestAnnotateStandardDensityKeepsDimensions(t *testing.T) {
	geo := schemas.DisplayGeometry{LogicalWidth: 1920, LogicalHeight: 1080, Scale: 1}
	img := Annotate(grayRaster(1920, 1080), geo, 0.1)
	assert.Equal(t, 1920, img.Bounds().Dx())
	assert.Equal(t, 1080, img.Bounds().Dy())
}

func TestFracLabel(t *testing.T) {
	assert.Equal(t, ".1", fracLabel(0.1))
	assert.Equal(t, ".3", fracLabel(0.30000000000000004))
	assert.Equal(t, ".9", fracLabel(0.9))
}

func TestEncodePNG(t *testing.T) {
	data, err := EncodePNG(grayRaster(10, 10))
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// PNG signature.
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data[:4])
}
