// internal/screen/annotate.go
package screen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ZevCorp/iu-screenagent/internal/schemas"
)

const dashLength = 6

// gridColor is deliberately faint so the grid anchors fractional coordinate
// estimates without occluding UI content underneath.
var gridColor = color.RGBA{R: 255, G: 80, B: 80, A: 110}

// Annotate downscales a raw capture to logical resolution when the display
// is high-density and overlays the fractional reference grid.
func Annotate(raw image.Image, geo schemas.DisplayGeometry, spacing float64) *image.RGBA {
	img := toLogical(raw, geo)
	drawGrid(img, spacing)
	return img
}

// toLogical resamples physical-pixel captures down to the logical
// resolution. All normalization and every synthetic-input API operate in
// logical pixels, so skipping this step breaks the coordinate contract.
func toLogical(raw image.Image, geo schemas.DisplayGeometry) *image.RGBA {
	b := raw.Bounds()
	if !geo.Retina() || (b.Dx() == geo.LogicalWidth && b.Dy() == geo.LogicalHeight) {
		out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Draw(out, out.Bounds(), raw, b.Min, xdraw.Src)
		return out
	}
	out := image.NewRGBA(image.Rect(0, 0, geo.LogicalWidth, geo.LogicalHeight))
	xdraw.CatmullRom.Scale(out, out.Bounds(), raw, b, xdraw.Src, nil)
	return out
}

// drawGrid paints dashed vertical and horizontal lines at every multiple of
// spacing, each labeled with its fractional position (".1" .. ".9").
func drawGrid(img *image.RGBA, spacing float64) {
	if spacing <= 0 || spacing >= 1 {
		return
	}
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()

	for k := 1; float64(k)*spacing < 0.9999; k++ {
		frac := float64(k) * spacing
		label := fracLabel(frac)

		x := int(frac * float64(w))
		for y := 0; y < h; y++ {
			if (y/dashLength)%2 == 0 {
				blend(img, x, y, gridColor)
			}
		}
		drawLabel(img, label, x+3, 12)

		y := int(frac * float64(h))
		for xx := 0; xx < w; xx++ {
			if (xx/dashLength)%2 == 0 {
				blend(img, xx, y, gridColor)
			}
		}
		drawLabel(img, label, 3, y-3)
	}
}

// fracLabel renders 0.3 as ".3".
func fracLabel(frac float64) string {
	return strings.TrimPrefix(fmt.Sprintf("%.2g", frac), "0")
}

// blend alpha-composites c over the pixel at (x, y).
func blend(img *image.RGBA, x, y int, c color.RGBA) {
	if !image.Pt(x, y).In(img.Bounds()) {
		return
	}
	dst := img.RGBAAt(x, y)
	a := uint32(c.A)
	inv := 255 - a
	img.SetRGBA(x, y, color.RGBA{
		R: uint8((uint32(c.R)*a + uint32(dst.R)*inv) / 255),
		G: uint8((uint32(c.G)*a + uint32(dst.G)*inv) / 255),
		B: uint8((uint32(c.B)*a + uint32(dst.B)*inv) / 255),
		A: dst.A,
	})
}

func drawLabel(img *image.RGBA, text string, x, y int) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(gridColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// EncodePNG serializes an annotated frame.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
