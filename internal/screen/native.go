// internal/screen/native.go
package screen

import (
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"

	"github.com/ZevCorp/iu-screenagent/internal/schemas"
)

// NativeDisplay reads geometry and captures rasters from the primary OS
// display. Captures come back in physical pixels; the annotator brings them
// down to logical resolution.
type NativeDisplay struct{}

func (NativeDisplay) Geometry() (schemas.DisplayGeometry, error) {
	w, h := robotgo.GetScreenSize()
	if w <= 0 || h <= 0 {
		return schemas.DisplayGeometry{}, fmt.Errorf("invalid screen size %dx%d", w, h)
	}
	scale := robotgo.ScaleF()
	if scale <= 0 {
		scale = 1
	}
	return schemas.DisplayGeometry{LogicalWidth: w, LogicalHeight: h, Scale: scale}, nil
}

func (NativeDisplay) Capture() (image.Image, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return nil, fmt.Errorf("no active displays")
	}
	img, err := screenshot.CaptureRect(screenshot.GetDisplayBounds(0))
	if err != nil {
		return nil, fmt.Errorf("display capture failed: %w", err)
	}
	return img, nil
}
