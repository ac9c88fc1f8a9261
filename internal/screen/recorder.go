// internal/screen/recorder.go
package screen

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ZevCorp/iu-screenagent/internal/schemas"
)

var crosshairColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}

const crosshairArm = 15

// Recorder persists annotated screenshots of click decisions for offline
// calibration review. Nothing in the loop reads these back.
type Recorder struct {
	dir    string
	logger *zap.Logger
}

// NewRecorder creates the debug directory if needed.
func NewRecorder(dir string, logger *zap.Logger) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create debug directory %s: %w", dir, err)
	}
	return &Recorder{dir: dir, logger: logger.Named("recorder")}, nil
}

// RecordClick writes the pre-action frame overlaid with a crosshair at the
// denormalized pixel target, named by iteration and action type.
func (r *Recorder) RecordClick(frame *Frame, iteration int, kind schemas.ActionKind, px, py int) error {
	img := cloneRGBA(frame.Image)

	for dx := -crosshairArm; dx <= crosshairArm; dx++ {
		setPixel(img, px+dx, py, crosshairColor)
	}
	for dy := -crosshairArm; dy <= crosshairArm; dy++ {
		setPixel(img, px, py+dy, crosshairColor)
	}
	drawLabel(img, fmt.Sprintf("iter %d (%d,%d)", iteration, px, py), px+crosshairArm+4, py+4)

	encoded, err := EncodePNG(img)
	if err != nil {
		return fmt.Errorf("failed to encode debug frame: %w", err)
	}

	name := fmt.Sprintf("iter_%d_%s_%d_%d.png", iteration, kind, px, py)
	path := filepath.Join(r.dir, name)
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("failed to write debug artifact: %w", err)
	}

	r.logger.Debug("Wrote click calibration artifact", zap.String("path", path))
	return nil
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	out := image.NewRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	return out
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}
