// internal/screen/capture.go
package screen

import (
	"context"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/ZevCorp/iu-screenagent/internal/config"
	"github.com/ZevCorp/iu-screenagent/internal/schemas"
)

// Overlay is the capability handle for the assistant's own on-screen window.
// The capture path must never leave it hidden, whatever goes wrong.
type Overlay interface {
	Hide() error
	Show() error
}

// Display provides the display geometry and raw, physical-pixel captures.
type Display interface {
	Geometry() (schemas.DisplayGeometry, error)
	Capture() (image.Image, error)
}

// Frame is one annotated screenshot, ready to embed in a model turn.
type Frame struct {
	Image    *image.RGBA
	PNG      []byte
	Geometry schemas.DisplayGeometry
}

// Capturer orchestrates one hide -> settle -> capture -> show cycle and
// produces a grid-annotated frame at logical resolution.
type Capturer struct {
	overlay     Overlay
	display     Display
	settle      time.Duration
	gridSpacing float64
	logger      *zap.Logger
}

// NewCapturer wires a capturer from its ports and the screen configuration.
func NewCapturer(overlay Overlay, display Display, cfg config.ScreenConfig, logger *zap.Logger) *Capturer {
	return &Capturer{
		overlay:     overlay,
		display:     display,
		settle:      cfg.CaptureSettle,
		gridSpacing: cfg.GridSpacing,
		logger:      logger.Named("capturer"),
	}
}

// Capture hides the overlay, waits for the compositor to settle, grabs the
// screen, and restores the overlay on every exit path before returning the
// downscaled, grid-annotated frame.
func (c *Capturer) Capture(ctx context.Context) (*Frame, error) {
	geo, err := c.display.Geometry()
	if err != nil {
		return nil, fmt.Errorf("failed to read display geometry: %w", err)
	}

	if err := c.overlay.Hide(); err != nil {
		return nil, fmt.Errorf("failed to hide overlay window: %w", err)
	}
	defer func() {
		if err := c.overlay.Show(); err != nil {
			c.logger.Error("Failed to restore overlay window visibility", zap.Error(err))
		}
	}()

	if err := sleepCtx(ctx, c.settle); err != nil {
		return nil, err
	}

	raw, err := c.display.Capture()
	if err != nil {
		return nil, fmt.Errorf("screenshot capture failed: %w", err)
	}

	img := Annotate(raw, geo, c.gridSpacing)
	encoded, err := EncodePNG(img)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}

	c.logger.Debug("Captured frame",
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
		zap.Float64("scale", geo.Scale),
		zap.Int("png_bytes", len(encoded)),
	)

	return &Frame{Image: img, PNG: encoded, Geometry: geo}, nil
}

// NopOverlay satisfies Overlay for runs where no assistant window exists,
// such as CLI invocations or the CDP driver.
type NopOverlay struct{}

func (NopOverlay) Hide() error { return nil }
func (NopOverlay) Show() error { return nil }

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
