// internal/screen/recorder_test.go
package screen

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ZevCorp/iu-screenagent/internal/schemas"
)

func TestRecordClickWritesArtifact(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir, zap.NewNop())
	require.NoError(t, err)

	frame := &Frame{
		Image:    grayRaster(320, 200),
		Geometry: schemas.DisplayGeometry{LogicalWidth: 320, LogicalHeight: 200, Scale: 1},
	}

	require.NoError(t, r.RecordClick(frame, 3, schemas.ActionClick, 160, 100))

	path := filepath.Join(dir, "iter_3_click_160_100.png")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())

	// The crosshair center pixel is painted solid red.
	rr, gg, bb, _ := img.At(160, 100).RGBA()
	assert.Equal(t, uint32(0xffff), rr)
	assert.Zero(t, gg)
	assert.Zero(t, bb)
}

func TestRecordClickClampsOutOfBoundsCrosshair(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir, zap.NewNop())
	require.NoError(t, err)

	frame := &Frame{Image: grayRaster(50, 50)}
	// A target at the image edge must not panic.
	require.NoError(t, r.RecordClick(frame, 1, schemas.ActionClick, 0, 0))
	assert.FileExists(t, filepath.Join(dir, "iter_1_click_0_0.png"))
}

func TestRecordClickLeavesSourceFrameUntouched(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir, zap.NewNop())
	require.NoError(t, err)

	frame := &Frame{Image: grayRaster(100, 100)}
	before := frame.Image.RGBAAt(50, 50)
	require.NoError(t, r.RecordClick(frame, 2, schemas.ActionClick, 50, 50))
	assert.Equal(t, before, frame.Image.RGBAAt(50, 50), "recorder must draw on a copy")
}

func TestNewRecorderBadDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err := NewRecorder(filepath.Join(file, "sub"), zap.NewNop())
	assert.Error(t, err)
}
