// internal/actuate/native.go
package actuate

import (
	"context"
	"fmt"

	"github.com/go-vgo/robotgo"
	"go.uber.org/zap"
)

// NativeInput injects OS-level synthetic mouse and keyboard events on the
// local machine. All coordinates are logical pixels.
type NativeInput struct{}

func (NativeInput) MoveMouse(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func (NativeInput) Click() error {
	robotgo.Click("left", false)
	return nil
}

func (NativeInput) TypeText(text string) error {
	robotgo.TypeStr(text)
	return nil
}

func (NativeInput) KeyTap(key string) error {
	rk, ok := robotgoKeys[key]
	if !ok {
		return fmt.Errorf("no native mapping for key %q", key)
	}
	return robotgo.KeyTap(rk)
}

// NativeLauncher brings the target application to the foreground, launching
// it if necessary.
type NativeLauncher struct {
	logger *zap.Logger
}

func NewNativeLauncher(logger *zap.Logger) *NativeLauncher {
	return &NativeLauncher{logger: logger.Named("launcher")}
}

func (l *NativeLauncher) Activate(ctx context.Context, app string) error {
	if app == "" {
		return nil
	}
	l.logger.Info("Activating application", zap.String("app", app))
	if err := robotgo.ActiveName(app); err != nil {
		return fmt.Errorf("failed to activate %q: %w", app, err)
	}
	return nil
}
