// internal/actuate/executor.go
package actuate

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ZevCorp/iu-screenagent/internal/schemas"
)

// Input is the port for OS-level (or session-level) synthetic input.
// Implementations map the symbolic key enum to their own key codes.
type Input interface {
	MoveMouse(x, y int) error
	Click() error
	TypeText(text string) error
	KeyTap(key string) error
}

// Executor translates a decided tool call into synthetic input events.
// Actuation failures never abort a run: they are logged and the loop moves
// on, letting the model observe the unchanged screen and self-correct.
type Executor struct {
	input      Input
	hoverPause time.Duration
	logger     *zap.Logger
}

// NewExecutor wires an executor over the given input port. hoverPause is the
// brief wait between moving the pointer and pressing the button, so hover
// states settle before the click lands.
func NewExecutor(input Input, hoverPause time.Duration, logger *zap.Logger) *Executor {
	return &Executor{
		input:      input,
		hoverPause: hoverPause,
		logger:     logger.Named("executor"),
	}
}

// Execute performs one decision against the live screen. The returned error
// is informational only; callers are expected to continue the loop.
func (e *Executor) Execute(ctx context.Context, d schemas.ActionDecision, geo schemas.DisplayGeometry) error {
	switch d.Kind {
	case schemas.ActionClick:
		px, py := geo.Denormalize(d.XNorm, d.YNorm)
		e.logger.Info("Clicking",
			zap.Int("x", px), zap.Int("y", py),
			zap.Float64("x_norm", d.XNorm), zap.Float64("y_norm", d.YNorm),
			zap.String("label", d.Label),
		)
		if err := e.input.MoveMouse(px, py); err != nil {
			e.logger.Warn("Mouse move failed", zap.Error(err))
			return err
		}
		if err := sleepCtx(ctx, e.hoverPause); err != nil {
			return err
		}
		if err := e.input.Click(); err != nil {
			e.logger.Warn("Click failed", zap.Error(err))
			return err
		}

	case schemas.ActionTypeText:
		e.logger.Info("Typing text", zap.Int("length", len(d.Text)), zap.String("label", d.Label))
		if err := e.input.TypeText(d.Text); err != nil {
			e.logger.Warn("Text injection failed", zap.Error(err))
			return err
		}

	case schemas.ActionKeyPress:
		if !ValidKey(d.Key) {
			// Unknown key names are non-fatal: skip and let the model retry.
			e.logger.Warn("Unknown key name, skipping", zap.String("key", d.Key))
			return nil
		}
		e.logger.Info("Pressing key", zap.String("key", d.Key), zap.String("label", d.Label))
		if err := e.input.KeyTap(d.Key); err != nil {
			e.logger.Warn("Key press failed", zap.Error(err))
			return err
		}

	case schemas.ActionGoalReached:
		// Pure control signal; the controller terminates the loop.

	default:
		e.logger.Warn("Unknown action kind, skipping", zap.String("kind", string(d.Kind)))
	}
	return nil
}

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
