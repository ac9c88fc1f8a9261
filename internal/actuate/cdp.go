// internal/actuate/cdp.go
package actuate

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/ZevCorp/iu-screenagent/internal/schemas"
)

// CDPSession drives a remote-controlled browser page over the Chrome
// DevTools Protocol. It satisfies both the screen Display port and the
// Input port, so the same action loop that pilots the desktop can pilot a
// browser session instead.
type CDPSession struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger

	mu sync.Mutex
	// Last pointer position, carried into the press/release pair.
	mouseX, mouseY float64
}

// NewCDPSession attaches to the DevTools endpoint at url, or launches a
// local headless browser when url is empty.
func NewCDPSession(parent context.Context, url string, logger *zap.Logger) (*CDPSession, error) {
	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
	)
	if url != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(parent, url)
	} else {
		allocCtx, allocCancel = chromedp.NewExecAllocator(parent, chromedp.DefaultExecAllocatorOptions[:]...)
	}

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(taskCtx); err != nil {
		taskCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser session: %w", err)
	}

	cancel := func() {
		taskCancel()
		allocCancel()
	}
	return &CDPSession{ctx: taskCtx, cancel: cancel, logger: logger.Named("cdp")}, nil
}

// Close tears down the browser session.
func (s *CDPSession) Close() {
	s.cancel()
}

// Geometry reads the viewport dimensions and pixel ratio from the page.
func (s *CDPSession) Geometry() (schemas.DisplayGeometry, error) {
	var vals []float64
	err := chromedp.Run(s.ctx,
		chromedp.Evaluate(`[window.innerWidth, window.innerHeight, window.devicePixelRatio]`, &vals),
	)
	if err != nil {
		return schemas.DisplayGeometry{}, fmt.Errorf("failed to read viewport geometry: %w", err)
	}
	if len(vals) != 3 || vals[0] <= 0 || vals[1] <= 0 {
		return schemas.DisplayGeometry{}, fmt.Errorf("invalid viewport geometry %v", vals)
	}
	scale := vals[2]
	if scale <= 0 {
		scale = 1
	}
	return schemas.DisplayGeometry{
		LogicalWidth:  int(vals[0]),
		LogicalHeight: int(vals[1]),
		Scale:         scale,
	}, nil
}

// Capture screenshots the visible viewport.
func (s *CDPSession) Capture() (image.Image, error) {
	var buf []byte
	if err := chromedp.Run(s.ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("viewport capture failed: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("failed to decode viewport capture: %w", err)
	}
	return img, nil
}

func (s *CDPSession) MoveMouse(x, y int) error {
	fx, fy := float64(x), float64(y)
	if err := chromedp.Run(s.ctx, chromedp.MouseEvent(input.MouseMoved, fx, fy)); err != nil {
		return fmt.Errorf("mouse move failed: %w", err)
	}
	s.mu.Lock()
	s.mouseX, s.mouseY = fx, fy
	s.mu.Unlock()
	return nil
}

func (s *CDPSession) Click() error {
	s.mu.Lock()
	fx, fy := s.mouseX, s.mouseY
	s.mu.Unlock()
	err := chromedp.Run(s.ctx,
		chromedp.MouseEvent(input.MousePressed, fx, fy, chromedp.Button("left"), chromedp.ClickCount(1)),
		chromedp.MouseEvent(input.MouseReleased, fx, fy, chromedp.Button("left"), chromedp.ClickCount(1)),
	)
	if err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func (s *CDPSession) TypeText(text string) error {
	if err := chromedp.Run(s.ctx, input.InsertText(text)); err != nil {
		return fmt.Errorf("text insertion failed: %w", err)
	}
	return nil
}

func (s *CDPSession) KeyTap(key string) error {
	k, ok := cdpKeys[key]
	if !ok {
		return fmt.Errorf("no CDP mapping for key %q", key)
	}
	err := chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		down := input.DispatchKeyEvent(input.KeyRawDown).
			WithKey(k.Key).
			WithWindowsVirtualKeyCode(k.VK)
		if err := down.Do(ctx); err != nil {
			return err
		}
		up := input.DispatchKeyEvent(input.KeyUp).
			WithKey(k.Key).
			WithWindowsVirtualKeyCode(k.VK)
		return up.Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("key press %q failed: %w", key, err)
	}
	return nil
}

// Activate navigates the session to the target, which in CDP mode is a URL
// rather than an application name.
func (s *CDPSession) Activate(ctx context.Context, target string) error {
	if target == "" {
		return nil
	}
	s.logger.Info("Navigating session", zap.String("url", target))
	if err := chromedp.Run(s.ctx, chromedp.Navigate(target)); err != nil {
		return fmt.Errorf("failed to navigate to %q: %w", target, err)
	}
	return nil
}
