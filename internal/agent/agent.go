// internal/agent/agent.go
package agent

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ZevCorp/iu-screenagent/internal/config"
	"github.com/ZevCorp/iu-screenagent/internal/gateway"
	"github.com/ZevCorp/iu-screenagent/internal/schemas"
	"github.com/ZevCorp/iu-screenagent/internal/screen"
)

// Capturer produces one annotated frame per call.
type Capturer interface {
	Capture(ctx context.Context) (*screen.Frame, error)
}

// Actor executes one decided action against the live screen.
type Actor interface {
	Execute(ctx context.Context, d schemas.ActionDecision, geo schemas.DisplayGeometry) error
}

// Launcher brings the target application (or page) to the foreground.
type Launcher interface {
	Activate(ctx context.Context, target string) error
}

// ClickRecorder persists click-calibration artifacts. Optional.
type ClickRecorder interface {
	RecordClick(frame *screen.Frame, iteration int, kind schemas.ActionKind, px, py int) error
}

// Deps bundles the collaborators a ScreenAgent drives.
type Deps struct {
	Gateway  gateway.Gateway
	Capturer Capturer
	Executor Actor
	Launcher Launcher
	Overlay  screen.Overlay
	Recorder ClickRecorder
	Bus      *EventBus
	Logger   *zap.Logger
}

// ScreenAgent runs the bounded perceive-decide-act loop. One run at a time:
// a second StartAction while one is in flight is rejected, not queued.
type ScreenAgent struct {
	deps Deps
	cfg  config.AgentConfig

	running atomic.Bool
	mu      sync.Mutex
	cancel  context.CancelFunc

	logger *zap.Logger
}

// NewScreenAgent wires a controller. Nil Recorder disables debug artifacts;
// a nil Overlay defaults to a no-op.
func NewScreenAgent(deps Deps, cfg config.AgentConfig) *ScreenAgent {
	if deps.Overlay == nil {
		deps.Overlay = screen.NopOverlay{}
	}
	if deps.Bus == nil {
		deps.Bus = NewEventBus(deps.Logger, 0)
	}
	return &ScreenAgent{
		deps:   deps,
		cfg:    cfg,
		logger: deps.Logger.Named("screen_agent"),
	}
}

// StopAction requests cancellation of the in-flight run, if any. The run
// observes it at its next suspension point and exits as Stopped.
func (a *ScreenAgent) StopAction() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
}

// StartAction runs the action loop to a terminal state and returns its
// result. It blocks for the duration of the run; callers wanting overlap
// with a UI run it on their own goroutine.
func (a *ScreenAgent) StartAction(ctx context.Context, req schemas.GoalRequest) schemas.LoopResult {
	if !a.running.CompareAndSwap(false, true) {
		a.logger.Warn("Rejecting concurrent action request", zap.String("goal", req.Goal))
		return schemas.LoopResult{Success: false, Error: "already executing"}
	}
	defer a.running.Store(false)

	runCtx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.cancel = nil
		a.mu.Unlock()
		cancel()
	}()

	// Loop-level visibility release. The capturer restores the overlay per
	// capture; this covers every other exit path.
	defer func() {
		if err := a.deps.Overlay.Show(); err != nil {
			a.logger.Error("Failed to restore overlay at loop exit", zap.Error(err))
		}
	}()

	result := a.run(runCtx, req)
	a.logger.Info("Action loop finished",
		zap.Bool("success", result.Success),
		zap.Int("iterations", result.IterationsUsed),
		zap.String("error", result.Error),
	)
	return result
}

func (a *ScreenAgent) run(ctx context.Context, req schemas.GoalRequest) schemas.LoopResult {
	a.publish(schemas.PhaseStarting, map[string]any{"goal": req.Goal, "app": req.TargetApplication})

	if req.TargetApplication != "" && a.deps.Launcher != nil {
		if err := a.deps.Launcher.Activate(ctx, req.TargetApplication); err != nil {
			// The app may already be frontmost, or the model can recover by
			// clicking it; not fatal.
			a.logger.Warn("Failed to activate target application",
				zap.String("app", req.TargetApplication), zap.Error(err))
		}
		if err := sleepCtx(ctx, a.cfg.LaunchSettle); err != nil {
			return a.stopped(0)
		}
	}

	msgs := []schemas.Message{schemas.TextMessage(schemas.RoleSystem, systemPrompt(req))}
	tools := schemas.ActionTools()
	var history []schemas.IterationRecord

	for iteration := 1; iteration <= a.cfg.MaxIterations; iteration++ {
		if ctx.Err() != nil {
			return a.stopped(iteration - 1)
		}

		a.publish(schemas.PhaseAnalyzing, map[string]any{"iteration": iteration})

		frame, err := a.deps.Capturer.Capture(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return a.stopped(iteration - 1)
			}
			return a.failed(iteration-1, "screen capture failed: "+err.Error())
		}

		msgs = append(msgs, schemas.Message{
			Role:  schemas.RoleUser,
			Parts: []schemas.Part{{Text: progressPrompt(iteration, history), ImagePNG: frame.PNG}},
		})

		decision, assistant, err := a.deps.Gateway.Decide(ctx, msgs, tools)
		if err != nil {
			switch {
			case errors.Is(err, gateway.ErrNoToolCall):
				a.logger.Warn("Model returned no tool call, ending run", zap.Int("iteration", iteration))
				a.publish(schemas.PhaseIncomplete, map[string]any{"iteration": iteration, "reason": "no_tool_call"})
				return schemas.LoopResult{Success: false, IterationsUsed: iteration, Error: "model returned no tool call"}
			case errors.Is(err, context.Canceled):
				return a.stopped(iteration)
			default:
				return a.failed(iteration, "reasoning request failed: "+err.Error())
			}
		}

		msgs = append(msgs, assistant)
		msgs = append(msgs, toolResultTurn(assistant, decision))
		history = append(history, schemas.IterationRecord{Index: iteration, ActionSummary: decision.Summarize()})

		if decision.Kind == schemas.ActionGoalReached {
			a.logger.Info("Goal reached", zap.Int("iterations", iteration), zap.String("summary", decision.Summary))
			a.publish(schemas.PhaseCompleted, map[string]any{"iterations": iteration, "summary": decision.Summary})
			return schemas.LoopResult{Success: true, IterationsUsed: iteration}
		}

		a.publish(schemas.PhaseActing, map[string]any{"iteration": iteration, "action": decision.Summarize()})

		if decision.Kind == schemas.ActionClick && a.deps.Recorder != nil {
			px, py := frame.Geometry.Denormalize(decision.XNorm, decision.YNorm)
			if err := a.deps.Recorder.RecordClick(frame, iteration, decision.Kind, px, py); err != nil {
				a.logger.Warn("Failed to persist debug artifact", zap.Error(err))
			}
		}

		if err := a.deps.Executor.Execute(ctx, decision, frame.Geometry); err != nil {
			if ctx.Err() != nil {
				return a.stopped(iteration)
			}
			// Already logged by the executor; the next capture shows the
			// model the unchanged screen.
			a.logger.Warn("Action execution failed, continuing", zap.Int("iteration", iteration), zap.Error(err))
		}

		settle := a.cfg.InputSettle
		if decision.Kind == schemas.ActionClick {
			settle = a.cfg.ClickSettle
		}
		if err := sleepCtx(ctx, settle); err != nil {
			return a.stopped(iteration)
		}

		msgs = pruneContext(msgs, a.cfg.MaxContextScreenshots)
	}

	a.logger.Info("Iteration budget exhausted", zap.Int("iterations", a.cfg.MaxIterations))
	a.publish(schemas.PhaseIncomplete, map[string]any{"iterations": a.cfg.MaxIterations, "reason": "budget_exhausted"})
	return schemas.LoopResult{Success: false, IterationsUsed: a.cfg.MaxIterations}
}

func (a *ScreenAgent) stopped(iterationsUsed int) schemas.LoopResult {
	a.publish(schemas.PhaseStopped, map[string]any{"iterations": iterationsUsed})
	return schemas.LoopResult{Success: false, IterationsUsed: iterationsUsed, Error: "stopped"}
}

func (a *ScreenAgent) failed(iterationsUsed int, msg string) schemas.LoopResult {
	a.publish(schemas.PhaseError, map[string]any{"iterations": iterationsUsed, "error": msg})
	return schemas.LoopResult{Success: false, IterationsUsed: iterationsUsed, Error: msg}
}

func (a *ScreenAgent) publish(phase schemas.Phase, fields map[string]any) {
	a.deps.Bus.Publish(Event{Phase: phase, Fields: fields})
}

// toolResultTurn builds the acknowledgment turn paired with the assistant's
// call, so the replayed history stays well-formed for both backends.
func toolResultTurn(assistant schemas.Message, d schemas.ActionDecision) schemas.Message {
	id := ""
	if assistant.ToolCall != nil {
		id = assistant.ToolCall.ID
	}
	return schemas.Message{
		Role:       schemas.RoleTool,
		ToolCallID: id,
		ToolCall:   assistant.ToolCall,
		Parts:      []schemas.Part{{Text: "executed: " + d.Summarize()}},
	}
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
