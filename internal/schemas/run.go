// internal/schemas/run.go
package schemas

import "fmt"

// GoalRequest is the immutable input of one loop invocation, produced by an
// external planner.
type GoalRequest struct {
	Goal              string
	TargetApplication string
	StepHint          string
}

// IterationRecord is one line of the running action history the model sees
// on subsequent turns.
type IterationRecord struct {
	Index         int
	ActionSummary string
}

func (r IterationRecord) String() string {
	return fmt.Sprintf("%d. %s", r.Index, r.ActionSummary)
}

// Phase identifies a lifecycle state of the action loop.
type Phase string

const (
	PhaseStarting   Phase = "starting"
	PhaseAnalyzing  Phase = "analyzing"
	PhaseActing     Phase = "acting"
	PhaseCompleted  Phase = "completed"
	PhaseIncomplete Phase = "incomplete"
	PhaseError      Phase = "error"
	PhaseStopped    Phase = "stopped"
)

// LoopResult is the terminal output of one run. Success implies the model
// declared the goal reached; IterationsUsed never exceeds the configured
// iteration budget.
type LoopResult struct {
	Success        bool
	IterationsUsed int
	Error          string
}
