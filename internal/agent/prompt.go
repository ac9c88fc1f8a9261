// internal/agent/prompt.go
package agent

import (
	"fmt"
	"strings"

	"github.com/ZevCorp/iu-screenagent/internal/schemas"
)

const behavioralRules = `Rules you must follow on every turn:
1. Call exactly one tool per turn. Never answer in plain text.
2. The screenshot is overlaid with a red coordinate grid. Grid labels are fractions of the screen: (0,0) is the top-left corner, (1,1) the bottom-right. Express every click position in these normalized coordinates.
3. Before typing into a field, you must have clicked that field in a PREVIOUS turn. Never click and type in the same turn.
4. Always inspect the new screenshot to verify your previous action had the intended visible effect before moving on. If the screen did not change as expected, try a different approach instead of repeating the same action.
5. Only interact with elements that are actually visible in the screenshot. Content may be scrolled out of view or hidden behind other windows; do not guess at off-screen positions.
6. When the goal is visibly accomplished on screen, call goal_reached with a short summary. Do not perform extra actions after that point.`

// systemPrompt renders the one system instruction turn that seeds a run.
func systemPrompt(req schemas.GoalRequest) string {
	var b strings.Builder
	b.WriteString("You are a screen automation agent controlling a real desktop with a mouse and keyboard.\n\n")
	fmt.Fprintf(&b, "Goal: %s\n", req.Goal)
	if req.TargetApplication != "" {
		fmt.Fprintf(&b, "Target application: %s\n", req.TargetApplication)
	}
	if req.StepHint != "" {
		fmt.Fprintf(&b, "Hint for the current step: %s\n", req.StepHint)
	}
	b.WriteString("\n")
	b.WriteString(behavioralRules)
	return b.String()
}

// progressPrompt renders the short text that accompanies each screenshot
// turn, including the running history of prior actions.
func progressPrompt(iteration int, history []schemas.IterationRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Iteration %d. Here is the current screen.\n", iteration)
	if len(history) > 0 {
		b.WriteString("Actions taken so far:\n")
		for _, rec := range history {
			b.WriteString(rec.String())
			b.WriteString("\n")
		}
	}
	b.WriteString("Decide the single next action that advances the goal, or call goal_reached if it is visibly done.")
	return b.String()
}
