// internal/schemas/actions.go
package schemas

// ActionKind discriminates the tool call the model chose for one iteration.
type ActionKind string

const (
	ActionClick       ActionKind = "click"
	ActionTypeText    ActionKind = "type_text"
	ActionKeyPress    ActionKind = "key_press"
	ActionGoalReached ActionKind = "goal_reached"
)

// ActionDecision is the single decided tool call of one iteration. Only the
// fields relevant to Kind are populated; the zero value of the rest is
// ignored by the executor.
type ActionDecision struct {
	Kind ActionKind

	// Click: normalized [0,1] position on the logical screen.
	XNorm float64
	YNorm float64

	// TypeText.
	Text string

	// KeyPress: symbolic key name from the closed enum.
	Key string

	// GoalReached.
	Summary string

	// Human-readable trace fields. Logged, never interpreted.
	Label     string
	Reasoning string
}

// Summarize renders a one-line description of the decision for the running
// action history shown back to the model.
func (d ActionDecision) Summarize() string {
	switch d.Kind {
	case ActionClick:
		return "clicked \"" + d.Label + "\""
	case ActionTypeText:
		return "typed \"" + d.Text + "\" into \"" + d.Label + "\""
	case ActionKeyPress:
		return "pressed " + d.Key
	case ActionGoalReached:
		return "goal reached: " + d.Summary
	}
	return string(d.Kind)
}

// ToolParam describes one parameter of a declared tool in a vendor-neutral
// shape; backends translate it to their own schema dialect.
type ToolParam struct {
	Type        string
	Description string
	Enum        []string
}

// ToolDecl declares one callable operation exposed to the model.
type ToolDecl struct {
	Name        string
	Description string
	Params      map[string]ToolParam
	Required    []string
}

// KeyNames is the closed set of symbolic keys the model may press.
var KeyNames = []string{"enter", "tab", "escape", "backspace", "delete", "up", "down", "left", "right"}

// ActionTools declares the four operations of the action protocol. The label
// and reasoning fields exist for traceability only.
func ActionTools() []ToolDecl {
	return []ToolDecl{
		{
			Name:        string(ActionClick),
			Description: "Click the primary mouse button at a normalized screen position. (0,0) is the top-left corner, (1,1) the bottom-right.",
			Params: map[string]ToolParam{
				"x":         {Type: "number", Description: "Horizontal position as a fraction of screen width, 0.0 to 1.0."},
				"y":         {Type: "number", Description: "Vertical position as a fraction of screen height, 0.0 to 1.0."},
				"label":     {Type: "string", Description: "Short name of the UI element being clicked."},
				"reasoning": {Type: "string", Description: "Why this element advances the goal."},
			},
			Required: []string{"x", "y", "label", "reasoning"},
		},
		{
			Name:        string(ActionTypeText),
			Description: "Type literal text into the control that currently holds keyboard focus. Click the target field in a prior step first.",
			Params: map[string]ToolParam{
				"text":      {Type: "string", Description: "The exact text to type."},
				"label":     {Type: "string", Description: "Short name of the field receiving the text."},
				"reasoning": {Type: "string", Description: "Why this text advances the goal."},
			},
			Required: []string{"text", "label", "reasoning"},
		},
		{
			Name:        string(ActionKeyPress),
			Description: "Press a single special key.",
			Params: map[string]ToolParam{
				"key":       {Type: "string", Description: "Symbolic key name.", Enum: KeyNames},
				"label":     {Type: "string", Description: "Short name of the intent, e.g. 'submit form'."},
				"reasoning": {Type: "string", Description: "Why this key press advances the goal."},
			},
			Required: []string{"key", "label", "reasoning"},
		},
		{
			Name:        string(ActionGoalReached),
			Description: "Declare that the goal is visibly accomplished on screen.",
			Params: map[string]ToolParam{
				"summary": {Type: "string", Description: "What was accomplished, in one or two sentences."},
			},
			Required: []string{"summary"},
		},
	}
}

// DecisionFromToolCall maps a decoded tool call onto the internal decision
// shape shared by both backends.
func DecisionFromToolCall(name string, args map[string]any) ActionDecision {
	d := ActionDecision{Kind: ActionKind(name)}
	str := func(k string) string {
		v, _ := args[k].(string)
		return v
	}
	num := func(k string) float64 {
		switch v := args[k].(type) {
		case float64:
			return v
		case int:
			return float64(v)
		}
		return 0
	}
	d.Label = str("label")
	d.Reasoning = str("reasoning")
	switch d.Kind {
	case ActionClick:
		d.XNorm = num("x")
		d.YNorm = num("y")
	case ActionTypeText:
		d.Text = str("text")
	case ActionKeyPress:
		d.Key = str("key")
	case ActionGoalReached:
		d.Summary = str("summary")
	}
	return d
}
