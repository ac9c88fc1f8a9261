// internal/schemas/actions_test.go
package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionToolsDeclaration(t *testing.T) {
	tools := ActionTools()
	require.Len(t, tools, 4)

	names := make(map[string]ToolDecl, len(tools))
	for _, tl := range tools {
		names[tl.Name] = tl
	}

	require.Contains(t, names, "click")
	require.Contains(t, names, "type_text")
	require.Contains(t, names, "key_press")
	require.Contains(t, names, "goal_reached")

	// Every operation except goal_reached carries the trace fields.
	for _, name := range []string{"click", "type_text", "key_press"} {
		decl := names[name]
		assert.Contains(t, decl.Params, "label", name)
		assert.Contains(t, decl.Params, "reasoning", name)
		assert.Contains(t, decl.Required, "label", name)
	}

	assert.ElementsMatch(t, names["key_press"].Params["key"].Enum, KeyNames)
	assert.Equal(t, []string{"summary"}, names["goal_reached"].Required)
}

func TestDecisionFromToolCall(t *testing.T) {
	d := DecisionFromToolCall("click", map[string]any{
		"x": 0.42, "y": 0.9, "label": "5 key", "reasoning": "enters the digit",
	})
	assert.Equal(t, ActionClick, d.Kind)
	assert.Equal(t, 0.42, d.XNorm)
	assert.Equal(t, 0.9, d.YNorm)
	assert.Equal(t, "5 key", d.Label)

	d = DecisionFromToolCall("type_text", map[string]any{"text": "hello", "label": "search box"})
	assert.Equal(t, ActionTypeText, d.Kind)
	assert.Equal(t, "hello", d.Text)

	d = DecisionFromToolCall("key_press", map[string]any{"key": "enter"})
	assert.Equal(t, ActionKeyPress, d.Kind)
	assert.Equal(t, "enter", d.Key)

	d = DecisionFromToolCall("goal_reached", map[string]any{"summary": "done"})
	assert.Equal(t, ActionGoalReached, d.Kind)
	assert.Equal(t, "done", d.Summary)
}

func TestMessageHelpers(t *testing.T) {
	m := Message{Role: RoleUser, Parts: []Part{{Text: "a"}, {ImagePNG: []byte{1}}, {Text: "b"}}}
	assert.True(t, m.HasImage())
	assert.Equal(t, "a\nb", m.Text())

	assert.False(t, TextMessage(RoleSystem, "x").HasImage())
}
