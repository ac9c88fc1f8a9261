// internal/schemas/messages.go
package schemas

// Role tags a conversation turn with its author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Part is one piece of a turn's content: text, an inline PNG image, or both
// are valid, but never neither.
type Part struct {
	Text     string
	ImagePNG []byte
}

// ToolCall records the single function invocation an assistant turn carried.
// It is kept on the turn so the history can be replayed to either backend in
// its native wire format.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// Message is one role-tagged turn of the conversation context. Tool-result
// turns reference the assistant's call via ToolCallID.
type Message struct {
	Role       Role
	Parts      []Part
	ToolCall   *ToolCall
	ToolCallID string
}

// HasImage reports whether any part of the turn carries an image payload.
func (m Message) HasImage() bool {
	for _, p := range m.Parts {
		if len(p.ImagePNG) > 0 {
			return true
		}
	}
	return false
}

// Text concatenates the textual parts of the turn.
func (m Message) Text() string {
	var out string
	for _, p := range m.Parts {
		if p.Text != "" {
			if out != "" {
				out += "\n"
			}
			out += p.Text
		}
	}
	return out
}

// TextMessage builds a single-part, text-only turn.
func TextMessage(role Role, text string) Message {
	return Message{Role: role, Parts: []Part{{Text: text}}}
}
