// internal/actuate/keys.go
package actuate

import "github.com/ZevCorp/iu-screenagent/internal/schemas"

// validKeys is the closed enum of symbolic key names the protocol exposes.
var validKeys = func() map[string]bool {
	m := make(map[string]bool, len(schemas.KeyNames))
	for _, k := range schemas.KeyNames {
		m[k] = true
	}
	return m
}()

// ValidKey reports whether name is in the symbolic key enum.
func ValidKey(name string) bool {
	return validKeys[name]
}

// robotgoKeys maps the symbolic enum to robotgo key identifiers.
var robotgoKeys = map[string]string{
	"enter":     "enter",
	"tab":       "tab",
	"escape":    "esc",
	"backspace": "backspace",
	"delete":    "delete",
	"up":        "up",
	"down":      "down",
	"left":      "left",
	"right":     "right",
}

// cdpKey carries the DOM key value and Windows virtual key code a DevTools
// key event needs.
type cdpKey struct {
	Key string
	VK  int64
}

// cdpKeys maps the symbolic enum to DevTools Protocol key events.
var cdpKeys = map[string]cdpKey{
	"enter":     {Key: "Enter", VK: 13},
	"tab":       {Key: "Tab", VK: 9},
	"escape":    {Key: "Escape", VK: 27},
	"backspace": {Key: "Backspace", VK: 8},
	"delete":    {Key: "Delete", VK: 46},
	"up":        {Key: "ArrowUp", VK: 38},
	"down":      {Key: "ArrowDown", VK: 40},
	"left":      {Key: "ArrowLeft", VK: 37},
	"right":     {Key: "ArrowRight", VK: 39},
}
