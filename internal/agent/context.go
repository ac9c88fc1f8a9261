// internal/agent/context.go
package agent

import "github.com/ZevCorp/iu-screenagent/internal/schemas"

// pruneContext caps how many turns keep their embedded screenshot. The
// maxImages newest image-bearing turns survive intact; every older one is
// rewritten to its text payload alone so the model keeps the narrative
// without the pixels. Turn count and ordering never change.
func pruneContext(msgs []schemas.Message, maxImages int) []schemas.Message {
	if maxImages <= 0 {
		return msgs
	}

	kept := 0
	for i := len(msgs) - 1; i >= 0; i-- {
		if !msgs[i].HasImage() {
			continue
		}
		kept++
		if kept <= maxImages {
			continue
		}
		parts := make([]schemas.Part, 0, len(msgs[i].Parts))
		for _, p := range msgs[i].Parts {
			if p.Text != "" {
				parts = append(parts, schemas.Part{Text: p.Text})
			}
		}
		if len(parts) == 0 {
			parts = append(parts, schemas.Part{Text: "[screenshot removed to save context]"})
		}
		msgs[i].Parts = parts
	}
	return msgs
}
