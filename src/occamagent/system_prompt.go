// Package occamagent assembles the assistant persona: the system prompt and
// the toolbox of collaborator tools offered to the model.
package occamagent

import (
	"fmt"
	"time"
)

// SystemPrompt returns a prompt builder evaluated per completion so the
// model always sees the current date and time.
func SystemPrompt(loc *time.Location) func() string {
	return func() string {
		now := time.Now().In(loc)
		return fmt.Sprintf(
			"You are Occam, a concise personal assistant. "+
				"The current date and time is %s. "+
				"The user's timezone is %s. Use this for all calendar events unless specified otherwise. "+
				"You have access to the user's Google Calendar. Be brief. "+
				"When the user asks you to do something and you have a tool for it, use the tool. "+
				"Do not ask for confirmation unless the request is ambiguous. "+
				"Use Signal formatting: *italic*, **bold**, ~strikethrough~, `monospace`.",
			now.Format("Monday, January 2, 2006 3:04 PM MST"), loc.String())
	}
}
