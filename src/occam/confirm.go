package occam

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/alexboden/occam-claw/src/chat"
)

// confirmingExecutor wraps the toolbox for one request and collects
// human-readable confirmations for calendar mutations, appended to the reply
// so the user sees exactly what changed even if the model is terse about it.
type confirmingExecutor struct {
	inner         chat.ToolExecutor
	loc           *time.Location
	confirmations []string
}

var _ chat.ToolExecutor = (*confirmingExecutor)(nil)

func newConfirmingExecutor(inner chat.ToolExecutor, loc *time.Location) *confirmingExecutor {
	return &confirmingExecutor{inner: inner, loc: loc}
}

func (e *confirmingExecutor) Tools() []chat.ToolDef { return e.inner.Tools() }

func (e *confirmingExecutor) Execute(ctx context.Context, call *chat.ToolUse) *chat.ToolResult {
	result := e.inner.Execute(ctx, call)
	if !result.IsError {
		if c := formatCalendarAction(call.Name, call.Input, result.Content, e.loc); c != "" {
			e.confirmations = append(e.confirmations, c)
		}
	}
	return result
}

// trailer returns the concatenated confirmations for this request.
func (e *confirmingExecutor) trailer() string {
	return strings.Join(e.confirmations, "")
}

type calendarArgs struct {
	Summary     string `json:"summary"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

type calendarResult struct {
	ID   string       `json:"id"`
	Link string       `json:"link"`
	Old  calendarArgs `json:"old"`
}

// formatCalendarAction renders a create/update calendar result into a styled
// confirmation block, or "" when the call is not a calendar mutation.
func formatCalendarAction(name string, rawArgs json.RawMessage, rawResult string, loc *time.Location) string {
	var label string
	switch name {
	case "create_calendar_event":
		label = "**Event Created**"
	case "update_calendar_event":
		label = "**Event Updated**"
	default:
		return ""
	}

	var result calendarResult
	if err := json.Unmarshal([]byte(rawResult), &result); err != nil || result.ID == "" {
		return ""
	}
	var args calendarArgs
	if len(rawArgs) > 0 {
		json.Unmarshal(rawArgs, &args)
	}

	lines := []string{"\n\n---", label}
	isUpdate := name == "update_calendar_event" && result.Old != (calendarArgs{})

	if isUpdate {
		old := result.Old
		if args.Summary != "" && args.Summary != old.Summary {
			lines = append(lines, fmt.Sprintf("*Title:* %s → %s", old.Summary, args.Summary))
		} else if args.Summary != "" || old.Summary != "" {
			lines = append(lines, fmt.Sprintf("*Title:* %s", firstNonEmpty(args.Summary, old.Summary)))
		}
		lines = appendTimeChange(lines, "Start", old.Start, args.Start, loc)
		lines = appendTimeChange(lines, "End", old.End, args.End, loc)
		for _, f := range []struct{ label, oldVal, newVal string }{
			{"Description", old.Description, args.Description},
			{"Location", old.Location, args.Location},
		} {
			if f.newVal == "" || f.newVal == f.oldVal {
				continue
			}
			if f.oldVal != "" {
				lines = append(lines, fmt.Sprintf("*%s:* %s → %s", f.label, f.oldVal, f.newVal))
			} else {
				lines = append(lines, fmt.Sprintf("*%s:* %s", f.label, f.newVal))
			}
		}
	} else {
		if args.Summary != "" {
			lines = append(lines, fmt.Sprintf("*Title:* %s", args.Summary))
		}
		if args.Start != "" {
			lines = append(lines, fmt.Sprintf("*Start:* %s", fmtTime(args.Start, loc)))
		}
		if args.End != "" {
			lines = append(lines, fmt.Sprintf("*End:* %s", fmtTime(args.End, loc)))
		}
		if args.Description != "" {
			lines = append(lines, fmt.Sprintf("*Description:* %s", args.Description))
		}
		if args.Location != "" {
			lines = append(lines, fmt.Sprintf("*Location:* %s", args.Location))
		}
	}

	if result.Link != "" {
		lines = append(lines, fmt.Sprintf("*Link:* %s", result.Link))
	}
	return strings.Join(lines, "\n")
}

func appendTimeChange(lines []string, label, oldVal, newVal string, loc *time.Location) []string {
	switch {
	case newVal != "" && newVal != oldVal && oldVal != "":
		return append(lines, fmt.Sprintf("*%s:* %s → %s", label, fmtTime(oldVal, loc), fmtTime(newVal, loc)))
	case newVal != "":
		return append(lines, fmt.Sprintf("*%s:* %s", label, fmtTime(newVal, loc)))
	}
	return lines
}

// fmtTime renders an ISO datetime as a friendly display like
// "Feb 18, 10:00 AM EST", falling back to the raw string.
func fmtTime(iso string, loc *time.Location) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return iso
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("Jan 2, 3:04 PM MST")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
