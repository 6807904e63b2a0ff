// Package tool_datetime provides the current date and time to the model.
package tool_datetime

import (
	"context"
	"time"

	"github.com/alexboden/occam-claw/src/toolbox"
)

const Name = "get_current_datetime"

// Input has no parameters.
type Input struct{}

// Output is the formatted current time.
type Output struct {
	Datetime string `json:"datetime" description:"The current date and time."`
}

// New builds the datetime tool rendering times in the given location.
func New(loc *time.Location) (toolbox.Tool, error) {
	return toolbox.NewTool(Name, "Get the current date and time.",
		func(ctx context.Context, _ Input) (Output, error) {
			now := time.Now().In(loc)
			return Output{Datetime: now.Format("Monday, January 2, 2006 3:04 PM MST")}, nil
		})
}
