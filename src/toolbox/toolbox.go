// Package toolbox holds the tool registry and the dispatch path between the
// completion loop and individual tool implementations.
package toolbox

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	jsonschema "github.com/swaggest/jsonschema-go"

	"github.com/alexboden/occam-claw/src/chat"
)

// Tool is a single named capability offered to the model.
type Tool interface {
	Name() string
	Description() string
	Parameters() *jsonschema.Schema

	// Execute runs the tool against raw JSON arguments and returns the
	// serialized payload. Errors are recoverable: the toolbox converts them
	// into error results for the model.
	Execute(ctx context.Context, input []byte) (string, error)
}

const defaultTimeout = 60 * time.Second

// Toolbox is a name-indexed tool registry. Registration happens at process
// start; dispatch is read-only afterwards.
type Toolbox struct {
	tools   map[string]Tool
	timeout time.Duration
	logger  *slog.Logger
}

var _ chat.ToolExecutor = (*Toolbox)(nil)

// New creates an empty toolbox. A non-positive timeout falls back to the
// default per-call latency ceiling.
func New(timeout time.Duration, logger *slog.Logger) *Toolbox {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Toolbox{
		tools:   make(map[string]Tool),
		timeout: timeout,
		logger:  logger.With("component", "toolbox"),
	}
}

// Register adds a tool. Duplicate or empty names are configuration mistakes
// and fail loudly.
func (tb *Toolbox) Register(tool Tool) error {
	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if _, exists := tb.tools[name]; exists {
		return fmt.Errorf("tool %s is already registered", name)
	}
	tb.tools[name] = tool
	return nil
}

// Tools returns the catalog advertised to the model, sorted by name so the
// prompt is deterministic.
func (tb *Toolbox) Tools() []chat.ToolDef {
	defs := make([]chat.ToolDef, 0, len(tb.tools))
	for _, tool := range tb.tools {
		defs = append(defs, chat.ToolDef{
			Name:        tool.Name(),
			Description: tool.Description(),
			InputSchema: tool.Parameters(),
		})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Execute dispatches one tool call. It is total: unknown tools, handler
// errors, panics, and timeouts all come back as error results so the
// completion loop can hand them to the model instead of aborting.
func (tb *Toolbox) Execute(ctx context.Context, call *chat.ToolUse) *chat.ToolResult {
	tool, ok := tb.tools[call.Name]
	if !ok {
		tb.logger.Warn("unknown tool requested", "tool", call.Name)
		return &chat.ToolResult{
			ToolUseID: call.ID,
			Content:   fmt.Sprintf("unknown tool: %s", call.Name),
			IsError:   true,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, tb.timeout)
	defer cancel()

	type outcome struct {
		payload string
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("tool panicked: %v", r)}
			}
		}()
		payload, err := tool.Execute(ctx, call.Input)
		done <- outcome{payload: payload, err: err}
	}()

	start := time.Now()
	select {
	case <-ctx.Done():
		tb.logger.Warn("tool call timed out", "tool", call.Name, "after", time.Since(start))
		return &chat.ToolResult{
			ToolUseID: call.ID,
			Content:   fmt.Sprintf("tool %s timed out after %s", call.Name, tb.timeout),
			IsError:   true,
		}
	case o := <-done:
		if o.err != nil {
			tb.logger.Warn("tool call failed", "tool", call.Name, "error", o.err)
			return &chat.ToolResult{
				ToolUseID: call.ID,
				Content:   fmt.Sprintf("tool %s failed: %v", call.Name, o.err),
				IsError:   true,
			}
		}
		tb.logger.Debug("tool call completed", "tool", call.Name, "duration", time.Since(start))
		return &chat.ToolResult{ToolUseID: call.ID, Content: o.payload}
	}
}
