package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Sentinel errors surfaced to the orchestrator. Everything recoverable inside
// the loop (unknown tool, tool failure, tool timeout) is fed back to the model
// as an error ToolResult instead.
var (
	// ErrBackend wraps transport or protocol failures talking to the model.
	ErrBackend = errors.New("model backend failure")

	// ErrLoopExceeded is returned when the model keeps requesting tool calls
	// past the configured round limit.
	ErrLoopExceeded = errors.New("tool-call loop exceeded maximum rounds")
)

// Backend is the single capability a model backend must provide. Alternate
// backends (direct API, Bedrock proxy, test fakes) plug in here.
type Backend interface {
	CreateMessage(ctx context.Context, req *MessageRequest) (*MessageResponse, error)
}

// ToolExecutor dispatches tool invocations requested by the model. Execute is
// total: it always returns a result, converting failures into error results.
type ToolExecutor interface {
	Tools() []ToolDef
	Execute(ctx context.Context, call *ToolUse) *ToolResult
}

const defaultMaxToolRounds = 8

// Client drives a conversation against a Backend, executing requested tool
// calls until the model settles on a final text answer.
type Client struct {
	Backend Backend

	// SystemPrompt is evaluated per completion so it can carry the current
	// date and time.
	SystemPrompt func() string

	MaxTokens     int
	MaxToolRounds int
	Logger        *slog.Logger
}

// Complete sends the history to the backend and loops on tool-use responses,
// dispatching each requested call through executor, until the model produces
// a final text answer. The passed history is not mutated.
func (c *Client) Complete(ctx context.Context, history []Message, executor ToolExecutor) (string, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxRounds := c.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxToolRounds
	}

	messages := make([]Message, len(history))
	copy(messages, history)

	req := &MessageRequest{
		MaxTokens: c.MaxTokens,
		Messages:  messages,
	}
	if c.SystemPrompt != nil {
		req.System = c.SystemPrompt()
	}
	if executor != nil {
		req.Tools = executor.Tools()
	}

	resp, err := c.Backend.CreateMessage(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackend, err)
	}

	for round := 0; resp.StopReason == StopToolUse && executor != nil; round++ {
		if round >= maxRounds {
			logger.Warn("tool loop exceeded", "rounds", round)
			return "", ErrLoopExceeded
		}

		uses := resp.ToolUses()
		if len(uses) == 0 {
			// tool_use stop reason with no tool_use blocks is a protocol
			// violation by the backend.
			return "", fmt.Errorf("%w: tool_use response without tool_use blocks", ErrBackend)
		}

		results := make([]ContentBlock, 0, len(uses))
		for i := range uses {
			logger.Debug("dispatching tool call", "tool", uses[i].Name, "id", uses[i].ID)
			result := executor.Execute(ctx, &uses[i])
			results = append(results, result.Block())
		}

		messages = append(messages,
			Message{Role: RoleAssistant, Content: resp.Content},
			Message{Role: RoleUser, Content: results},
		)
		req.Messages = messages

		resp, err = c.Backend.CreateMessage(ctx, req)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrBackend, err)
		}
	}

	return resp.Text(), nil
}
