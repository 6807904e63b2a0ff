// Package chat defines the message wire types and the completion loop used to
// talk to an Anthropic-style Messages backend.
package chat

import (
	"encoding/json"
	"strings"

	jsonschema "github.com/swaggest/jsonschema-go"
)

// Roles used in conversation messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Content block types.
const (
	BlockText       = "text"
	BlockImage      = "image"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
)

// StopToolUse is the stop reason signalling that the model wants tool calls
// executed before it can produce a final answer.
const StopToolUse = "tool_use"

// Message is a single message in the Messages API dialect.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock is one block of message content. The Type field decides which
// of the remaining fields are meaningful.
type ContentBlock struct {
	Type string `json:"type"`

	// text
	Text string `json:"text,omitempty"`

	// image
	Source *ImageSource `json:"source,omitempty"`

	// tool_use
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// tool_result
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`
}

// ImageSource carries inline image data for an image block.
type ImageSource struct {
	Type      string `json:"type"` // always "base64"
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// TextBlock builds a plain text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

// ImageBlock builds an inline base64 image content block.
func ImageBlock(mediaType, data string) ContentBlock {
	return ContentBlock{
		Type:   BlockImage,
		Source: &ImageSource{Type: "base64", MediaType: mediaType, Data: data},
	}
}

// UserText builds a user message containing a single text block.
func UserText(text string) Message {
	return Message{Role: RoleUser, Content: []ContentBlock{TextBlock(text)}}
}

// AssistantText builds an assistant message containing a single text block.
func AssistantText(text string) Message {
	return Message{Role: RoleAssistant, Content: []ContentBlock{TextBlock(text)}}
}

// ToolDef describes one tool offered to the model.
type ToolDef struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"input_schema"`
}

// ToolUse is a single tool invocation requested by the model.
type ToolUse struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// ToolResult is the outcome of a tool invocation. Every ToolUse produces
// exactly one ToolResult, failures included, so the completion loop never
// waits on a result that is not coming.
type ToolResult struct {
	ToolUseID string
	Content   string
	IsError   bool
}

// Block converts the result into the wire content block fed back to the model.
func (r *ToolResult) Block() ContentBlock {
	return ContentBlock{
		Type:      BlockToolResult,
		ToolUseID: r.ToolUseID,
		Content:   r.Content,
		IsError:   r.IsError,
	}
}

// MessageRequest is a request against the Messages endpoint.
type MessageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
	Tools     []ToolDef `json:"tools,omitempty"`
}

// MessageResponse is the backend's reply.
type MessageResponse struct {
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

// Text joins all text blocks of the response.
func (r *MessageResponse) Text() string {
	var sb strings.Builder
	for _, b := range r.Content {
		if b.Type == BlockText {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

// ToolUses extracts the tool invocations requested by the response.
func (r *MessageResponse) ToolUses() []ToolUse {
	var uses []ToolUse
	for _, b := range r.Content {
		if b.Type == BlockToolUse {
			uses = append(uses, ToolUse{ID: b.ID, Name: b.Name, Input: b.Input})
		}
	}
	return uses
}
