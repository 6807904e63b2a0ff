// Package channels adapts messaging transports (CLI, Signal) to the
// orchestrator's incoming-message contract.
package channels

import "context"

// Channel names.
const (
	CLI    = "cli"
	Signal = "signal"
)

// Attachment is an inline binary attachment, currently always an image.
type Attachment struct {
	Data      []byte
	MediaType string // e.g. "image/jpeg"
}

// Message is one incoming message handed to the orchestrator.
type Message struct {
	Channel string
	Sender  string
	Text    string

	// MessageID is the channel-assigned identifier of this message, empty if
	// the channel has none (CLI).
	MessageID string

	// ReplyToID names the prior message this one replies to, empty when the
	// message starts fresh.
	ReplyToID string

	Attachments []Attachment

	// Respond delivers the reply and returns the channel-assigned identifier
	// of the outgoing message, empty if the channel has none.
	Respond func(ctx context.Context, text string) (string, error)
}

// Handler processes one incoming message end to end.
type Handler func(ctx context.Context, msg Message) error
