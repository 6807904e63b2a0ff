// Package occam is the conversation orchestration engine: it routes each
// incoming message to its thread, reconstructs history, drives the model
// completion, persists the exchange, and records the thread identity of the
// outgoing reply.
package occam

import (
	"context"
	"encoding/base64"
	"log/slog"
	"time"

	"github.com/alexboden/occam-claw/src/channels"
	"github.com/alexboden/occam-claw/src/chat"
	"github.com/alexboden/occam-claw/src/storage"
)

// failureReply is the only thing a user sees when handling fails; internals
// stay in the logs.
const failureReply = "Sorry, something went wrong handling that message. Please try again."

const defaultImagePrompt = "What is this image?"

// Orchestrator handles one incoming message end to end.
type Orchestrator struct {
	store    *storage.Store
	llm      *chat.Client
	tools    chat.ToolExecutor
	resolver *Resolver
	locks    *threadLocks
	logger   *slog.Logger

	owner      string
	maxHistory int
	timezone   *time.Location
}

// Options configures an Orchestrator.
type Options struct {
	// Owner is the only sender identity whose messages are processed.
	Owner string
	// MaxHistory caps how many stored turns are replayed into the prompt.
	MaxHistory int
	// Timezone is used for user-facing time rendering.
	Timezone *time.Location
	Logger   *slog.Logger
}

// New wires an orchestrator. tools may be nil for a tool-less assistant.
func New(store *storage.Store, llm *chat.Client, tools chat.ToolExecutor, opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "orchestrator")

	tz := opts.Timezone
	if tz == nil {
		tz = time.Local
	}

	return &Orchestrator{
		store:      store,
		llm:        llm,
		tools:      tools,
		resolver:   &Resolver{Store: store, Logger: logger},
		locks:      newThreadLocks(),
		logger:     logger,
		owner:      opts.Owner,
		maxHistory: opts.MaxHistory,
		timezone:   tz,
	}
}

// Handle processes one incoming message: resolve thread, load history, run
// the completion, persist the exchange, reply, and index the outgoing
// message so future replies continue the same thread.
//
// Failures that escape local recovery produce a single generic error reply;
// turns persisted before the failure are kept as is.
func (o *Orchestrator) Handle(ctx context.Context, msg channels.Message) error {
	if !o.trusted(msg) {
		o.logger.Debug("ignoring message from untrusted sender", "channel", msg.Channel, "sender", msg.Sender)
		return nil
	}

	threadID, fresh, err := o.resolver.Resolve(ctx, msg)
	if err != nil {
		o.fail(ctx, msg, "resolving thread", err)
		return err
	}
	logger := o.logger.With("thread", threadID)
	logger.Info("handling message", "channel", msg.Channel, "fresh", fresh)

	unlock := o.locks.Acquire(threadID)
	defer unlock()

	// Map the incoming message id first so a reply swipe on the user's own
	// message also lands in this thread.
	if err := o.store.MapMessage(ctx, msg.MessageID, threadID); err != nil {
		o.fail(ctx, msg, "indexing incoming message", err)
		return err
	}

	turns, err := o.store.LoadTurns(ctx, threadID, o.maxHistory)
	if err != nil {
		o.fail(ctx, msg, "loading history", err)
		return err
	}

	userMsg, userText := buildUserMessage(msg)
	history := make([]chat.Message, 0, len(turns)+1)
	for _, t := range turns {
		switch t.Role {
		case storage.RoleUser:
			history = append(history, chat.UserText(t.Content))
		case storage.RoleAssistant:
			history = append(history, chat.AssistantText(t.Content))
		}
	}
	history = append(history, userMsg)

	executor := o.tools
	var confirmer *confirmingExecutor
	if executor != nil {
		confirmer = newConfirmingExecutor(executor, o.timezone)
		executor = confirmer
	}

	logger.Info("calling model", "history_turns", len(history))
	reply, err := o.llm.Complete(ctx, history, executor)
	if err != nil {
		o.fail(ctx, msg, "completing", err)
		return err
	}
	if confirmer != nil {
		reply += confirmer.trailer()
	}
	logger.Info("model replied", "preview", preview(reply))

	// User turn strictly before assistant turn: a crash in between leaves a
	// prompt without an answer, never an answer without its prompt.
	if err := o.store.AppendTurn(ctx, threadID, storage.RoleUser, userText); err != nil {
		o.fail(ctx, msg, "persisting user turn", err)
		return err
	}
	if err := o.store.AppendTurn(ctx, threadID, storage.RoleAssistant, reply); err != nil {
		o.fail(ctx, msg, "persisting assistant turn", err)
		return err
	}

	outID, err := msg.Respond(ctx, reply)
	if err != nil {
		logger.Error("sending reply failed", "error", err)
		return err
	}
	if err := o.store.MapMessage(ctx, outID, threadID); err != nil {
		// The reply is already delivered; a failed index write only costs
		// reply-chain continuity for this one message.
		logger.Error("indexing outgoing message failed", "error", err)
		return err
	}

	logger.Info("reply sent", "message_id", outID)
	return nil
}

// trusted reports whether the sender may use the assistant. The CLI channel
// is local and inherently trusted; everything else must match the owner.
func (o *Orchestrator) trusted(msg channels.Message) bool {
	return msg.Channel == channels.CLI || msg.Sender == o.owner
}

// fail logs the failure and sends the generic error reply, best effort.
func (o *Orchestrator) fail(ctx context.Context, msg channels.Message, step string, err error) {
	o.logger.Error("handling failed", "step", step, "error", err)
	if _, sendErr := msg.Respond(ctx, failureReply); sendErr != nil {
		o.logger.Error("sending failure reply failed", "error", sendErr)
	}
}

// buildUserMessage converts the channel message into the model's user turn,
// with attachments as inline image blocks ahead of the text. It also returns
// the text persisted for this turn.
func buildUserMessage(msg channels.Message) (chat.Message, string) {
	text := msg.Text
	if text == "" && len(msg.Attachments) > 0 {
		text = defaultImagePrompt
	}

	if len(msg.Attachments) == 0 {
		return chat.UserText(text), text
	}

	blocks := make([]chat.ContentBlock, 0, len(msg.Attachments)+1)
	for _, att := range msg.Attachments {
		blocks = append(blocks, chat.ImageBlock(att.MediaType, base64.StdEncoding.EncodeToString(att.Data)))
	}
	blocks = append(blocks, chat.TextBlock(text))
	return chat.Message{Role: chat.RoleUser, Content: blocks}, text
}

func preview(s string) string {
	if len(s) <= 80 {
		return s
	}
	return s[:80]
}
