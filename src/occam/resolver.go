package occam

import (
	"context"
	"log/slog"

	"github.com/alexboden/occam-claw/src/channels"
	"github.com/alexboden/occam-claw/src/storage"
)

// Resolver decides which conversation thread an incoming message belongs to.
// The decision is made once per message and never revisited.
type Resolver struct {
	Store  *storage.Store
	Logger *slog.Logger
}

// Resolve returns the thread for the message and whether it is freshly
// minted. A message replying to a known prior message continues that
// message's thread. Everything else starts fresh: an un-referenced message
// never continues an existing conversation, and a reply whose reference is
// no longer in the index falls back to a new thread instead of failing.
func (r *Resolver) Resolve(ctx context.Context, msg channels.Message) (threadID string, fresh bool, err error) {
	if msg.ReplyToID != "" {
		threadID, err = r.Store.ResolveThread(ctx, msg.ReplyToID)
		if err != nil {
			return "", false, err
		}
		if threadID != "" {
			return threadID, false, nil
		}
		if r.Logger != nil {
			r.Logger.Debug("reply reference not in index, starting fresh", "reply_to", msg.ReplyToID)
		}
	}
	return r.Store.NewThreadID(), true, nil
}
