package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const reconnectDelay = 5 * time.Second

// SignalChannel bridges a signal-cli-rest-api instance. Only the owner's
// "Note to Self" messages are processed: the sync sentMessage stream is
// watched for messages whose destination is the owner's own number.
type SignalChannel struct {
	Number     string
	APIURL     string
	HTTPClient *http.Client
	Logger     *slog.Logger

	// Timestamps of messages this process sent, so their websocket echoes
	// are not handled as new input.
	mu   sync.Mutex
	sent map[int64]struct{}
}

// NewSignalChannel builds a Signal channel against the given REST API base
// URL (e.g. "http://signal-api:8080").
func NewSignalChannel(number, apiURL string, logger *slog.Logger) *SignalChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &SignalChannel{
		Number:     number,
		APIURL:     strings.TrimRight(apiURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     logger.With("component", "signal"),
		sent:       make(map[int64]struct{}),
	}
}

type signalEnvelope struct {
	Envelope struct {
		Timestamp   int64 `json:"timestamp"`
		SyncMessage struct {
			SentMessage *sentMessage `json:"sentMessage"`
		} `json:"syncMessage"`
	} `json:"envelope"`
}

type sentMessage struct {
	Message           string          `json:"message"`
	DestinationNumber string          `json:"destinationNumber"`
	GroupInfo         json.RawMessage `json:"groupInfo"`
	GroupID           string          `json:"groupId"`
	Quote             *struct {
		ID int64 `json:"id"`
	} `json:"quote"`
	Attachments []struct {
		ID          string `json:"id"`
		ContentType string `json:"contentType"`
	} `json:"attachments"`
}

// Listen connects to the receive websocket and dispatches incoming messages
// until the context is cancelled, reconnecting on transport failures.
func (c *SignalChannel) Listen(ctx context.Context, handler Handler) error {
	wsURL := strings.Replace(c.APIURL, "http", "ws", 1) + "/v1/receive/" + c.Number

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.Logger.Info("connecting to signal api", "url", c.APIURL)
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
		if err != nil {
			c.Logger.Warn("signal websocket dial failed, retrying", "error", err, "delay", reconnectDelay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(reconnectDelay):
			}
			continue
		}

		c.Logger.Info("signal websocket connected")
		err = c.readLoop(ctx, conn, handler)
		conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Logger.Warn("signal websocket disconnected, reconnecting", "error", err, "delay", reconnectDelay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *SignalChannel) readLoop(ctx context.Context, conn *websocket.Conn, handler Handler) error {
	// Unblock ReadMessage when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		msgType, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var env signalEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}

		msgTS := env.Envelope.Timestamp
		if c.wasSent(msgTS) {
			continue
		}

		sent := env.Envelope.SyncMessage.SentMessage
		if !isOwnerNote(sent, c.Number) {
			continue
		}

		msg := c.buildMessage(ctx, sent, msgTS)
		c.Logger.Info("signal message received", "reply_to", msg.ReplyToID, "text", truncate(msg.Text, 50))

		if err := handler(ctx, msg); err != nil {
			c.Logger.Error("message handling failed", "error", err)
		}
	}
}

// isOwnerNote reports whether the payload is a direct Note-to-Self message
// from the owner. Group traffic and messages to other recipients are ignored.
func isOwnerNote(sent *sentMessage, owner string) bool {
	if sent == nil {
		return false
	}
	if sent.Message == "" && len(sent.Attachments) == 0 {
		return false
	}
	if len(sent.GroupInfo) > 0 && string(sent.GroupInfo) != "null" {
		return false
	}
	if sent.GroupID != "" {
		return false
	}
	return sent.DestinationNumber == owner
}

func (c *SignalChannel) buildMessage(ctx context.Context, sent *sentMessage, msgTS int64) Message {
	var replyTo string
	if sent.Quote != nil && sent.Quote.ID != 0 {
		replyTo = strconv.FormatInt(sent.Quote.ID, 10)
	}

	var attachments []Attachment
	for _, att := range sent.Attachments {
		if att.ID == "" || !strings.HasPrefix(att.ContentType, "image/") {
			continue
		}
		data, err := c.downloadAttachment(ctx, att.ID)
		if err != nil {
			c.Logger.Warn("attachment download failed", "id", att.ID, "error", err)
			continue
		}
		attachments = append(attachments, Attachment{Data: data, MediaType: att.ContentType})
	}

	text := sent.Message
	return Message{
		Channel:     Signal,
		Sender:      c.Number,
		Text:        text,
		MessageID:   strconv.FormatInt(msgTS, 10),
		ReplyToID:   replyTo,
		Attachments: attachments,
		Respond: func(ctx context.Context, reply string) (string, error) {
			ts, err := c.send(ctx, reply, msgTS, text)
			if err != nil {
				return "", err
			}
			c.markSent(ts)
			return strconv.FormatInt(ts, 10), nil
		},
	}
}

type sendRequest struct {
	Message        string   `json:"message"`
	Number         string   `json:"number"`
	Recipients     []string `json:"recipients"`
	NotifySelf     bool     `json:"notify_self"`
	TextMode       string   `json:"text_mode"`
	QuoteTimestamp int64    `json:"quote_timestamp,omitempty"`
	QuoteAuthor    string   `json:"quote_author,omitempty"`
	QuoteMessage   string   `json:"quote_message,omitempty"`
}

// send posts a styled Note-to-Self reply quoting the triggering message and
// returns the timestamp Signal assigned to it.
func (c *SignalChannel) send(ctx context.Context, text string, quoteTS int64, quoted string) (int64, error) {
	payload := sendRequest{
		Message:    text,
		Number:     c.Number,
		Recipients: []string{c.Number},
		NotifySelf: true,
		TextMode:   "styled",
	}
	if quoteTS != 0 {
		payload.QuoteTimestamp = quoteTS
		payload.QuoteAuthor = c.Number
		payload.QuoteMessage = quoted
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL+"/v2/send", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("signal send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("signal send failed: %d %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var result struct {
		Timestamp int64 `json:"timestamp"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("signal send: decoding response: %w", err)
	}
	return result.Timestamp, nil
}

func (c *SignalChannel) downloadAttachment(ctx context.Context, id string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIURL+"/v1/attachments/"+id, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("attachment download failed: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *SignalChannel) wasSent(ts int64) bool {
	if ts == 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sent[ts]; ok {
		delete(c.sent, ts)
		return true
	}
	return false
}

func (c *SignalChannel) markSent(ts int64) {
	if ts == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent[ts] = struct{}{}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
