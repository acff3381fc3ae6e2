package email

import (
	"context"
	"fmt"
	"time"
)

// Message is one outgoing email.
type Message struct {
	To      []string
	From    string // falls back to the sender's default when empty
	ReplyTo string
	Subject string
	HTML    string
	Text    string
	Tags    map[string]string // provider-side labels, e.g. club_id
}

// Receipt is the provider's acknowledgement of a Message.
type Receipt struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers messages through an external provider.
//
// SendBatch takes a key identifying the logical batch. When key is non-empty,
// repeating a call with the same key and messages does not redeliver chunks
// the provider already accepted, for as long as the provider remembers the
// key (24 hours for Resend). Delivery is at-least-once beyond that window.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
	SendBatch(ctx context.Context, key string, msgs []Message) ([]Receipt, error)
}

// MaxBatchSize is the largest batch a provider call accepts.
const MaxBatchSize = 100

// chunkKey is the idempotency key for chunk i of the batch identified by key.
func chunkKey(key string, i int) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("%s/%d", key, i)
}

// chunks splits msgs into slices of at most size.
func chunks(msgs []Message, size int) [][]Message {
	var out [][]Message
	for len(msgs) > size {
		out = append(out, msgs[:size])
		msgs = msgs[size:]
	}
	if len(msgs) > 0 {
		out = append(out, msgs)
	}
	return out
}
