package email

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/resend/resend-go/v2"
)

// ResendSender delivers mail through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender creates a sender with a default From address.
// PRE: apiKey is a valid Resend API key; from is a valid sender address
// POST: Returns a ready-to-use sender
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (s *ResendSender) params(msg Message) *resend.SendEmailRequest {
	from := msg.From
	if from == "" {
		from = s.from
	}
	p := &resend.SendEmailRequest{
		From:    from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	}
	names := make([]string, 0, len(msg.Tags))
	for name := range msg.Tags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p.Tags = append(p.Tags, resend.Tag{Name: name, Value: msg.Tags[name]})
	}
	return p
}

// Send delivers a single message.
// PRE: msg has at least one recipient and a subject
// POST: Message is queued by Resend; returns its message ID
func (s *ResendSender) Send(ctx context.Context, msg Message) (Receipt, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, s.params(msg))
	if err != nil {
		slog.Error("resend_send_failed", "error", err, "to", msg.To, "subject", msg.Subject)
		return Receipt{}, fmt.Errorf("resend send: %w", err)
	}
	slog.Info("resend_sent", "message_id", sent.Id, "to", msg.To, "subject", msg.Subject)
	return Receipt{MessageID: sent.Id, SentAt: time.Now()}, nil
}

// SendBatch delivers msgs in chunks of MaxBatchSize. Chunk i carries the
// Idempotency-Key "<key>/<i>", so Resend drops chunks it already accepted.
// PRE: none
// POST: Receipts are in request order; on error, receipts for completed chunks are returned
func (s *ResendSender) SendBatch(ctx context.Context, key string, msgs []Message) ([]Receipt, error) {
	var receipts []Receipt
	for i, chunk := range chunks(msgs, MaxBatchSize) {
		batch := make([]*resend.SendEmailRequest, 0, len(chunk))
		for _, msg := range chunk {
			batch = append(batch, s.params(msg))
		}

		resp, err := s.client.Batch.SendWithOptions(ctx, batch, &resend.BatchSendEmailOptions{
			IdempotencyKey: chunkKey(key, i),
		})
		if err != nil {
			slog.Error("resend_batch_failed", "error", err, "batch_size", len(chunk), "chunk", i, "key", key)
			return receipts, fmt.Errorf("resend batch send: %w", err)
		}
		for _, item := range resp.Data {
			receipts = append(receipts, Receipt{MessageID: item.Id, SentAt: time.Now()})
		}
		slog.Info("resend_batch_sent", "count", len(chunk), "total_sent", len(receipts))
	}
	return receipts, nil
}
