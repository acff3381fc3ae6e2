package email

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// NoopSender logs messages instead of delivering them. Used when no
// provider key is configured.
type NoopSender struct{}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs msg and returns a synthetic receipt.
func (s *NoopSender) Send(_ context.Context, msg Message) (Receipt, error) {
	slog.Info("noop_email_send", "to", msg.To, "subject", msg.Subject)
	return Receipt{MessageID: "noop-" + uuid.NewString(), SentAt: time.Now()}, nil
}

// SendBatch logs every message and returns one receipt per message.
func (s *NoopSender) SendBatch(ctx context.Context, _ string, msgs []Message) ([]Receipt, error) {
	receipts := make([]Receipt, 0, len(msgs))
	for _, msg := range msgs {
		r, _ := s.Send(ctx, msg)
		receipts = append(receipts, r)
	}
	return receipts, nil
}
