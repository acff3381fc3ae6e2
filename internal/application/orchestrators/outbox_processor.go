package orchestrators

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"clubhouse/internal/adapters/email"
	domain "clubhouse/internal/domain/outbox"
)

// OutboxStore is what the processor needs from outbox persistence.
type OutboxStore interface {
	GetByID(ctx context.Context, id string) (domain.Entry, error)
	Save(ctx context.Context, e domain.Entry) error
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)
}

// ActionExecutor executes a specific type of external action.
type ActionExecutor interface {
	// Execute runs the action with the given payload and returns the
	// provider's ID for it.
	Execute(ctx context.Context, payload string) (string, error)
}

// OutboxProcessor delivers queued side effects with exponential backoff.
type OutboxProcessor struct {
	store     OutboxStore
	executors map[string]ActionExecutor
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
	now       func() time.Time
}

// NewOutboxProcessor creates a processor with a 30s base delay capped at one hour.
func NewOutboxProcessor(store OutboxStore, executors map[string]ActionExecutor) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		executors: executors,
		baseDelay: 30 * time.Second,
		maxDelay:  time.Hour,
		batchSize: 10,
		now:       time.Now,
	}
}

// ProcessPending attempts every pending entry whose backoff has elapsed.
// PRE: Context is valid
// POST: Attempted entries are saved with their new status
func (p *OutboxProcessor) ProcessPending(ctx context.Context) error {
	entries, err := p.store.ListPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("list pending outbox entries: %w", err)
	}
	for _, entry := range entries {
		if p.now().Before(entry.DueAt(p.baseDelay, p.maxDelay)) {
			continue
		}
		if err := p.attempt(ctx, entry); err != nil {
			slog.Error("outbox_process_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "error", err.Error())
		}
	}
	return nil
}

// ProcessSingle attempts one entry immediately, ignoring backoff.
// PRE: entryID is non-empty
// POST: Entry is attempted unless terminal
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	if entry.IsTerminal() {
		return fmt.Errorf("entry %s is in terminal state and cannot be retried", entryID)
	}
	return p.attempt(ctx, entry)
}

func (p *OutboxProcessor) attempt(ctx context.Context, entry domain.Entry) error {
	executor, ok := p.executors[entry.ActionType]
	if !ok {
		entry.MarkAbandoned()
		entry.ErrorMessage = "no executor registered for action type: " + entry.ActionType
		slog.Warn("outbox_action_abandoned", "entry_id", entry.ID, "action_type", entry.ActionType)
		return p.store.Save(ctx, entry)
	}

	entry.MarkAttempt(p.now())
	externalID, err := executor.Execute(ctx, entry.Payload)
	if err != nil {
		entry.MarkFailed(err)
		slog.Warn("outbox_action_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "status", entry.Status, "error", err.Error())
	} else {
		entry.MarkSuccess(externalID)
		slog.Info("outbox_action_succeeded", "entry_id", entry.ID, "action_type", entry.ActionType, "external_id", externalID)
	}
	return p.store.Save(ctx, entry)
}

// RunWorker processes pending entries every interval until ctx is done.
// PRE: interval > 0
// POST: Returns nil once ctx is cancelled
func RunWorker(ctx context.Context, processor *OutboxProcessor, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			if err := processor.ProcessPending(runCtx); err != nil {
				slog.Error("outbox_background_process_failed", "error", err.Error())
			}
			cancel()
		case <-ctx.Done():
			slog.Info("outbox_background_worker_stopped")
			return nil
		}
	}
}

// --- Event announcement executor ---

// announcementMarkdown renders descriptions; raw HTML in the input is escaped.
var announcementMarkdown = goldmark.New()

var announcementTemplate = template.Must(template.New("announcement").Parse(
	`<h2>{{.ClubName}}: {{.Title}}</h2>
<p><strong>{{.Date}}</strong></p>
{{.Body}}`))

// EventAnnouncementExecutor emails a new event to the club's members.
type EventAnnouncementExecutor struct {
	Sender  email.Sender
	From    string
	ReplyTo string
}

// Execute sends one message per recipient in a single batch keyed by the
// announcement ID, so a retry after a partial failure skips chunks the
// provider already accepted.
// PRE: payload is valid JSON matching EventAnnouncementPayload
// POST: Messages handed to the sender; returns their IDs joined by commas
// INVARIANT: outbox entry status managed by caller
func (e *EventAnnouncementExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var p EventAnnouncementPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	if len(p.Recipients) == 0 {
		return "", nil
	}

	html, err := renderAnnouncement(p)
	if err != nil {
		return "", err
	}
	subject := fmt.Sprintf("%s: %s on %s", p.ClubName, p.Title, p.Date)
	tags := map[string]string{"kind": "event_announcement", "club_id": fmt.Sprint(p.ClubID)}

	msgs := make([]email.Message, 0, len(p.Recipients))
	for _, to := range p.Recipients {
		msgs = append(msgs, email.Message{
			To:      []string{to},
			From:    e.From,
			ReplyTo: e.ReplyTo,
			Subject: subject,
			HTML:    html,
			Text:    p.Title + "\n" + p.Date + "\n\n" + p.Description,
			Tags:    tags,
		})
	}

	var key string
	if p.AnnouncementID != "" {
		key = "event-announcement/" + p.AnnouncementID
	}
	receipts, err := e.Sender.SendBatch(ctx, key, msgs)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(receipts))
	for _, r := range receipts {
		ids = append(ids, r.MessageID)
	}
	return strings.Join(ids, ","), nil
}

func renderAnnouncement(p EventAnnouncementPayload) (string, error) {
	var body bytes.Buffer
	if err := announcementMarkdown.Convert([]byte(p.Description), &body); err != nil {
		return "", fmt.Errorf("render description: %w", err)
	}
	var out bytes.Buffer
	err := announcementTemplate.Execute(&out, struct {
		ClubName, Title, Date string
		Body                  template.HTML
	}{p.ClubName, p.Title, p.Date, template.HTML(body.String())})
	if err != nil {
		return "", fmt.Errorf("render announcement: %w", err)
	}
	return out.String(), nil
}
