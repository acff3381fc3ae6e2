package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"clubhouse/internal/adapters/storage"
	"clubhouse/internal/domain/club"
	"clubhouse/internal/domain/event"
	"clubhouse/internal/domain/membership"
	"clubhouse/internal/domain/outbox"
)

// EventStoreForCreate defines the store interface needed by CreateEvent.
type EventStoreForCreate interface {
	Create(ctx context.Context, e event.Event) (int64, error)
}

// ClubStoreForLookup reads a single club.
type ClubStoreForLookup interface {
	GetByID(ctx context.Context, id int64) (club.Club, error)
}

// MemberLister lists a club's members with contact details.
type MemberLister interface {
	ListMembers(ctx context.Context, clubID int64) ([]membership.Member, error)
}

// OutboxStoreForEnqueue persists new outbox entries.
type OutboxStoreForEnqueue interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// CreateEventInput carries the event form.
type CreateEventInput struct {
	ClubID      int64
	Title       string
	Description string
	Date        string // YYYY-MM-DD
}

// CreateEventDeps holds dependencies for CreateEvent. Announcement deps
// are optional: a nil OutboxStore disables announcements.
type CreateEventDeps struct {
	EventStore      EventStoreForCreate
	ClubStore       ClubStoreForLookup
	MembershipStore MemberLister
	OutboxStore     OutboxStoreForEnqueue
}

// EventAnnouncementPayload is the outbox payload for ActionTypeEventAnnouncement.
// It is a snapshot taken when the event is created.
// AnnouncementID equals the outbox entry ID and keys provider-side deduplication.
type EventAnnouncementPayload struct {
	AnnouncementID string   `json:"announcement_id"`
	EventID        int64    `json:"event_id"`
	ClubID         int64    `json:"club_id"`
	ClubName       string   `json:"club_name"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Date           string   `json:"date"`
	Recipients     []string `json:"recipients"`
}

// ExecuteCreateEvent schedules an event for a club and queues its announcement.
// PRE: the caller has verified the acting user coordinates input.ClubID
// POST: Event row exists; announcement queued when the club has members
func ExecuteCreateEvent(ctx context.Context, input CreateEventInput, deps CreateEventDeps) (int64, error) {
	date, err := event.ParseDate(input.Date)
	if err != nil {
		return 0, err
	}
	e := event.Event{
		ClubID:      input.ClubID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Date:        date,
	}
	if err := e.Validate(); err != nil {
		return 0, err
	}

	id, err := deps.EventStore.Create(ctx, e)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, club.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("create event: %w", err)
	}
	e.ID = id
	slog.Info("event_event", "event", "event_created", "event_id", id, "club_id", e.ClubID, "date", e.DateString())

	if deps.OutboxStore != nil {
		if err := enqueueAnnouncement(ctx, e, deps); err != nil {
			slog.Error("announcement_enqueue_failed", "event_id", id, "error", err.Error())
		}
	}
	return id, nil
}

func enqueueAnnouncement(ctx context.Context, e event.Event, deps CreateEventDeps) error {
	c, err := deps.ClubStore.GetByID(ctx, e.ClubID)
	if err != nil {
		return fmt.Errorf("load club: %w", err)
	}
	members, err := deps.MembershipStore.ListMembers(ctx, e.ClubID)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}
	if len(members) == 0 {
		return nil
	}

	entryID := uuid.NewString()
	payload := EventAnnouncementPayload{
		AnnouncementID: entryID,
		EventID:        e.ID,
		ClubID:         c.ID,
		ClubName:       c.Name,
		Title:          e.Title,
		Description:    e.Description,
		Date:           e.DateString(),
	}
	for _, m := range members {
		payload.Recipients = append(payload.Recipients, m.Email)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	entry := outbox.Entry{
		ID:         entryID,
		ActionType: outbox.ActionTypeEventAnnouncement,
		Payload:    string(body),
		Status:     outbox.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	return deps.OutboxStore.Save(ctx, entry)
}
