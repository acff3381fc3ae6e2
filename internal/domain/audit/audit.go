package audit

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Category groups audit events by the area they concern.
type Category string

const (
	CategoryAccount Category = "account"
	CategoryClub    Category = "club"
)

// Action is what the actor did.
type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionRegister Action = "register"
	ActionLogin    Action = "login"
	ActionLogout   Action = "logout"
)

var (
	ErrMissingCategory = errors.New("audit category is required")
	ErrMissingAction   = errors.New("audit action is required")
)

// Event is one row of the audit trail.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Category     Category  `json:"category"`
	Action       Action    `json:"action"`
	ActorID      int64     `json:"actor_id"`
	ActorEmail   string    `json:"actor_email"`
	ResourceType string    `json:"resource_type,omitempty"`
	ResourceID   string    `json:"resource_id,omitempty"`
	Description  string    `json:"description,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
}

// NewEvent creates an event stamped with a fresh ID and the current time.
// PRE: category and action are non-empty
// POST: Returns an Event with ID and Timestamp set
func NewEvent(actorID int64, actorEmail string, category Category, action Action) Event {
	return Event{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Category:   category,
		Action:     action,
		ActorID:    actorID,
		ActorEmail: actorEmail,
	}
}

// WithResource names the row the action touched.
func (e Event) WithResource(resourceType, resourceID string) Event {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithDescription sets a human-readable summary.
func (e Event) WithDescription(desc string) Event {
	e.Description = desc
	return e
}

// WithIP records the client address.
func (e Event) WithIP(ip string) Event {
	e.IPAddress = ip
	return e
}

// Validate checks the fields the trail is filtered on.
func (e Event) Validate() error {
	if e.Category == "" {
		return ErrMissingCategory
	}
	if e.Action == "" {
		return ErrMissingAction
	}
	return nil
}
