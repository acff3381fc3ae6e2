package event

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the calendar-day format used in forms and storage.
const DateLayout = "2006-01-02"

// Max length constants.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
)

// Domain errors
var (
	ErrEmptyTitle         = errors.New("event title cannot be empty")
	ErrTitleTooLong       = errors.New("event title cannot exceed 200 characters")
	ErrDescriptionTooLong = errors.New("event description cannot exceed 2000 characters")
	ErrMissingDate        = errors.New("event date is required")
	ErrInvalidDate        = errors.New("event date must be in YYYY-MM-DD format")
	ErrMissingClub        = errors.New("event must belong to a club")
)

// Event is a dated happening scheduled by a club coordinator.
// PRE: Title is non-empty. Date is set.
type Event struct {
	ID          int64
	ClubID      int64
	Title       string
	Description string
	Date        time.Time // calendar day, time of day is ignored
}

// Validate checks the event's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (e *Event) Validate() error {
	if e.ClubID <= 0 {
		return ErrMissingClub
	}
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(e.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if utf8.RuneCountInString(e.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if e.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// DateString returns the event day in DateLayout.
func (e *Event) DateString() string {
	return e.Date.Format(DateLayout)
}

// ParseDate parses a form value in DateLayout.
// PRE: none
// POST: returns ErrMissingDate for blank input, ErrInvalidDate for bad format
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrMissingDate
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}
