package club

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 2000
)

// Domain errors
var (
	ErrEmptyName          = errors.New("club name cannot be empty")
	ErrNameTooLong        = errors.New("club name cannot exceed 100 characters")
	ErrDescriptionTooLong = errors.New("club description cannot exceed 2000 characters")
	ErrNotFound           = errors.New("club not found")
)

// Club is a student organisation that users can join.
// INVARIANT: Name is unique across all clubs (enforced by store)
type Club struct {
	ID          int64
	Name        string
	Description string
	CreatedBy   int64 // account ID of the admin who created it; 0 if unknown
}

// Validate checks if the Club has valid data.
// PRE: Club struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Club) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(c.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if utf8.RuneCountInString(c.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}
