package event_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"clubhouse/internal/domain/event"
)

// TestEvent_Validate tests validation of Event.
func TestEvent_Validate(t *testing.T) {
	day := time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		event   event.Event
		wantErr error
	}{
		{name: "valid", event: event.Event{ClubID: 1, Title: "Hackathon", Date: day}},
		{name: "no club", event: event.Event{Title: "Hackathon", Date: day}, wantErr: event.ErrMissingClub},
		{name: "empty title", event: event.Event{ClubID: 1, Date: day}, wantErr: event.ErrEmptyTitle},
		{name: "title too long", event: event.Event{ClubID: 1, Title: strings.Repeat("t", 201), Date: day}, wantErr: event.ErrTitleTooLong},
		{name: "multibyte title at limit", event: event.Event{ClubID: 1, Title: strings.Repeat("ü", 200), Date: day}},
		{name: "multibyte title too long", event: event.Event{ClubID: 1, Title: strings.Repeat("ü", 201), Date: day}, wantErr: event.ErrTitleTooLong},
		{name: "description too long", event: event.Event{ClubID: 1, Title: "T", Description: strings.Repeat("d", 2001), Date: day}, wantErr: event.ErrDescriptionTooLong},
		{name: "no date", event: event.Event{ClubID: 1, Title: "T"}, wantErr: event.ErrMissingDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.event.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestParseDate covers accepted and rejected form values.
func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{in: "2025-11-15", want: "2025-11-15"},
		{in: " 2025-01-02 ", want: "2025-01-02"},
		{in: "", wantErr: event.ErrMissingDate},
		{in: "15/11/2025", wantErr: event.ErrInvalidDate},
		{in: "2025-02-30", wantErr: event.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := event.ParseDate(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseDate(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got.Format(event.DateLayout) != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got.Format(event.DateLayout), tt.want)
			}
		})
	}
}
