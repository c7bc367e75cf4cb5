package model

import (
	"time"

	"github.com/google/uuid"
)

const DayFormat = "2006-01-02"

type EventStatus string

const (
	EventStatusActive    EventStatus = "active"
	EventStatusTentative EventStatus = "tentative"
	EventStatusDeleted   EventStatus = "deleted"
)

type ResponseStatus string

const (
	ResponseNeedsAction ResponseStatus = "needsAction"
	ResponseAccepted    ResponseStatus = "accepted"
	ResponseDeclined    ResponseStatus = "declined"
	ResponseTentative   ResponseStatus = "tentative"
)

type Person struct {
	Email       string
	DisplayName string
}

type Participant struct {
	Person
	ResponseStatus ResponseStatus
}

// EventCreate holds the fields a caller can write.
type EventCreate struct {
	Title       string
	Description string
	Location    string

	// Start and End are the authoritative instants of a timed event. For an
	// all-day event they hold the naive dates at UTC midnight.
	Start    time.Time
	End      time.Time
	StartDay string
	EndDay   string
	TimeZone string

	Recurrences []string

	RecurringEventID string
	OriginalStart    *time.Time

	Status       EventStatus
	Participants []*Participant
	LabelIDs     []int64

	GuestsCanModify         bool
	GuestsCanInviteOthers   bool
	GuestsCanSeeOtherGuests bool
}

type Event struct {
	UID        uuid.UUID
	ID         string
	CalendarID int64

	OriginalStartDay string
	OriginalTimezone string

	Organizer  *Person
	Creator    *Person
	ProviderID string
	UpdatedAt  time.Time

	EventCreate
}

func (e *EventCreate) IsAllDay() bool {
	return e.StartDay != "" && e.EndDay != ""
}

func (e *EventCreate) IsRecurring() bool {
	return len(e.Recurrences) != 0
}

func (e *EventCreate) IsInstance() bool {
	return e.RecurringEventID != ""
}

// Overlaps reports whether the event intersects the inclusive window.
func (e *EventCreate) Overlaps(from, to time.Time) bool {
	return !e.End.Before(from) && !e.Start.After(to)
}

// Clone returns a deep copy so instances never share slices with their template.
func (e *Event) Clone() *Event {
	c := *e

	c.Recurrences = append([]string(nil), e.Recurrences...)
	c.LabelIDs = append([]int64(nil), e.LabelIDs...)

	if e.Participants != nil {
		c.Participants = make([]*Participant, len(e.Participants))
		for i, p := range e.Participants {
			pc := *p
			c.Participants[i] = &pc
		}
	}

	if e.Organizer != nil {
		o := *e.Organizer
		c.Organizer = &o
	}
	if e.Creator != nil {
		cr := *e.Creator
		c.Creator = &cr
	}
	if e.OriginalStart != nil {
		t := *e.OriginalStart
		c.OriginalStart = &t
	}

	return &c
}

type EventsFilter struct {
	CalendarID int64
	From       time.Time
	To         time.Time
	Limit      int
	Query      string
}
