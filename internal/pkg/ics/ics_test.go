package ics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feed = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:weekly@example.com
DTSTAMP:20200101T000000Z
DTSTART;TZID=Europe/Berlin:20200106T090000
DTEND;TZID=Europe/Berlin:20200106T100000
RRULE:FREQ=WEEKLY;COUNT=4
EXDATE;TZID=Europe/Berlin:20200113T090000
SUMMARY:Weekly sync
ORGANIZER;CN=Boss:mailto:boss@example.com
ATTENDEE;PARTSTAT=ACCEPTED:mailto:dev@example.com
END:VEVENT
BEGIN:VEVENT
UID:weekly@example.com
DTSTAMP:20200101T000000Z
RECURRENCE-ID;TZID=Europe/Berlin:20200120T090000
DTSTART;TZID=Europe/Berlin:20200120T110000
DTEND;TZID=Europe/Berlin:20200120T120000
SUMMARY:Weekly sync (moved)
END:VEVENT
BEGIN:VEVENT
UID:holiday@example.com
DTSTAMP:20200101T000000Z
DTSTART;VALUE=DATE:20200101
SUMMARY:Holiday
STATUS:TENTATIVE
END:VEVENT
BEGIN:VEVENT
DTSTAMP:20200101T000000Z
DTSTART:20200101T100000Z
SUMMARY:No uid
END:VEVENT
END:VCALENDAR
`

func TestDecode(t *testing.T) {
	var skipped int
	events, err := Decode(strings.NewReader(strings.ReplaceAll(feed, "\n", "\r\n")), func(string, error) {
		skipped++
	})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, 1, skipped)

	base := events[0]
	assert.Equal(t, "weekly@example.com", base.ProviderID)
	assert.Equal(t, "Europe/Berlin", base.TimeZone)
	assert.True(t, base.Start.Equal(time.Date(2020, 1, 6, 8, 0, 0, 0, time.UTC)))
	assert.True(t, base.End.Equal(time.Date(2020, 1, 6, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, []string{
		"RRULE:FREQ=WEEKLY;COUNT=4",
		"EXDATE;TZID=Europe/Berlin:20200113T090000",
	}, base.Recurrences)
	require.NotNil(t, base.Organizer)
	assert.Equal(t, "boss@example.com", base.Organizer.Email)
	assert.Equal(t, "Boss", base.Organizer.DisplayName)
	require.Len(t, base.Participants, 1)
	assert.Equal(t, model.ResponseAccepted, base.Participants[0].ResponseStatus)

	moved := events[1]
	assert.Equal(t, "weekly@example.com", moved.RecurringEventID)
	assert.Equal(t, "weekly@example.com_20200120T090000", moved.ProviderID)
	require.NotNil(t, moved.OriginalStart)
	assert.True(t, moved.OriginalStart.Equal(time.Date(2020, 1, 20, 8, 0, 0, 0, time.UTC)))
	assert.Empty(t, moved.Recurrences)

	holiday := events[2]
	assert.True(t, holiday.IsAllDay())
	assert.Equal(t, "2020-01-01", holiday.StartDay)
	assert.Equal(t, "2020-01-02", holiday.EndDay)
	assert.Equal(t, model.EventStatusTentative, holiday.Status)
}

func TestEncode(t *testing.T) {
	calendar := &model.Calendar{ID: 1, Name: "main", Timezone: "UTC"}

	base := &model.Event{
		UID: uuid.MustParse("6f1c1c5e-8d7c-4b7a-9d0b-0a2f6f0b9d11"),
		ID:  "base",
		EventCreate: model.EventCreate{
			Title:       "Standup",
			Start:       time.Date(2020, 1, 2, 12, 0, 0, 0, time.UTC),
			End:         time.Date(2020, 1, 2, 12, 30, 0, 0, time.UTC),
			TimeZone:    "UTC",
			Recurrences: []string{"RRULE:FREQ=DAILY;COUNT=5"},
			Status:      model.EventStatusActive,
		},
	}

	movedFrom := time.Date(2020, 1, 3, 12, 0, 0, 0, time.UTC)
	deletedFrom := time.Date(2020, 1, 4, 12, 0, 0, 0, time.UTC)
	overrides := []*model.Event{
		{
			ID: "base_20200103T120000Z",
			EventCreate: model.EventCreate{
				Title:            "Moved",
				Start:            movedFrom.Add(time.Hour),
				End:              movedFrom.Add(2 * time.Hour),
				RecurringEventID: "base",
				OriginalStart:    &movedFrom,
				Status:           model.EventStatusActive,
			},
		},
		{
			ID: "base_20200104T120000Z",
			EventCreate: model.EventCreate{
				Start:            deletedFrom,
				End:              deletedFrom.Add(30 * time.Minute),
				RecurringEventID: "base",
				OriginalStart:    &deletedFrom,
				Status:           model.EventStatusDeleted,
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, calendar, []*model.Event{base}, overrides))

	out := buf.String()
	assert.Contains(t, out, "RRULE:FREQ=DAILY;COUNT=5")
	assert.Contains(t, out, "EXDATE;TZID=UTC:20200104T120000")
	assert.Contains(t, out, "RECURRENCE-ID;TZID=UTC:20200103T120000")
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))

	events, err := Decode(&buf, nil)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, base.UID.String(), events[1].RecurringEventID)
	assert.True(t, events[1].OriginalStart.Equal(movedFrom))
}
