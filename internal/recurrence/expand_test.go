package recurrence

import (
	"testing"
	"time"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestExpander() *Expander {
	return NewExpander(zap.NewNop().Sugar())
}

func dailyBase() *model.Event {
	return &model.Event{
		UID:        uuid.New(),
		ID:         "abc",
		CalendarID: 7,
		EventCreate: model.EventCreate{
			Title:       "Standup",
			Start:       time.Date(2020, 1, 2, 12, 0, 0, 0, time.UTC),
			End:         time.Date(2020, 1, 2, 12, 30, 0, 0, time.UTC),
			TimeZone:    "UTC",
			Recurrences: []string{"RRULE:FREQ=DAILY;UNTIL=20200107T120000Z"},
			Status:      model.EventStatusActive,
			Participants: []*model.Participant{
				{Person: model.Person{Email: "a@example.com"}, ResponseStatus: model.ResponseAccepted},
			},
		},
	}
}

func overrideOf(base *model.Event, originalStart time.Time) *model.Event {
	o := base.Clone()
	o.UID = uuid.New()
	o.ID = MakeInstanceID(base.ID, originalStart, false)
	o.Recurrences = nil
	o.RecurringEventID = base.ID
	o.OriginalStart = &originalStart
	o.Start = originalStart
	o.End = originalStart.Add(base.End.Sub(base.Start))
	return o
}

func TestExpandScenarioA(t *testing.T) {
	base := dailyBase()

	it, err := newTestExpander().Expand(base, nil,
		time.Date(2020, 1, 2, 12, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 3, 12, 0, 0, 0, time.UTC),
		ExpandOptions{})
	require.NoError(t, err)

	got := it.Collect()
	require.Len(t, got, 2)
	assert.Equal(t, 24*time.Hour, got[1].Start.Sub(got[0].Start))
	assert.Equal(t, 30*time.Minute, got[0].End.Sub(got[0].Start))

	all, err := newTestExpander().Expand(base, nil,
		time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		ExpandOptions{})
	require.NoError(t, err)
	assert.Len(t, all.Collect(), 6)
}

func TestExpandVirtualInstances(t *testing.T) {
	base := dailyBase()

	it, err := newTestExpander().Expand(base, nil,
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC),
		ExpandOptions{})
	require.NoError(t, err)

	for _, e := range it.Collect() {
		assert.Equal(t, uuid.Nil, e.UID)
		assert.Equal(t, base.ID, e.RecurringEventID)
		assert.Equal(t, base.Recurrences, e.Recurrences)
		assert.Equal(t, base.Title, e.Title)
		require.NotNil(t, e.OriginalStart)
		assert.True(t, e.OriginalStart.Equal(e.Start))

		parsed, err := ParseInstanceID(e.ID)
		require.NoError(t, err)
		assert.Equal(t, base.ID, parsed.BaseID)
		assert.Equal(t, FormatInstant(*e.OriginalStart, false), parsed.Suffix)
		assert.Equal(t, e.ID, MakeInstanceID(base.ID, *e.OriginalStart, false))

		// instances do not share slices with the template
		e.Participants[0].ResponseStatus = model.ResponseDeclined
		assert.Equal(t, model.ResponseAccepted, base.Participants[0].ResponseStatus)
	}
}

func TestExpandIsDeterministic(t *testing.T) {
	base := dailyBase()
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2020, 1, 5, 0, 0, 0, 0, time.UTC)
	overrides := map[string]*model.Event{}
	o := overrideOf(base, time.Date(2020, 1, 3, 12, 0, 0, 0, time.UTC))
	overrides[o.ID] = o

	first, err := newTestExpander().Expand(base, overrides, from, to, ExpandOptions{})
	require.NoError(t, err)
	second, err := newTestExpander().Expand(base, overrides, from, to, ExpandOptions{})
	require.NoError(t, err)

	assert.Equal(t, first.Collect(), second.Collect())
}

func TestExpandOverridePrecedence(t *testing.T) {
	base := dailyBase()

	// instance index 2 is 2020-01-04
	o := overrideOf(base, time.Date(2020, 1, 4, 12, 0, 0, 0, time.UTC))
	o.Title = "Override"

	it, err := newTestExpander().Expand(base, map[string]*model.Event{o.ID: o},
		time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 5, 0, 0, 0, 0, time.UTC),
		ExpandOptions{})
	require.NoError(t, err)

	got := it.Collect()
	require.Len(t, got, 2)
	assert.Equal(t, "Standup", got[0].Title)
	assert.Equal(t, "Override", got[1].Title)
	assert.Equal(t, o.UID, got[1].UID)
	assert.Equal(t, base.Recurrences, got[1].Recurrences)
	assert.Equal(t, base.CalendarID, got[1].CalendarID)
}

func TestExpandSuppressesDeletedOverrides(t *testing.T) {
	base := dailyBase()

	deleted := time.Date(2020, 1, 4, 12, 0, 0, 0, time.UTC)
	o := overrideOf(base, deleted)
	o.Status = model.EventStatusDeleted

	it, err := newTestExpander().Expand(base, map[string]*model.Event{o.ID: o},
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC),
		ExpandOptions{})
	require.NoError(t, err)

	got := it.Collect()
	require.Len(t, got, 5)
	for _, e := range got {
		assert.False(t, e.Start.Equal(deleted))
	}
}

func TestExpandScenarioCAllDay(t *testing.T) {
	base := &model.Event{
		ID: "weekly",
		EventCreate: model.EventCreate{
			Title:       "Brunch",
			Start:       time.Date(2020, 12, 25, 0, 0, 0, 0, time.UTC),
			End:         time.Date(2020, 12, 26, 0, 0, 0, 0, time.UTC),
			StartDay:    "2020-12-25",
			EndDay:      "2020-12-26",
			TimeZone:    "America/Los_Angeles",
			Recurrences: []string{"RRULE:FREQ=WEEKLY;BYDAY=SU;COUNT=5"},
		},
	}

	it, err := newTestExpander().Expand(base, nil,
		time.Date(2020, 12, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC),
		ExpandOptions{})
	require.NoError(t, err)

	got := it.Collect()
	require.Len(t, got, 5)

	assert.Equal(t, "2020-12-27", got[0].StartDay)
	assert.Equal(t, "2020-12-28", got[0].EndDay)
	assert.Equal(t, "weekly_20201227", got[0].ID)
	assert.Equal(t, time.Sunday, got[0].Start.Weekday())

	for i, e := range got {
		assert.True(t, e.IsAllDay())
		assert.Equal(t, time.UTC, e.Start.Location())
		assert.Equal(t, 0, e.Start.Hour())
		if i > 0 {
			assert.Equal(t, 7*24*time.Hour, e.Start.Sub(got[i-1].Start))
		}
	}
}

func TestExpandCapsInstances(t *testing.T) {
	base := dailyBase()
	base.Recurrences = []string{"RRULE:FREQ=HOURLY;COUNT=3000"}

	it, err := newTestExpander().Expand(base, nil,
		base.Start, base.Start.AddDate(1, 0, 0), ExpandOptions{})
	require.NoError(t, err)

	assert.Len(t, it.Collect(), MaxRecurringEventCount)
}

func TestExpandShortCircuitsPastUntil(t *testing.T) {
	it, err := newTestExpander().Expand(dailyBase(), nil,
		time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC),
		ExpandOptions{})
	require.NoError(t, err)

	_, ok := it.Next()
	assert.False(t, ok)
}

func TestExpandWithoutRecurrencesYieldsNothing(t *testing.T) {
	base := dailyBase()
	base.Recurrences = nil

	it, err := newTestExpander().Expand(base, nil,
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC),
		ExpandOptions{})
	require.NoError(t, err)
	assert.Empty(t, it.Collect())
}

func TestExpandInvalidRule(t *testing.T) {
	base := dailyBase()
	base.Recurrences = []string{"DTSTART:20200102T120000Z", "RRULE:FREQ=DAILY"}

	_, err := newTestExpander().Expand(base, nil, base.Start, base.End, ExpandOptions{})

	var recErr *model.InvalidRecurrenceError
	assert.ErrorAs(t, err, &recErr)
}

func TestExpandUsesFallbackZone(t *testing.T) {
	base := dailyBase()
	base.TimeZone = ""
	base.Recurrences = []string{"RRULE:FREQ=WEEKLY;COUNT=3"}
	// 09:00 in Berlin before the daylight saving switch on 2020-03-29
	base.Start = time.Date(2020, 3, 20, 8, 0, 0, 0, time.UTC)
	base.End = base.Start.Add(time.Hour)

	it, err := newTestExpander().Expand(base, nil,
		base.Start, base.Start.AddDate(0, 1, 0),
		ExpandOptions{TimeZone: "Europe/Berlin"})
	require.NoError(t, err)

	got := it.Collect()
	require.Len(t, got, 3)
	assert.Equal(t, 8, got[1].Start.UTC().Hour())
	assert.Equal(t, 7, got[2].Start.UTC().Hour())
	assert.Equal(t, "Europe/Berlin", got[2].OriginalTimezone)
}

func TestExpandFiltersByQuery(t *testing.T) {
	base := dailyBase()
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC)

	o := overrideOf(base, time.Date(2020, 1, 3, 12, 0, 0, 0, time.UTC))
	o.Title = "Retro"
	overrides := map[string]*model.Event{o.ID: o}

	tests := []struct {
		query string
		want  int
	}{
		{query: "", want: 6},
		{query: "STAND", want: 5},
		{query: "nothing|retro", want: 1},
		{query: "up|tro", want: 6},
		{query: "planning", want: 0},
	}

	for _, tt := range tests {
		it, err := newTestExpander().Expand(base, overrides, from, to, ExpandOptions{Query: tt.query})
		require.NoError(t, err)
		assert.Len(t, it.Collect(), tt.want, tt.query)
	}
}
