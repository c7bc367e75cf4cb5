package recurrence

import (
	"testing"
	"time"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionOverrides(t *testing.T) {
	base := dailyBase()
	from := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2020, 1, 4, 23, 0, 0, 0, time.UTC)

	inside := overrideOf(base, time.Date(2020, 1, 3, 12, 0, 0, 0, time.UTC))

	movedIn := overrideOf(base, time.Date(2020, 1, 6, 12, 0, 0, 0, time.UTC))
	movedIn.Start = time.Date(2020, 1, 3, 15, 0, 0, 0, time.UTC)
	movedIn.End = movedIn.Start.Add(time.Hour)

	deletedElsewhere := overrideOf(base, time.Date(2020, 1, 5, 12, 0, 0, 0, time.UTC))
	deletedElsewhere.Status = model.EventStatusDeleted

	legacy := overrideOf(base, time.Date(2020, 1, 2, 12, 0, 0, 0, time.UTC))
	legacy.OriginalStart = nil

	p := PartitionOverrides([]*model.Event{inside, movedIn, deletedElsewhere, legacy}, from, to)

	require.Len(t, p.ByBase[base.ID], 1)
	assert.Same(t, inside, p.ByBase[base.ID][inside.ID])
	assert.ElementsMatch(t, []*model.Event{movedIn, legacy}, p.MovedIn)
}

func TestExpandAllMergesMovedOverrides(t *testing.T) {
	base := dailyBase()
	base.Recurrences = []string{"RRULE:FREQ=DAILY;UNTIL=20200130T120000Z"}
	from := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2020, 1, 4, 23, 59, 0, 0, time.UTC)

	movedOut := overrideOf(base, time.Date(2020, 1, 3, 12, 0, 0, 0, time.UTC))
	movedOut.Start = time.Date(2020, 1, 10, 12, 0, 0, 0, time.UTC)
	movedOut.End = movedOut.Start.Add(time.Hour)

	movedIn := overrideOf(base, time.Date(2020, 1, 20, 12, 0, 0, 0, time.UTC))
	movedIn.Title = "Moved"
	movedIn.Start = time.Date(2020, 1, 3, 15, 0, 0, 0, time.UTC)
	movedIn.End = movedIn.Start.Add(time.Hour)

	got, err := newTestExpander().ExpandAll([]*model.Event{base}, []*model.Event{movedOut, movedIn}, from, to, ExpandOptions{})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.True(t, got[0].Start.Equal(time.Date(2020, 1, 2, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Moved", got[1].Title)
	assert.Equal(t, base.Recurrences, got[1].Recurrences)
	assert.True(t, got[2].Start.Equal(time.Date(2020, 1, 4, 12, 0, 0, 0, time.UTC)))

	filtered, err := newTestExpander().ExpandAll([]*model.Event{base}, []*model.Event{movedOut, movedIn}, from, to, ExpandOptions{Query: "mov"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, movedIn.ID, filtered[0].ID)
}

func TestExpandAllSortsAcrossBases(t *testing.T) {
	morning := dailyBase()
	evening := dailyBase()
	evening.ID = "evening"
	evening.Start = time.Date(2020, 1, 2, 18, 0, 0, 0, time.UTC)
	evening.End = evening.Start.Add(time.Hour)
	from := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2020, 1, 3, 23, 0, 0, 0, time.UTC)

	got, err := newTestExpander().ExpandAll([]*model.Event{evening, morning}, nil, from, to, ExpandOptions{})
	require.NoError(t, err)

	require.Len(t, got, 4)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Start.Before(got[i-1].Start))
	}
	assert.Equal(t, "abc", got[0].RecurringEventID)
	assert.Equal(t, "evening", got[1].RecurringEventID)
}
