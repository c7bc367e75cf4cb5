package recurrence

import (
	"testing"
	"time"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectTimes(o *Occurrences) []time.Time {
	var res []time.Time
	for t, ok := o.Next(); ok; t, ok = o.Next() {
		res = append(res, t)
	}
	return res
}

func TestParseRuleRejectsInvalidInput(t *testing.T) {
	start := time.Date(2020, 1, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		lines    []string
		timezone string
		start    time.Time
		startDay string
	}{
		{name: "no lines", lines: nil, start: start},
		{name: "embedded dtstart", lines: []string{"DTSTART:20200102T120000Z", "RRULE:FREQ=DAILY"}, start: start},
		{name: "embedded dtend", lines: []string{"RRULE:FREQ=DAILY", "DTEND:20200102T130000Z"}, start: start},
		{name: "unknown zone", lines: []string{"RRULE:FREQ=DAILY"}, timezone: "Mars/Olympus", start: start},
		{name: "no anchor", lines: []string{"RRULE:FREQ=DAILY"}},
		{name: "bad start day", lines: []string{"RRULE:FREQ=DAILY"}, startDay: "2020/01/02"},
		{name: "garbage rule", lines: []string{"RRULE:FREQ=SOMETIMES"}, start: start},
		{name: "secondly", lines: []string{"RRULE:FREQ=SECONDLY"}, start: start},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRule(tt.lines, tt.timezone, tt.start, tt.startDay)

			var recErr *model.InvalidRecurrenceError
			require.ErrorAs(t, err, &recErr)
		})
	}
}

func TestRuleSetBetweenIsInclusiveAndRestartable(t *testing.T) {
	start := time.Date(2020, 1, 2, 12, 0, 0, 0, time.UTC)
	rs, err := ParseRule([]string{"RRULE:FREQ=DAILY;UNTIL=20200107T120000Z"}, "UTC", start, "")
	require.NoError(t, err)

	from := time.Date(2020, 1, 3, 12, 0, 0, 0, time.UTC)
	to := time.Date(2020, 1, 5, 12, 0, 0, 0, time.UTC)

	first := collectTimes(rs.Between(from, to))
	second := collectTimes(rs.Between(from, to))

	require.Len(t, first, 3)
	assert.True(t, first[0].Equal(from))
	assert.True(t, first[2].Equal(to))
	assert.Equal(t, first, second)
}

func TestRuleSetCapsOccurrences(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	far := start.AddDate(50, 0, 0)

	for _, rule := range []string{
		"RRULE:FREQ=DAILY;COUNT=5000",
		"RRULE:FREQ=MINUTELY",
	} {
		rs, err := ParseRule([]string{rule}, "UTC", start, "")
		require.NoError(t, err)

		assert.Len(t, collectTimes(rs.Between(start, far)), MaxRecurringEventCount, rule)
	}
}

func TestRuleSetLocalizesToZone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2021-03-14 is the US switch to daylight saving time.
	start := time.Date(2021, 3, 8, 9, 0, 0, 0, ny)
	rs, err := ParseRule([]string{"RRULE:FREQ=WEEKLY;COUNT=2"}, "America/New_York", start.UTC(), "")
	require.NoError(t, err)

	got := collectTimes(rs.Between(start.AddDate(0, 0, -1), start.AddDate(0, 0, 14)))
	require.Len(t, got, 2)

	for _, g := range got {
		assert.Equal(t, 9, g.In(ny).Hour())
	}
	assert.Equal(t, 14, got[0].UTC().Hour())
	assert.Equal(t, 13, got[1].UTC().Hour())
}

func TestRuleSetNaiveDates(t *testing.T) {
	rs, err := ParseRule([]string{"RRULE:FREQ=DAILY;COUNT=3"}, "Asia/Tokyo", time.Time{}, "2020-12-25")
	require.NoError(t, err)
	assert.True(t, rs.Naive())

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// The wall clock of the bound is kept, its zone is dropped.
	from := time.Date(2020, 12, 26, 0, 0, 0, 0, tokyo)
	got := collectTimes(rs.Between(from, from.AddDate(0, 0, 10)))

	require.Len(t, got, 2)
	assert.Equal(t, time.Date(2020, 12, 26, 0, 0, 0, 0, time.UTC), got[0])
	assert.Equal(t, time.UTC, got[0].Location())
}

func TestRuleSetExDateAndContains(t *testing.T) {
	start := time.Date(2020, 1, 2, 12, 0, 0, 0, time.UTC)
	rs, err := ParseRule([]string{
		"RRULE:FREQ=DAILY;COUNT=5",
		"EXDATE:20200104T120000Z",
	}, "UTC", start, "")
	require.NoError(t, err)

	assert.True(t, rs.Contains(time.Date(2020, 1, 3, 12, 0, 0, 0, time.UTC)))
	assert.False(t, rs.Contains(time.Date(2020, 1, 4, 12, 0, 0, 0, time.UTC)))
	assert.False(t, rs.Contains(time.Date(2020, 1, 3, 13, 0, 0, 0, time.UTC)))
	assert.Len(t, collectTimes(rs.Between(start, start.AddDate(0, 1, 0))), 4)
}

func TestRuleSetUntil(t *testing.T) {
	start := time.Date(2020, 1, 2, 12, 0, 0, 0, time.UTC)

	rs, err := ParseRule([]string{"RRULE:FREQ=DAILY;UNTIL=20200107T120000Z"}, "UTC", start, "")
	require.NoError(t, err)
	until, ok := rs.Until()
	require.True(t, ok)
	assert.True(t, until.Equal(time.Date(2020, 1, 7, 12, 0, 0, 0, time.UTC)))

	rs, err = ParseRule([]string{"RRULE:FREQ=DAILY"}, "UTC", start, "")
	require.NoError(t, err)
	_, ok = rs.Until()
	assert.False(t, ok)
}

func TestRuleSetStopsAfterIterationBudget(t *testing.T) {
	defer func(old int) { maxRuleIterations = old }(maxRuleIterations)
	maxRuleIterations = 10_000

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	rs, err := ParseRule([]string{"RRULE:FREQ=MINUTELY"}, "UTC", start, "")
	require.NoError(t, err)

	// A window ten years out lies millions of minutes past the anchor.
	from := start.AddDate(10, 0, 0)
	assert.Empty(t, collectTimes(rs.Between(from, from.Add(time.Hour))))

	// Windows close to the anchor are unaffected.
	assert.Len(t, collectTimes(rs.Between(start, start.Add(time.Hour))), 61)
}
