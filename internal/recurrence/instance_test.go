package recurrence

import (
	"testing"
	"time"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeInstanceID(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	start := time.Date(2020, 12, 2, 7, 0, 0, 0, ny)

	assert.Equal(t, "abc123_20201202T120000Z", MakeInstanceID("abc123", start, false))
	assert.Equal(t, "abc123_20201227", MakeInstanceID("abc123", time.Date(2020, 12, 27, 0, 0, 0, 0, time.UTC), true))
}

func TestParseInstanceID(t *testing.T) {
	t.Run("timed", func(t *testing.T) {
		id, err := ParseInstanceID("abc123_20201202T120000Z")
		require.NoError(t, err)
		assert.Equal(t, "abc123", id.BaseID)
		assert.Equal(t, "20201202T120000Z", id.Suffix)
		assert.False(t, id.AllDay)
		assert.True(t, id.Start.Equal(time.Date(2020, 12, 2, 12, 0, 0, 0, time.UTC)))
	})

	t.Run("all day", func(t *testing.T) {
		id, err := ParseInstanceID("abc123_20201227")
		require.NoError(t, err)
		assert.True(t, id.AllDay)
		assert.Equal(t, time.Date(2020, 12, 27, 0, 0, 0, 0, time.UTC), id.Start)
	})

	t.Run("splits on last separator", func(t *testing.T) {
		id, err := ParseInstanceID("legacy_base_id_20201202T120000Z")
		require.NoError(t, err)
		assert.Equal(t, "legacy_base_id", id.BaseID)
	})

	for _, bad := range []string{"abc123", "abc123_1212", "abc123_", "abc123_2020-12-02", "_20201202T120000Z", "_20201227"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			_, err := ParseInstanceID(bad)

			var idErr *model.InvalidEventIDError
			require.ErrorAs(t, err, &idErr)
		})
	}
}

func TestVerifyInstanceID(t *testing.T) {
	parent := &model.Event{
		ID: "abc123",
		EventCreate: model.EventCreate{
			Start:       time.Date(2020, 12, 1, 12, 0, 0, 0, time.UTC),
			End:         time.Date(2020, 12, 1, 13, 0, 0, 0, time.UTC),
			TimeZone:    "UTC",
			Recurrences: []string{"RRULE:FREQ=DAILY;COUNT=10"},
		},
	}

	got, err := VerifyInstanceID("abc123_20201202T120000Z", parent, "")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2020, 12, 2, 12, 0, 0, 0, time.UTC)))

	for _, bad := range []string{
		"abc123_1212",
		"other_20201202T120000Z",
		"abc123_20201202T130000Z",
		"abc123_20201230T120000Z",
		"abc123_20201202",
	} {
		_, err := VerifyInstanceID(bad, parent, "")

		var idErr *model.InvalidEventIDError
		assert.ErrorAs(t, err, &idErr, bad)
	}
}

func TestVerifyInstanceIDAllDay(t *testing.T) {
	parent := &model.Event{
		ID: "weekly",
		EventCreate: model.EventCreate{
			Start:       time.Date(2020, 12, 25, 0, 0, 0, 0, time.UTC),
			End:         time.Date(2020, 12, 26, 0, 0, 0, 0, time.UTC),
			StartDay:    "2020-12-25",
			EndDay:      "2020-12-26",
			Recurrences: []string{"RRULE:FREQ=WEEKLY;BYDAY=SU;COUNT=5"},
		},
	}

	got, err := VerifyInstanceID("weekly_20210103", parent, "Europe/Berlin")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 1, 3, 0, 0, 0, 0, time.UTC), got)

	_, err = VerifyInstanceID("weekly_20201225", parent, "")
	var idErr *model.InvalidEventIDError
	assert.ErrorAs(t, err, &idErr)
}
