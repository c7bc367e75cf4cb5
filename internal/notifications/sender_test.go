package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/database"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/pkg/fcm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUsers []*model.User

func (f fakeUsers) GetUsers(context.Context, database.Queryable, model.UsersFilter) ([]*model.User, error) {
	return f, nil
}

type fakeCalendars []*model.Calendar

func (f fakeCalendars) GetCalendars(_ context.Context, _ database.Queryable, filter model.CalendarsFilter) ([]*model.Calendar, error) {
	var res []*model.Calendar
	for _, c := range f {
		for _, id := range filter.UserIDs {
			if c.UserID == id {
				res = append(res, c)
			}
		}
	}
	return res, nil
}

type fakeEvents map[int64][]*model.Event

func (f fakeEvents) GetEvents(_ context.Context, _ *model.User, calendar *model.Calendar, filter model.EventsFilter) ([]*model.Event, error) {
	var res []*model.Event
	for _, e := range f[calendar.ID] {
		if e.Overlaps(filter.From, filter.To) {
			res = append(res, e)
		}
	}
	return res, nil
}

type fakeFCM struct {
	sent []*fcm.Message
}

func (f *fakeFCM) SendMessageBatch(_ context.Context, ms []*fcm.Message) error {
	f.sent = append(f.sent, ms...)
	return nil
}

func TestNewSenderRejectsUnknownLead(t *testing.T) {
	_, err := NewSender(nil, zap.NewNop().Sugar(), nil, nil, nil, nil, 7*time.Minute)
	assert.Error(t, err)
}

func TestFindAndSendReminders(t *testing.T) {
	from := time.Date(2020, 1, 2, 11, 45, 0, 0, time.UTC)
	due := from.Add(15 * time.Minute)

	events := fakeEvents{
		10: {
			{ID: "due", EventCreate: model.EventCreate{Title: "Standup", Start: due, End: due.Add(time.Hour)}},
			{ID: "ongoing", EventCreate: model.EventCreate{Title: "Workshop", Start: due.Add(-time.Hour), End: due.Add(time.Hour)}},
			{ID: "allday", EventCreate: model.EventCreate{Start: due, End: due.Add(24 * time.Hour), StartDay: "2020-01-02", EndDay: "2020-01-03"}},
		},
		20: {
			{ID: "other", EventCreate: model.EventCreate{Title: "Lunch", Start: due.Add(30 * time.Second), End: due.Add(time.Hour)}},
		},
	}
	push := &fakeFCM{}

	s, err := NewSender(
		nil,
		zap.NewNop().Sugar(),
		fakeUsers{{ID: 1, PushToken: "token-1", Notify: true}},
		fakeCalendars{{ID: 10, UserID: 1}, {ID: 20, UserID: 1}, {ID: 30, UserID: 2}},
		events,
		push,
		15*time.Minute,
	)
	require.NoError(t, err)

	s.findAndSendReminders(context.Background(), from, from.Add(time.Minute))

	require.Len(t, push.sent, 2)
	assert.Equal(t, "due", push.sent[0].Data["event_id"])
	assert.Equal(t, "10", push.sent[0].Data["calendar_id"])
	assert.Equal(t, "2", push.sent[0].Data["notification_type"])
	assert.Equal(t, "other", push.sent[1].Data["event_id"])
	assert.Equal(t, "token-1", push.sent[1].Token)
}
