package events

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/database"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/recurrence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"go.uber.org/zap"
)

type fakeDB struct {
	database.PGX
}

func (fakeDB) BeginTx(context.Context, *pgx.TxOptions) (database.Tx, error) {
	return fakeTx{}, nil
}

type fakeTx struct {
	database.Tx
}

func (fakeTx) Commit(context.Context) error   { return nil }
func (fakeTx) Rollback(context.Context) error { return nil }

// fakeEvents keeps rows keyed by calendar and id, mirroring the
// UNIQUE (calendar_id, id) constraint.
type fakeEvents struct {
	rows map[string]*model.Event
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{rows: make(map[string]*model.Event)}
}

func rowKey(calendarID int64, id string) string {
	return fmt.Sprintf("%d/%s", calendarID, id)
}

func (f *fakeEvents) row(calendarID int64, id string) *model.Event {
	return f.rows[rowKey(calendarID, id)]
}

func (f *fakeEvents) filter(keep func(e *model.Event) bool) []*model.Event {
	var res []*model.Event
	for _, e := range f.rows {
		if keep(e) {
			res = append(res, e.Clone())
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].Start.Equal(res[j].Start) {
			return res[i].Start.Before(res[j].Start)
		}
		return res[i].ID < res[j].ID
	})
	return res
}

func (f *fakeEvents) CreateEvent(_ context.Context, _ database.Queryable, event *model.Event) error {
	key := rowKey(event.CalendarID, event.ID)
	if _, ok := f.rows[key]; ok {
		return model.ErrAlreadyExists
	}
	f.rows[key] = event.Clone()
	return nil
}

func (f *fakeEvents) UpsertOverride(_ context.Context, _ database.Queryable, event *model.Event) (uuid.UUID, error) {
	key := rowKey(event.CalendarID, event.ID)
	stored := event.Clone()
	if existing, ok := f.rows[key]; ok {
		stored.UID = existing.UID
	}
	f.rows[key] = stored
	return stored.UID, nil
}

func (f *fakeEvents) UpdateEvent(_ context.Context, _ database.Queryable, event *model.Event) error {
	for key, e := range f.rows {
		if e.UID == event.UID {
			delete(f.rows, key)
			f.rows[rowKey(event.CalendarID, event.ID)] = event.Clone()
			return nil
		}
	}
	return model.ErrNoRecord
}

func (f *fakeEvents) MoveEvent(_ context.Context, _ database.Queryable, fromCalendarID int64, id string, toCalendarID int64) error {
	moved := f.filter(func(e *model.Event) bool {
		return e.CalendarID == fromCalendarID && (e.ID == id || e.RecurringEventID == id)
	})
	if len(moved) == 0 {
		return model.ErrNoRecord
	}
	for _, e := range moved {
		if _, ok := f.rows[rowKey(toCalendarID, e.ID)]; ok {
			return model.ErrAlreadyExists
		}
	}
	for _, e := range moved {
		delete(f.rows, rowKey(fromCalendarID, e.ID))
		e.CalendarID = toCalendarID
		f.rows[rowKey(toCalendarID, e.ID)] = e
	}
	return nil
}

func (f *fakeEvents) GetEventByID(_ context.Context, _ database.Queryable, calendarID int64, id string) (*model.Event, error) {
	e, ok := f.rows[rowKey(calendarID, id)]
	if !ok {
		return nil, model.ErrNoRecord
	}
	return e.Clone(), nil
}

func (f *fakeEvents) GetEventByProviderID(_ context.Context, _ database.Queryable, calendarID int64, providerID string) (*model.Event, error) {
	res := f.filter(func(e *model.Event) bool {
		return e.CalendarID == calendarID && e.ProviderID == providerID && !e.IsInstance()
	})
	if len(res) == 0 {
		return nil, model.ErrNoRecord
	}
	return res[0], nil
}

func (f *fakeEvents) GetSingleEvents(_ context.Context, _ database.Queryable, filter model.EventsFilter) ([]*model.Event, error) {
	tokens := model.SplitQuery(filter.Query)
	res := f.filter(func(e *model.Event) bool {
		return e.CalendarID == filter.CalendarID &&
			!e.IsInstance() && !e.IsRecurring() &&
			e.Status != model.EventStatusDeleted &&
			e.Overlaps(filter.From, filter.To) &&
			recurrence.MatchesQuery(e.Title, tokens)
	})
	if filter.Limit > 0 && len(res) > filter.Limit {
		res = res[:filter.Limit]
	}
	return res, nil
}

func (f *fakeEvents) GetRecurringEvents(_ context.Context, _ database.Queryable, calendarID int64, to time.Time) ([]*model.Event, error) {
	return f.filter(func(e *model.Event) bool {
		return e.CalendarID == calendarID && e.IsRecurring() &&
			e.Status != model.EventStatusDeleted &&
			!e.Start.After(to.Add(24*time.Hour))
	}), nil
}

func (f *fakeEvents) GetOverrides(_ context.Context, _ database.Queryable, calendarID int64, baseIDs []string) ([]*model.Event, error) {
	ids := make(map[string]struct{}, len(baseIDs))
	for _, id := range baseIDs {
		ids[id] = struct{}{}
	}
	return f.filter(func(e *model.Event) bool {
		_, ok := ids[e.RecurringEventID]
		return e.CalendarID == calendarID && ok
	}), nil
}

func (f *fakeEvents) GetCalendarEvents(_ context.Context, _ database.Queryable, calendarID int64) ([]*model.Event, error) {
	return f.filter(func(e *model.Event) bool {
		return e.CalendarID == calendarID && !e.IsInstance() && e.Status != model.EventStatusDeleted
	}), nil
}

func (f *fakeEvents) GetProviderIDs(_ context.Context, _ database.Queryable, calendarID int64) ([]string, error) {
	var ids []string
	for _, e := range f.filter(func(e *model.Event) bool {
		return e.CalendarID == calendarID && !e.IsInstance() && e.ProviderID != "" && e.Status != model.EventStatusDeleted
	}) {
		ids = append(ids, e.ProviderID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeEvents) DeleteOverrides(_ context.Context, _ database.Queryable, calendarID int64, baseID string) error {
	for key, e := range f.rows {
		if e.CalendarID == calendarID && e.RecurringEventID == baseID {
			delete(f.rows, key)
		}
	}
	return nil
}

func (f *fakeEvents) DeleteEventsByIDs(_ context.Context, _ database.Queryable, calendarID int64, ids []string) error {
	for _, id := range ids {
		delete(f.rows, rowKey(calendarID, id))
	}
	return nil
}

type fakeLabels struct {
	labels []*model.Label
}

func (f *fakeLabels) GetUserLabels(_ context.Context, _ database.Queryable, userID int64) ([]*model.Label, error) {
	var res []*model.Label
	for _, l := range f.labels {
		if l.UserID == userID {
			res = append(res, l)
		}
	}
	return res, nil
}

func newTestService() (*Service, *fakeEvents) {
	repo := newFakeEvents()
	labels := &fakeLabels{labels: []*model.Label{
		{ID: 1, UserID: 1, Title: "work", Color: "#ff0000"},
		{ID: 2, UserID: 2, Title: "home", Color: "#00ff00"},
	}}
	return NewService(fakeDB{}, zap.NewNop().Sugar(), repo, labels), repo
}
