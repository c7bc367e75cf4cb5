package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/database"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/jackc/pgx/v4"
)

func (*Repository) GetEventByID(ctx context.Context, q database.Queryable, calendarID int64, id string) (*model.Event, error) {
	return getEvent(ctx, q, sq.Eq{"calendar_id": calendarID, "id": id})
}

func (*Repository) GetEventByProviderID(ctx context.Context, q database.Queryable, calendarID int64, providerID string) (*model.Event, error) {
	return getEvent(ctx, q, sq.Eq{"calendar_id": calendarID, "provider_id": providerID})
}

// GetSingleEvents returns live non-recurring rows intersecting the filter
// window, ordered by start.
func (*Repository) GetSingleEvents(ctx context.Context, q database.Queryable, filter model.EventsFilter) ([]*model.Event, error) {
	qb := baseQuery.
		Where(sq.Eq{"calendar_id": filter.CalendarID, "recurring_event_id": ""}).
		Where("cardinality(recurrences) = 0").
		Where(sq.NotEq{"status": string(model.EventStatusDeleted)}).
		Where(overlaps(filter.From, filter.To)).
		OrderBy("start_time", "id")

	if tokens := model.SplitQuery(filter.Query); len(tokens) != 0 {
		qb = qb.Where(titleMatches(tokens))
	}

	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}

	return selectEvents(ctx, q, qb)
}

// GetRecurringEvents returns live base events of the calendar that may have
// instances before to.
func (*Repository) GetRecurringEvents(ctx context.Context, q database.Queryable, calendarID int64, to time.Time) ([]*model.Event, error) {
	qb := baseQuery.
		Where(sq.Eq{"calendar_id": calendarID}).
		Where("cardinality(recurrences) > 0").
		Where(sq.NotEq{"status": string(model.EventStatusDeleted)}).
		Where(sq.LtOrEq{"start_time": to.Add(24 * time.Hour)}).
		OrderBy("start_time", "id")

	return selectEvents(ctx, q, qb)
}

// GetOverrides returns every override of the given bases, tombstones included.
func (*Repository) GetOverrides(ctx context.Context, q database.Queryable, calendarID int64, baseIDs []string) ([]*model.Event, error) {
	if len(baseIDs) == 0 {
		return nil, nil
	}

	qb := baseQuery.
		Where(sq.Eq{"calendar_id": calendarID, "recurring_event_id": baseIDs}).
		OrderBy("original_start", "id")

	return selectEvents(ctx, q, qb)
}

// GetCalendarEvents returns the live single and base events of a calendar.
func (*Repository) GetCalendarEvents(ctx context.Context, q database.Queryable, calendarID int64) ([]*model.Event, error) {
	qb := baseQuery.
		Where(sq.Eq{"calendar_id": calendarID, "recurring_event_id": ""}).
		Where(sq.NotEq{"status": string(model.EventStatusDeleted)}).
		OrderBy("start_time", "id")

	return selectEvents(ctx, q, qb)
}

// GetProviderIDs returns the provider ids of the live provider-linked single
// and base events of a calendar.
func (*Repository) GetProviderIDs(ctx context.Context, q database.Queryable, calendarID int64) ([]string, error) {
	qb := database.PSQL.
		Select("provider_id").
		From(database.EventsTable).
		Where(sq.Eq{"calendar_id": calendarID, "recurring_event_id": ""}).
		Where(sq.NotEq{"provider_id": "", "status": string(model.EventStatusDeleted)}).
		OrderBy("provider_id")

	var ids []string
	if err := q.Select(ctx, &ids, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	return ids, nil
}

func getEvent(ctx context.Context, q database.Queryable, predicate interface{}) (*model.Event, error) {
	qb := baseQuery.
		Where(predicate).
		Limit(1)

	dto := &eventDTO{}
	if err := q.Get(ctx, dto, qb); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNoRecord
		}
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	return mapToEvent(dto), nil
}

func selectEvents(ctx context.Context, q database.Queryable, qb sq.SelectBuilder) ([]*model.Event, error) {
	var dtos []*eventDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.Event, len(dtos))
	for i, d := range dtos {
		res[i] = mapToEvent(d)
	}

	return res, nil
}
