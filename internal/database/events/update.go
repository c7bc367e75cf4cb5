package events

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/database"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
)

// UpdateEvent overwrites the row identified by event.UID.
func (*Repository) UpdateEvent(ctx context.Context, q database.Queryable, event *model.Event) error {
	event.UpdatedAt = time.Now().UTC()

	values, err := eventValues(event)
	if err != nil {
		return err
	}

	set := make(map[string]interface{}, len(columns))
	for i, c := range columns {
		if c == "uid" {
			continue
		}
		set[c] = values[i]
	}

	qb := database.PSQL.
		Update(database.EventsTable).
		SetMap(set).
		Where(sq.Eq{"uid": event.UID})

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return model.ErrAlreadyExists
		}
		return fmt.Errorf("SQL request: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrNoRecord
	}

	return nil
}

// MoveEvent moves the event with the given id and all of its overrides to
// another calendar.
func (*Repository) MoveEvent(ctx context.Context, q database.Queryable, fromCalendarID int64, id string, toCalendarID int64) error {
	qb := database.PSQL.
		Update(database.EventsTable).
		Set("calendar_id", toCalendarID).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"calendar_id": fromCalendarID}).
		Where(sq.Or{sq.Eq{"id": id}, sq.Eq{"recurring_event_id": id}})

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return model.ErrAlreadyExists
		}
		return fmt.Errorf("SQL request: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrNoRecord
	}

	return nil
}
