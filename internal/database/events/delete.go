package events

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/database"
)

// DeleteOverrides removes every override row of a base event.
func (*Repository) DeleteOverrides(ctx context.Context, q database.Queryable, calendarID int64, baseID string) error {
	qb := database.PSQL.
		Delete(database.EventsTable).
		Where(sq.Eq{"calendar_id": calendarID, "recurring_event_id": baseID})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

func (*Repository) DeleteEventsByIDs(ctx context.Context, q database.Queryable, calendarID int64, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	qb := database.PSQL.
		Delete(database.EventsTable).
		Where(sq.Eq{"calendar_id": calendarID, "id": ids})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
