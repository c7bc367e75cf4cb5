package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/database"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/google/uuid"
)

func (*Repository) CreateEvent(ctx context.Context, q database.Queryable, event *model.Event) error {
	event.UpdatedAt = time.Now().UTC()

	values, err := eventValues(event)
	if err != nil {
		return err
	}

	qb := database.PSQL.
		Insert(database.EventsTable).
		Columns(columns...).
		Values(values...)

	if _, err := q.Exec(ctx, qb); err != nil {
		if database.IsUniqueViolation(err) {
			return model.ErrAlreadyExists
		}
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

// UpsertOverride inserts a materialized instance or, when a row with the same
// composite id already exists in the calendar, overwrites it. It returns the
// uid of the stored row.
func (*Repository) UpsertOverride(ctx context.Context, q database.Queryable, event *model.Event) (uuid.UUID, error) {
	event.UpdatedAt = time.Now().UTC()

	values, err := eventValues(event)
	if err != nil {
		return uuid.Nil, err
	}

	updates := make([]string, 0, len(columns))
	for _, c := range columns {
		switch c {
		case "uid", "id", "calendar_id":
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", c, c))
	}

	qb := database.PSQL.
		Insert(database.EventsTable).
		Columns(columns...).
		Values(values...).
		Suffix("on conflict (calendar_id, id) do update set " + strings.Join(updates, ", ") + " returning uid")

	var uid uuid.UUID
	if err := q.Get(ctx, &uid, qb); err != nil {
		return uuid.Nil, fmt.Errorf("SQL request: %w", err)
	}

	return uid, nil
}
