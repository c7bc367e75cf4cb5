package calendar

import (
	"context"
	"fmt"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/database"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
)

func (*Repository) CreateCalendar(ctx context.Context, q database.Queryable, calendar *model.Calendar) (int64, error) {
	qb := database.PSQL.
		Insert(database.CalendarsTable).
		Columns(
			"user_id",
			"name",
			"timezone",
			"provider",
			"provider_calendar_id",
			"provider_refresh_token",
		).
		Values(
			calendar.UserID,
			calendar.Name,
			calendar.Timezone,
			string(calendar.Provider),
			calendar.ProviderCalendarID,
			calendar.ProviderRefreshToken,
		).
		Suffix("returning id")

	var id int64
	if err := q.Get(ctx, &id, qb); err != nil {
		return 0, fmt.Errorf("SQL request: %w", err)
	}

	return id, nil
}
