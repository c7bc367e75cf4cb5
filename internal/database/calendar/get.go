package calendar

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/database"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/jackc/pgx/v4"
)

func (*Repository) GetCalendar(ctx context.Context, q database.Queryable, id int64) (*model.Calendar, error) {
	qb := baseQuery.
		Where(sq.Eq{"id": id})

	dto := &calendarDTO{}
	if err := q.Get(ctx, dto, qb); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNoRecord
		}
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	return mapToCalendar(dto), nil
}

func (*Repository) GetCalendars(ctx context.Context, q database.Queryable, filter model.CalendarsFilter) ([]*model.Calendar, error) {
	qb := baseQuery.
		OrderBy("id")

	if len(filter.UserIDs) != 0 {
		qb = qb.Where(sq.Eq{"user_id": filter.UserIDs})
	}

	if len(filter.Providers) != 0 {
		providers := make([]string, len(filter.Providers))
		for i, p := range filter.Providers {
			providers[i] = string(p)
		}
		qb = qb.Where(sq.Eq{"provider": providers})
	}

	var dtos []*calendarDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.Calendar, len(dtos))
	for i, d := range dtos {
		res[i] = mapToCalendar(d)
	}

	return res, nil
}
