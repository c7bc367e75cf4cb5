package calendar

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/database"
)

// UpdateRefreshToken stores a rotated provider refresh token.
func (*Repository) UpdateRefreshToken(ctx context.Context, q database.Queryable, id int64, token string) error {
	qb := database.PSQL.
		Update(database.CalendarsTable).
		Set("provider_refresh_token", token).
		Where(sq.Eq{"id": id})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
