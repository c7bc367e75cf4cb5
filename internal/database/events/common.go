package events

import (
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/database"
)

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

var columns = []string{
	"uid",
	"id",
	"calendar_id",
	"title",
	"description",
	"location",
	"start_time",
	"end_time",
	"start_day",
	"end_day",
	"time_zone",
	"recurrences",
	"recurring_event_id",
	"original_start",
	"original_start_day",
	"original_timezone",
	"status",
	"organizer",
	"creator",
	"participants",
	"label_ids",
	"guests_can_modify",
	"guests_can_invite_others",
	"guests_can_see_other_guests",
	"provider_id",
	"updated_at",
}

var baseQuery = database.PSQL.
	Select(columns...).
	From(database.EventsTable)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// titleMatches is the SQL side of model.SplitQuery: any token is a case
// insensitive substring of the title.
func titleMatches(tokens []string) sq.Sqlizer {
	or := make(sq.Or, len(tokens))
	for i, t := range tokens {
		or[i] = sq.ILike{"title": fmt.Sprintf("%%%s%%", likeEscaper.Replace(t))}
	}
	return or
}

// overlaps matches rows intersecting [from, to]. All-day rows store naive
// dates, so they are compared with the wall clock of the bounds.
func overlaps(from, to time.Time) sq.Sqlizer {
	return sq.Or{
		sq.And{
			sq.Eq{"start_day": ""},
			sq.LtOrEq{"start_time": to},
			sq.GtOrEq{"end_time": from},
		},
		sq.And{
			sq.NotEq{"start_day": ""},
			sq.LtOrEq{"start_time": wallClock(to)},
			sq.GtOrEq{"end_time": wallClock(from)},
		},
	}
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
