package calendar

import (
	"github.com/SergeyKozhin/calendar-sync-backend/internal/database"
)

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

var baseQuery = database.PSQL.
	Select(
		"id",
		"user_id",
		"name",
		"timezone",
		"provider",
		"provider_calendar_id",
		"provider_refresh_token",
	).
	From(database.CalendarsTable)
