package user

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
		"full_name",
		"email",
		"timezone",
		"push_token",
		"notify",
	).
	From(database.UsersTable)
