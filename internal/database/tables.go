package database

import sq "github.com/Masterminds/squirrel"

// PSQL построитель запросов с плейсхолдерами postgres.
var PSQL = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	UsersTable     = "users"
	CalendarsTable = "calendars"
	LabelsTable    = "labels"
	EventsTable    = "events"
)
