package events

import (
	"context"
	"time"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/database"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/recurrence"
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const (
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idLength   = 16
)

type Service struct {
	db       database.PGX
	logger   *zap.SugaredLogger
	expander *recurrence.Expander

	eventsRepository eventsRepository
	labelsRepository labelsRepository

	newID func() (string, error)
}

type eventsRepository interface {
	CreateEvent(ctx context.Context, q database.Queryable, event *model.Event) error
	UpsertOverride(ctx context.Context, q database.Queryable, event *model.Event) (uuid.UUID, error)
	UpdateEvent(ctx context.Context, q database.Queryable, event *model.Event) error
	MoveEvent(ctx context.Context, q database.Queryable, fromCalendarID int64, id string, toCalendarID int64) error
	GetEventByID(ctx context.Context, q database.Queryable, calendarID int64, id string) (*model.Event, error)
	GetEventByProviderID(ctx context.Context, q database.Queryable, calendarID int64, providerID string) (*model.Event, error)
	GetSingleEvents(ctx context.Context, q database.Queryable, filter model.EventsFilter) ([]*model.Event, error)
	GetRecurringEvents(ctx context.Context, q database.Queryable, calendarID int64, to time.Time) ([]*model.Event, error)
	GetOverrides(ctx context.Context, q database.Queryable, calendarID int64, baseIDs []string) ([]*model.Event, error)
	GetCalendarEvents(ctx context.Context, q database.Queryable, calendarID int64) ([]*model.Event, error)
	GetProviderIDs(ctx context.Context, q database.Queryable, calendarID int64) ([]string, error)
	DeleteOverrides(ctx context.Context, q database.Queryable, calendarID int64, baseID string) error
	DeleteEventsByIDs(ctx context.Context, q database.Queryable, calendarID int64, ids []string) error
}

type labelsRepository interface {
	GetUserLabels(ctx context.Context, q database.Queryable, userID int64) ([]*model.Label, error)
}

func NewService(
	db database.PGX,
	logger *zap.SugaredLogger,
	eventsRepository eventsRepository,
	labelsRepository labelsRepository,
) *Service {
	return &Service{
		db:               db,
		logger:           logger,
		expander:         recurrence.NewExpander(logger),
		eventsRepository: eventsRepository,
		labelsRepository: labelsRepository,
		newID: func() (string, error) {
			return gonanoid.Generate(idAlphabet, idLength)
		},
	}
}
