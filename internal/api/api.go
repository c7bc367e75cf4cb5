package api

import (
	"context"
	"net/http"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/database"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/pkg/oauth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type Api struct {
	handler  http.Handler
	logger   *zap.SugaredLogger
	settings Settings

	jwts          jwtManager
	tokenParser   tokenParser
	refreshTokens refreshTokenRepository

	db        database.PGX
	users     userRepository
	calendars calendarRepository
	labels    labelRepository

	eventsService eventsService
	syncer        syncer
}

// Settings are the tunables of the HTTP layer.
type Settings struct {
	SessionTokenLength int
	DefaultEventsLimit int
	AllowedOrigins     []string
}

type jwtManager interface {
	CreateToken(id int64) (string, error)
	GetIdFromToken(token string) (int64, error)
}

type tokenParser interface {
	GetInfoGoogle(ctx context.Context, authCode string) (*oauth.GoogleInfo, error)
}

type refreshTokenRepository interface {
	Add(ctx context.Context, session string, id int64) error
	Get(ctx context.Context, session string) (int64, error)
	Refresh(ctx context.Context, old, new string) error
	Delete(ctx context.Context, session string) error
	DeleteByUserID(ctx context.Context, id int64) error
}

type userRepository interface {
	CreateUser(ctx context.Context, q database.Queryable, user *model.UserCreate) (int64, error)
	GetUserByEmail(ctx context.Context, q database.Queryable, email string) (*model.User, error)
	GetUserByID(ctx context.Context, q database.Queryable, id int64) (*model.User, error)
	UpdateUserPushToken(ctx context.Context, q database.Queryable, id int64, token string) error
	UpdateUserSettings(ctx context.Context, q database.Queryable, id int64, timezone string, notify bool) error
}

type calendarRepository interface {
	CreateCalendar(ctx context.Context, q database.Queryable, calendar *model.Calendar) (int64, error)
	GetCalendar(ctx context.Context, q database.Queryable, id int64) (*model.Calendar, error)
	GetCalendars(ctx context.Context, q database.Queryable, filter model.CalendarsFilter) ([]*model.Calendar, error)
}

type labelRepository interface {
	CreateLabel(ctx context.Context, q database.Queryable, label *model.Label) (int64, error)
	GetUserLabels(ctx context.Context, q database.Queryable, userID int64) ([]*model.Label, error)
}

type eventsService interface {
	CreateEvent(ctx context.Context, user *model.User, calendar *model.Calendar, info *model.EventCreate) (*model.Event, error)
	GetEvent(ctx context.Context, user *model.User, calendar *model.Calendar, id string) (*model.Event, error)
	GetEvents(ctx context.Context, user *model.User, calendar *model.Calendar, filter model.EventsFilter) ([]*model.Event, error)
	UpdateEvent(ctx context.Context, user *model.User, calendar *model.Calendar, id string, info *model.EventCreate) (*model.Event, error)
	DeleteEvent(ctx context.Context, user *model.User, calendar *model.Calendar, id string) error
	MoveEvent(ctx context.Context, from *model.Calendar, id string, to *model.Calendar) (*model.Event, error)
	ExportEvents(ctx context.Context, calendar *model.Calendar) ([]*model.Event, []*model.Event, error)
}

type syncer interface {
	SyncCalendar(ctx context.Context, calendar *model.Calendar) error
}

func NewApi(
	logger *zap.SugaredLogger,
	settings Settings,
	jwts jwtManager,
	tokenParser tokenParser,
	refreshTokens refreshTokenRepository,
	db database.PGX,
	users userRepository,
	calendars calendarRepository,
	labels labelRepository,
	eventsService eventsService,
	syncer syncer,
) *Api {
	a := &Api{
		logger:        logger,
		settings:      settings,
		jwts:          jwts,
		tokenParser:   tokenParser,
		refreshTokens: refreshTokens,
		db:            db,
		users:         users,
		calendars:     calendars,
		labels:        labels,
		eventsService: eventsService,
		syncer:        syncer,
	}
	a.setupHandler()

	return a
}

func (a *Api) setupHandler() {
	r := chi.NewMux()

	r.Use(a.requestLogger, middleware.Recoverer, middleware.StripSlashes)
	if len(a.settings.AllowedOrigins) != 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: a.settings.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		}))
	}
	r.NotFound(a.notFoundResponse)
	r.MethodNotAllowed(a.methodNotAllowedResponse)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signin/google", a.signInGoogleHandler)
		r.Post("/refresh", a.refreshTokenHandler)
		r.Post("/logout", a.logoutUserHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(a.auth, a.userCtx)

		r.Route("/user", func(r chi.Router) {
			r.Get("/", a.getUserHandler)
			r.Put("/settings", a.updateUserSettingsHandler)
			r.Put("/push-token", a.updatePushTokenHandler)
			r.Post("/logout-all", a.logoutAllHandler)
		})

		r.Route("/labels", func(r chi.Router) {
			r.Get("/", a.getLabelsHandler)
			r.Post("/", a.createLabelHandler)
		})

		r.Route("/calendars", func(r chi.Router) {
			r.Get("/", a.getCalendarsHandler)
			r.Post("/", a.createCalendarHandler)

			r.With(a.calendarCtx).Route("/{calendarID}", func(r chi.Router) {
				r.Get("/export.ics", a.exportCalendarHandler)
				r.Post("/sync", a.syncCalendarHandler)

				r.Route("/events", func(r chi.Router) {
					r.Get("/", a.getEventsHandler)
					r.Post("/", a.createEventHandler)

					r.Route("/{eventID}", func(r chi.Router) {
						r.Get("/", a.getEventHandler)
						r.Put("/", a.updateEventHandler)
						r.Delete("/", a.deleteEventHandler)
						r.Post("/move", a.moveEventHandler)
					})
				})
			})
		})
	})

	a.handler = r
}

func (a *Api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}
