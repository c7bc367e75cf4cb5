package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const (
	contextKeyID       = contextKey("id")
	contextKeyUser     = contextKey("user")
	contextKeyCalendar = contextKey("calendar")
)

var (
	errCantRetrieveID       = errors.New("can't retrieve id")
	errCantRetrieveUser     = errors.New("can't retrieve user from context")
	errCantRetrieveCalendar = errors.New("can't retrieve calendar from context")
)

func (a *Api) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		a.logger.Debugw(r.URL.RequestURI(),
			"addr", r.RemoteAddr,
			"protocol", r.Proto,
			"method", r.Method,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func (a *Api) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		if token == "" {
			a.unauthorizedResponse(w, r, errors.New("no token provided"))
			return
		}

		token = strings.TrimPrefix(token, "Bearer ")

		id, err := a.jwts.GetIdFromToken(token)
		if err != nil {
			invalidTokenErr := &jwt.InvalidTokenError{}
			switch {
			case errors.As(err, &invalidTokenErr):
				a.unauthorizedResponse(w, r, invalidTokenErr)
			default:
				a.serverErrorResponse(w, r, err)
			}
			return
		}

		idContext := context.WithValue(r.Context(), contextKeyID, id)
		next.ServeHTTP(w, r.WithContext(idContext))
	})
}

func (a *Api) userCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := r.Context().Value(contextKeyID).(int64)
		if !ok {
			a.serverErrorResponse(w, r, errCantRetrieveID)
			return
		}

		user, err := a.users.GetUserByID(r.Context(), a.db, id)
		if err != nil {
			switch {
			case errors.Is(err, model.ErrNoRecord):
				a.forbiddenResponse(w, r, "user does not exists")
			default:
				a.serverErrorResponse(w, r, err)
			}
			return
		}

		userCtx := context.WithValue(r.Context(), contextKeyUser, user)
		next.ServeHTTP(w, r.WithContext(userCtx))
	})
}

// calendarCtx loads the calendar named in the path. Calendars of other users
// are reported as missing.
func (a *Api) calendarCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := userFromContext(r)
		if err != nil {
			a.serverErrorResponse(w, r, err)
			return
		}

		calendar, err := a.loadCalendar(r, user, chi.URLParam(r, "calendarID"))
		if err != nil {
			switch {
			case errors.Is(err, model.ErrNoRecord):
				a.notFoundResponse(w, r)
			default:
				a.serverErrorResponse(w, r, err)
			}
			return
		}

		calendarCtx := context.WithValue(r.Context(), contextKeyCalendar, calendar)
		next.ServeHTTP(w, r.WithContext(calendarCtx))
	})
}

func (a *Api) loadCalendar(r *http.Request, user *model.User, rawID string) (*model.Calendar, error) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil, model.ErrNoRecord
	}

	calendar, err := a.calendars.GetCalendar(r.Context(), a.db, id)
	if err != nil {
		if errors.Is(err, model.ErrNoRecord) {
			return nil, err
		}
		return nil, fmt.Errorf("get calendar: %w", err)
	}

	if calendar.UserID != user.ID {
		return nil, model.ErrNoRecord
	}

	return calendar, nil
}

func userFromContext(r *http.Request) (*model.User, error) {
	user, ok := r.Context().Value(contextKeyUser).(*model.User)
	if !ok {
		return nil, errCantRetrieveUser
	}

	return user, nil
}

func calendarFromContext(r *http.Request) (*model.User, *model.Calendar, error) {
	user, err := userFromContext(r)
	if err != nil {
		return nil, nil, err
	}

	calendar, ok := r.Context().Value(contextKeyCalendar).(*model.Calendar)
	if !ok {
		return nil, nil, errCantRetrieveCalendar
	}

	return user, calendar, nil
}
