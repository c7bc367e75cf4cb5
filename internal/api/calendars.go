package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/pkg/ics"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/pkg/validator"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/provider"
)

const googlePrimaryCalendar = "primary"

func (a *Api) getCalendarsHandler(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	calendars, err := a.calendars.GetCalendars(r.Context(), a.db, model.CalendarsFilter{UserIDs: []int64{user.ID}})
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	resp, _ := mapSlice(calendars, mapToCalendarResp)

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) createCalendarHandler(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	req := &struct {
		Name               string         `json:"name"`
		Timezone           string         `json:"timezone"`
		Provider           model.Provider `json:"provider"`
		ProviderCalendarID string         `json:"provider_calendar_id"`
		AuthCode           string         `json:"auth_code"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(req.Name != "", "name", "must be provided")
	v.Check(req.Timezone == "" || validTimezone(req.Timezone), "timezone", "unknown time zone")
	v.Check(validator.In(string(req.Provider), string(model.ProviderNone), string(model.ProviderGoogle), string(model.ProviderICS)), "provider", "unknown provider")
	switch req.Provider {
	case model.ProviderGoogle:
		v.Check(req.AuthCode != "", "auth_code", "must be provided")
	case model.ProviderICS:
		u, err := url.Parse(req.ProviderCalendarID)
		v.Check(err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "", "provider_calendar_id", "must be an http(s) URL")
	}
	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	calendar := &model.Calendar{
		UserID:             user.ID,
		Name:               req.Name,
		Timezone:           req.Timezone,
		Provider:           req.Provider,
		ProviderCalendarID: req.ProviderCalendarID,
	}

	if calendar.Provider == model.ProviderGoogle {
		info, err := a.tokenParser.GetInfoGoogle(r.Context(), req.AuthCode)
		if err != nil {
			a.unauthorizedResponse(w, r, errors.New("invalid auth code"))
			return
		}
		if info.RefreshToken == "" {
			a.failedValidationResponse(w, r, map[string]string{"auth_code": "offline access was not granted"})
			return
		}

		calendar.ProviderRefreshToken = info.RefreshToken
		if calendar.ProviderCalendarID == "" {
			calendar.ProviderCalendarID = googlePrimaryCalendar
		}
	}

	calendar.ID, err = a.calendars.CreateCalendar(r.Context(), a.db, calendar)
	if err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("create calendar: %w", err))
		return
	}

	resp, _ := mapToCalendarResp(calendar)

	if err := a.writeJSON(w, http.StatusCreated, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) exportCalendarHandler(w http.ResponseWriter, r *http.Request) {
	_, calendar, err := calendarFromContext(r)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	events, overrides, err := a.eventsService.ExportEvents(r.Context(), calendar)
	if err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("export events: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("calendar-%d.ics", calendar.ID)))
	if err := ics.Encode(w, calendar, events, overrides); err != nil {
		a.logError(r, fmt.Errorf("encode calendar: %w", err))
	}
}

func (a *Api) syncCalendarHandler(w http.ResponseWriter, r *http.Request) {
	_, calendar, err := calendarFromContext(r)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	if err := a.syncer.SyncCalendar(r.Context(), calendar); err != nil {
		switch {
		case errors.Is(err, provider.ErrNoFeed):
			a.badRequestResponse(w, r, err)
		default:
			a.serverErrorResponse(w, r, fmt.Errorf("sync calendar: %w", err))
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
