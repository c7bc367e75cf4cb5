package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

const maxEventsLimit = 1000

type eventReq struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Location     string            `json:"location"`
	Start        *time.Time        `json:"start"`
	End          *time.Time        `json:"end"`
	StartDay     string            `json:"start_day"`
	EndDay       string            `json:"end_day"`
	TimeZone     string            `json:"time_zone"`
	Recurrences  []string          `json:"recurrences"`
	Status       model.EventStatus `json:"status"`
	Participants []*participant    `json:"participants"`
	LabelIDs     []int64           `json:"label_ids"`

	GuestsCanModify         bool `json:"guests_can_modify"`
	GuestsCanInviteOthers   bool `json:"guests_can_invite_others"`
	GuestsCanSeeOtherGuests bool `json:"guests_can_see_other_guests"`
}

// toEventCreate validates the request. An all-day event is given by its
// start_day and end_day; a timed event by start and end.
func (req *eventReq) toEventCreate(v *validator.Validator) *model.EventCreate {
	v.Check(req.Title != "", "title", "must be provided")
	v.Check(req.TimeZone == "" || validTimezone(req.TimeZone), "time_zone", "unknown time zone")
	v.Check(validator.In(string(req.Status), "", string(model.EventStatusActive), string(model.EventStatusTentative)), "status", "must be active or tentative")

	info := &model.EventCreate{
		Title:                   req.Title,
		Description:             req.Description,
		Location:                req.Location,
		TimeZone:                req.TimeZone,
		Recurrences:             req.Recurrences,
		Status:                  req.Status,
		LabelIDs:                req.LabelIDs,
		GuestsCanModify:         req.GuestsCanModify,
		GuestsCanInviteOthers:   req.GuestsCanInviteOthers,
		GuestsCanSeeOtherGuests: req.GuestsCanSeeOtherGuests,
	}

	for i, p := range req.Participants {
		key := fmt.Sprintf("participants[%d]", i)
		if p == nil || !validator.Matches(p.Email, validator.EmailRX) {
			v.AddError(key, "must have a valid email")
			continue
		}
		status := p.ResponseStatus
		if status == "" {
			status = model.ResponseNeedsAction
		}
		v.Check(validator.In(string(status),
			string(model.ResponseNeedsAction),
			string(model.ResponseAccepted),
			string(model.ResponseDeclined),
			string(model.ResponseTentative),
		), key, "unknown response status")

		info.Participants = append(info.Participants, &model.Participant{
			Person:         model.Person{Email: p.Email, DisplayName: p.DisplayName},
			ResponseStatus: status,
		})
	}

	switch {
	case req.StartDay != "" || req.EndDay != "":
		v.Check(req.Start == nil && req.End == nil, "start", "must not be combined with start_day")
		start, errStart := time.Parse(model.DayFormat, req.StartDay)
		end, errEnd := time.Parse(model.DayFormat, req.EndDay)
		v.Check(errStart == nil, "start_day", "must be a YYYY-MM-DD date")
		v.Check(errEnd == nil, "end_day", "must be a YYYY-MM-DD date")
		if errStart == nil && errEnd == nil {
			v.Check(end.After(start), "end_day", "must be after start_day")
		}
		info.StartDay, info.EndDay = req.StartDay, req.EndDay
		info.Start, info.End = start, end
	default:
		v.Check(req.Start != nil, "start", "must be provided")
		v.Check(req.End != nil, "end", "must be provided")
		if req.Start != nil && req.End != nil {
			v.Check(!req.End.Before(*req.Start), "end", "must not be before start")
			info.Start, info.End = req.Start.UTC(), req.End.UTC()
		}
	}

	return info
}

func (a *Api) createEventHandler(w http.ResponseWriter, r *http.Request) {
	user, calendar, err := calendarFromContext(r)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	req := &eventReq{}
	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	info := req.toEventCreate(v)
	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	event, err := a.eventsService.CreateEvent(r.Context(), user, calendar, info)
	if err != nil {
		a.eventErrorResponse(w, r, err)
		return
	}

	resp, _ := mapToEventResp(event)

	if err := a.writeJSON(w, http.StatusCreated, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) getEventHandler(w http.ResponseWriter, r *http.Request) {
	user, calendar, err := calendarFromContext(r)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	event, err := a.eventsService.GetEvent(r.Context(), user, calendar, chi.URLParam(r, "eventID"))
	if err != nil {
		a.eventErrorResponse(w, r, err)
		return
	}

	resp, _ := mapToEventResp(event)

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) getEventsHandler(w http.ResponseWriter, r *http.Request) {
	user, calendar, err := calendarFromContext(r)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	filter, v := a.parseEventsQuery(r)
	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	events, err := a.eventsService.GetEvents(r.Context(), user, calendar, *filter)
	if err != nil {
		a.eventErrorResponse(w, r, fmt.Errorf("get events: %w", err))
		return
	}

	resp, _ := mapSlice(events, mapToEventResp)

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) parseEventsQuery(r *http.Request) (*model.EventsFilter, *validator.Validator) {
	v := validator.New()
	query := r.URL.Query()

	res := &model.EventsFilter{
		Limit: a.settings.DefaultEventsLimit,
		Query: query.Get("query"),
	}

	var err error
	res.From, err = time.Parse(time.RFC3339, query.Get("start"))
	v.Check(err == nil, "start", "must be an RFC 3339 time")
	res.To, err = time.Parse(time.RFC3339, query.Get("end"))
	v.Check(err == nil, "end", "must be an RFC 3339 time")
	if v.Valid() {
		v.Check(!res.To.Before(res.From), "end", "must not be before start")
	}

	if raw := query.Get("limit"); raw != "" {
		res.Limit, err = strconv.Atoi(raw)
		v.Check(err == nil && res.Limit > 0 && res.Limit <= maxEventsLimit, "limit", fmt.Sprintf("must be between 1 and %d", maxEventsLimit))
	}

	return res, v
}

func (a *Api) updateEventHandler(w http.ResponseWriter, r *http.Request) {
	user, calendar, err := calendarFromContext(r)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	req := &eventReq{}
	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	info := req.toEventCreate(v)
	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	event, err := a.eventsService.UpdateEvent(r.Context(), user, calendar, chi.URLParam(r, "eventID"), info)
	if err != nil {
		a.eventErrorResponse(w, r, err)
		return
	}

	resp, _ := mapToEventResp(event)

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) deleteEventHandler(w http.ResponseWriter, r *http.Request) {
	user, calendar, err := calendarFromContext(r)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	if err := a.eventsService.DeleteEvent(r.Context(), user, calendar, chi.URLParam(r, "eventID")); err != nil {
		a.eventErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *Api) moveEventHandler(w http.ResponseWriter, r *http.Request) {
	user, from, err := calendarFromContext(r)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	req := &struct {
		CalendarID int64 `json:"calendar_id"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	to, err := a.loadCalendar(r, user, strconv.FormatInt(req.CalendarID, 10))
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNoRecord):
			a.failedValidationResponse(w, r, map[string]string{"calendar_id": "no such calendar"})
		default:
			a.serverErrorResponse(w, r, err)
		}
		return
	}

	event, err := a.eventsService.MoveEvent(r.Context(), from, chi.URLParam(r, "eventID"), to)
	if err != nil {
		a.eventErrorResponse(w, r, err)
		return
	}

	resp, _ := mapToEventResp(event)

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}
