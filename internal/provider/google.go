package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const googlePageSize = 250

type tokenSources interface {
	TokenSource(ctx context.Context, refreshToken string) oauth2.TokenSource
}

// GoogleFeed reads incremental changes of a Google calendar. The calendar's
// ProviderCalendarID is the Google calendar id.
type GoogleFeed struct {
	newService func(ctx context.Context, calendar *model.Calendar) (*gcal.Service, oauth2.TokenSource, error)
}

func NewGoogleFeed(tokens tokenSources) *GoogleFeed {
	return &GoogleFeed{
		newService: func(ctx context.Context, calendar *model.Calendar) (*gcal.Service, oauth2.TokenSource, error) {
			ts := oauth2.ReuseTokenSource(nil, tokens.TokenSource(ctx, calendar.ProviderRefreshToken))
			srv, err := gcal.NewService(ctx, option.WithTokenSource(ts))
			if err != nil {
				return nil, nil, err
			}
			return srv, ts, nil
		},
	}
}

func (f *GoogleFeed) Changes(ctx context.Context, calendar *model.Calendar, syncToken string) (*Batch, error) {
	srv, ts, err := f.newService(ctx, calendar)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	batch := &Batch{Full: syncToken == ""}

	pageToken := ""
	for {
		call := srv.Events.List(calendar.ProviderCalendarID).
			ShowDeleted(true).
			MaxResults(googlePageSize).
			Context(ctx)
		if syncToken != "" {
			call = call.SyncToken(syncToken)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			var gerr *googleapi.Error
			if errors.As(err, &gerr) && gerr.Code == http.StatusGone {
				return nil, ErrSyncTokenExpired
			}
			return nil, fmt.Errorf("list events: %w", err)
		}

		for _, item := range resp.Items {
			ev, err := mapGoogleEvent(item)
			if err != nil {
				return nil, fmt.Errorf("event %s: %w", item.Id, err)
			}
			batch.Items = append(batch.Items, ev)
		}

		if resp.NextPageToken == "" {
			batch.NextSyncToken = resp.NextSyncToken
			break
		}
		pageToken = resp.NextPageToken
	}

	if ts != nil {
		if tok, err := ts.Token(); err == nil && tok.RefreshToken != "" {
			batch.RefreshToken = tok.RefreshToken
		}
	}

	return batch, nil
}

func mapGoogleEvent(item *gcal.Event) (*model.Event, error) {
	ev := &model.Event{
		ProviderID: item.Id,
		EventCreate: model.EventCreate{
			Title:            item.Summary,
			Description:      item.Description,
			Location:         item.Location,
			Recurrences:      item.Recurrence,
			RecurringEventID: item.RecurringEventId,
			Status:           mapGoogleStatus(item.Status),
			GuestsCanModify:  item.GuestsCanModify,

			GuestsCanInviteOthers:   item.GuestsCanInviteOthers == nil || *item.GuestsCanInviteOthers,
			GuestsCanSeeOtherGuests: item.GuestsCanSeeOtherGuests == nil || *item.GuestsCanSeeOtherGuests,
		},
	}

	// Cancelled instances only carry their identity.
	if ev.Status == model.EventStatusDeleted && item.Start == nil {
		if item.OriginalStartTime != nil {
			originalStart, _, _, err := parseGoogleTime(item.OriginalStartTime)
			if err != nil {
				return nil, fmt.Errorf("original start: %w", err)
			}
			ev.OriginalStart = &originalStart
			ev.Start, ev.End = originalStart, originalStart
		}
		return ev, nil
	}

	start, startDay, tz, err := parseGoogleTime(item.Start)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	end, endDay, _, err := parseGoogleTime(item.End)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}
	ev.Start, ev.StartDay, ev.TimeZone = start, startDay, tz
	ev.End, ev.EndDay = end, endDay

	if item.OriginalStartTime != nil {
		originalStart, _, _, err := parseGoogleTime(item.OriginalStartTime)
		if err != nil {
			return nil, fmt.Errorf("original start: %w", err)
		}
		ev.OriginalStart = &originalStart
	}

	if item.Organizer != nil {
		ev.Organizer = &model.Person{Email: item.Organizer.Email, DisplayName: item.Organizer.DisplayName}
	}
	if item.Creator != nil {
		ev.Creator = &model.Person{Email: item.Creator.Email, DisplayName: item.Creator.DisplayName}
	}

	for _, a := range item.Attendees {
		ev.Participants = append(ev.Participants, &model.Participant{
			Person:         model.Person{Email: a.Email, DisplayName: a.DisplayName},
			ResponseStatus: mapGoogleResponse(a.ResponseStatus),
		})
	}

	return ev, nil
}

// parseGoogleTime returns the instant, the day for all-day values and the
// time zone of an EventDateTime.
func parseGoogleTime(dt *gcal.EventDateTime) (time.Time, string, string, error) {
	if dt == nil {
		return time.Time{}, "", "", errors.New("missing time")
	}

	if dt.Date != "" {
		t, err := time.Parse(model.DayFormat, dt.Date)
		if err != nil {
			return time.Time{}, "", "", err
		}
		return t, dt.Date, "", nil
	}

	t, err := time.Parse(time.RFC3339, dt.DateTime)
	if err != nil {
		return time.Time{}, "", "", err
	}

	return t.UTC(), "", dt.TimeZone, nil
}

func mapGoogleStatus(s string) model.EventStatus {
	switch s {
	case "cancelled":
		return model.EventStatusDeleted
	case "tentative":
		return model.EventStatusTentative
	default:
		return model.EventStatusActive
	}
}

func mapGoogleResponse(s string) model.ResponseStatus {
	switch model.ResponseStatus(s) {
	case model.ResponseAccepted, model.ResponseDeclined, model.ResponseTentative:
		return model.ResponseStatus(s)
	default:
		return model.ResponseNeedsAction
	}
}
