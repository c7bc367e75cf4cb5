package api

import (
	"time"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
)

type userResp struct {
	ID            int64  `json:"id"`
	FullName      string `json:"full_name,omitempty"`
	Email         string `json:"email"`
	Timezone      string `json:"timezone"`
	Notifications bool   `json:"notifications"`
}

func mapToUserResp(user *model.User) (*userResp, error) {
	return &userResp{
		ID:            user.ID,
		FullName:      user.FullName,
		Email:         user.Email,
		Timezone:      user.Timezone,
		Notifications: user.Notify,
	}, nil
}

type calendarResp struct {
	ID                 int64          `json:"id"`
	Name               string         `json:"name"`
	Timezone           string         `json:"timezone,omitempty"`
	Provider           model.Provider `json:"provider,omitempty"`
	ProviderCalendarID string         `json:"provider_calendar_id,omitempty"`
}

func mapToCalendarResp(calendar *model.Calendar) (*calendarResp, error) {
	return &calendarResp{
		ID:                 calendar.ID,
		Name:               calendar.Name,
		Timezone:           calendar.Timezone,
		Provider:           calendar.Provider,
		ProviderCalendarID: calendar.ProviderCalendarID,
	}, nil
}

type labelResp struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Color string `json:"color"`
}

func mapToLabelResp(label *model.Label) (*labelResp, error) {
	return &labelResp{
		ID:    label.ID,
		Title: label.Title,
		Color: label.Color,
	}, nil
}

type person struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

func mapToPerson(p *model.Person) *person {
	if p == nil {
		return nil
	}
	return &person{Email: p.Email, DisplayName: p.DisplayName}
}

type participant struct {
	person
	ResponseStatus model.ResponseStatus `json:"response_status,omitempty"`
}

type eventResp struct {
	ID               string            `json:"id"`
	UID              string            `json:"uid"`
	CalendarID       int64             `json:"calendar_id"`
	Title            string            `json:"title"`
	Description      string            `json:"description,omitempty"`
	Location         string            `json:"location,omitempty"`
	Start            time.Time         `json:"start"`
	End              time.Time         `json:"end"`
	StartDay         string            `json:"start_day,omitempty"`
	EndDay           string            `json:"end_day,omitempty"`
	TimeZone         string            `json:"time_zone,omitempty"`
	Recurrences      []string          `json:"recurrences,omitempty"`
	RecurringEventID string            `json:"recurring_event_id,omitempty"`
	OriginalStart    *time.Time        `json:"original_start,omitempty"`
	Status           model.EventStatus `json:"status"`
	Organizer        *person           `json:"organizer,omitempty"`
	Creator          *person           `json:"creator,omitempty"`
	Participants     []*participant    `json:"participants,omitempty"`
	LabelIDs         []int64           `json:"label_ids,omitempty"`

	GuestsCanModify         bool `json:"guests_can_modify"`
	GuestsCanInviteOthers   bool `json:"guests_can_invite_others"`
	GuestsCanSeeOtherGuests bool `json:"guests_can_see_other_guests"`

	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func mapToEventResp(event *model.Event) (*eventResp, error) {
	resp := &eventResp{
		ID:                      event.ID,
		UID:                     event.UID.String(),
		CalendarID:              event.CalendarID,
		Title:                   event.Title,
		Description:             event.Description,
		Location:                event.Location,
		Start:                   event.Start,
		End:                     event.End,
		StartDay:                event.StartDay,
		EndDay:                  event.EndDay,
		TimeZone:                event.TimeZone,
		Recurrences:             event.Recurrences,
		RecurringEventID:        event.RecurringEventID,
		OriginalStart:           event.OriginalStart,
		Status:                  event.Status,
		Organizer:               mapToPerson(event.Organizer),
		Creator:                 mapToPerson(event.Creator),
		LabelIDs:                event.LabelIDs,
		GuestsCanModify:         event.GuestsCanModify,
		GuestsCanInviteOthers:   event.GuestsCanInviteOthers,
		GuestsCanSeeOtherGuests: event.GuestsCanSeeOtherGuests,
	}

	for _, p := range event.Participants {
		resp.Participants = append(resp.Participants, &participant{
			person:         person{Email: p.Email, DisplayName: p.DisplayName},
			ResponseStatus: p.ResponseStatus,
		})
	}

	if !event.UpdatedAt.IsZero() {
		updated := event.UpdatedAt
		resp.UpdatedAt = &updated
	}

	return resp, nil
}

func validTimezone(name string) bool {
	_, err := time.LoadLocation(name)
	return err == nil
}
