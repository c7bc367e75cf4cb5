package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/google/uuid"
)

type eventDTO struct {
	UID                     uuid.UUID
	ID                      string
	CalendarID              int64
	Title                   string
	Description             string
	Location                string
	StartTime               time.Time
	EndTime                 time.Time
	StartDay                string
	EndDay                  string
	TimeZone                string
	Recurrences             []string
	RecurringEventID        string
	OriginalStart           *time.Time
	OriginalStartDay        string
	OriginalTimezone        string
	Status                  string
	Organizer               *personDTO
	Creator                 *personDTO
	Participants            []*participantDTO
	LabelIDs                []int64 `db:"label_ids"`
	GuestsCanModify         bool
	GuestsCanInviteOthers   bool
	GuestsCanSeeOtherGuests bool
	ProviderID              string
	UpdatedAt               time.Time
}

type personDTO struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

type participantDTO struct {
	Email          string `json:"email"`
	DisplayName    string `json:"display_name,omitempty"`
	ResponseStatus string `json:"response_status"`
}

func mapToEvent(dto *eventDTO) *model.Event {
	var originalStart *time.Time
	if dto.OriginalStart != nil {
		t := dto.OriginalStart.UTC()
		originalStart = &t
	}

	var participants []*model.Participant
	if len(dto.Participants) != 0 {
		participants = make([]*model.Participant, len(dto.Participants))
		for i, p := range dto.Participants {
			participants[i] = &model.Participant{
				Person:         model.Person{Email: p.Email, DisplayName: p.DisplayName},
				ResponseStatus: model.ResponseStatus(p.ResponseStatus),
			}
		}
	}

	var recurrences []string
	if len(dto.Recurrences) != 0 {
		recurrences = dto.Recurrences
	}

	var labelIDs []int64
	if len(dto.LabelIDs) != 0 {
		labelIDs = dto.LabelIDs
	}

	return &model.Event{
		UID:              dto.UID,
		ID:               dto.ID,
		CalendarID:       dto.CalendarID,
		OriginalStartDay: dto.OriginalStartDay,
		OriginalTimezone: dto.OriginalTimezone,
		Organizer:        mapToPerson(dto.Organizer),
		Creator:          mapToPerson(dto.Creator),
		ProviderID:       dto.ProviderID,
		UpdatedAt:        dto.UpdatedAt.UTC(),
		EventCreate: model.EventCreate{
			Title:                   dto.Title,
			Description:             dto.Description,
			Location:                dto.Location,
			Start:                   dto.StartTime.UTC(),
			End:                     dto.EndTime.UTC(),
			StartDay:                dto.StartDay,
			EndDay:                  dto.EndDay,
			TimeZone:                dto.TimeZone,
			Recurrences:             recurrences,
			RecurringEventID:        dto.RecurringEventID,
			OriginalStart:           originalStart,
			Status:                  model.EventStatus(dto.Status),
			Participants:            participants,
			LabelIDs:                labelIDs,
			GuestsCanModify:         dto.GuestsCanModify,
			GuestsCanInviteOthers:   dto.GuestsCanInviteOthers,
			GuestsCanSeeOtherGuests: dto.GuestsCanSeeOtherGuests,
		},
	}
}

func mapToPerson(dto *personDTO) *model.Person {
	if dto == nil {
		return nil
	}
	return &model.Person{Email: dto.Email, DisplayName: dto.DisplayName}
}

// eventValues returns the column values of e in the order of columns.
func eventValues(e *model.Event) ([]interface{}, error) {
	organizer, err := personJSON(e.Organizer)
	if err != nil {
		return nil, fmt.Errorf("marshal organizer: %w", err)
	}

	creator, err := personJSON(e.Creator)
	if err != nil {
		return nil, fmt.Errorf("marshal creator: %w", err)
	}

	participants := make([]*participantDTO, len(e.Participants))
	for i, p := range e.Participants {
		participants[i] = &participantDTO{
			Email:          p.Email,
			DisplayName:    p.DisplayName,
			ResponseStatus: string(p.ResponseStatus),
		}
	}
	participantsJSON, err := json.Marshal(participants)
	if err != nil {
		return nil, fmt.Errorf("marshal participants: %w", err)
	}

	recurrences := e.Recurrences
	if recurrences == nil {
		recurrences = []string{}
	}

	labelIDs := e.LabelIDs
	if labelIDs == nil {
		labelIDs = []int64{}
	}

	status := e.Status
	if status == "" {
		status = model.EventStatusActive
	}

	return []interface{}{
		e.UID,
		e.ID,
		e.CalendarID,
		e.Title,
		e.Description,
		e.Location,
		e.Start,
		e.End,
		e.StartDay,
		e.EndDay,
		e.TimeZone,
		recurrences,
		e.RecurringEventID,
		e.OriginalStart,
		e.OriginalStartDay,
		e.OriginalTimezone,
		string(status),
		organizer,
		creator,
		string(participantsJSON),
		labelIDs,
		e.GuestsCanModify,
		e.GuestsCanInviteOthers,
		e.GuestsCanSeeOtherGuests,
		e.ProviderID,
		e.UpdatedAt,
	}, nil
}

func personJSON(p *model.Person) (interface{}, error) {
	if p == nil {
		return nil, nil
	}

	b, err := json.Marshal(&personDTO{Email: p.Email, DisplayName: p.DisplayName})
	if err != nil {
		return nil, err
	}

	return string(b), nil
}
