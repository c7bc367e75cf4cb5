package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/google/uuid"
)

const maxIDAttempts = 5

// CreateEvent stores a new single or base recurring event organized by user.
func (s *Service) CreateEvent(ctx context.Context, user *model.User, calendar *model.Calendar, info *model.EventCreate) (*model.Event, error) {
	if info.IsInstance() || info.OriginalStart != nil {
		return nil, &model.EventRepoError{Reason: "instances are created by updating an occurrence of a recurring event"}
	}
	if info.Status == model.EventStatusDeleted {
		return nil, &model.EventRepoError{Reason: "can not create a deleted event"}
	}

	if err := validateRule(info, fallbackTimeZone(user, calendar)); err != nil {
		return nil, err
	}

	if err := s.checkLabels(ctx, s.db, user, info.LabelIDs); err != nil {
		return nil, err
	}

	organizer := &model.Person{Email: user.Email, DisplayName: user.FullName}
	event := &model.Event{
		UID:         uuid.New(),
		CalendarID:  calendar.ID,
		Organizer:   organizer,
		Creator:     organizer,
		EventCreate: *cloneCreate(info),
	}
	if event.Status == "" {
		event.Status = model.EventStatusActive
	}

	for attempt := 0; ; attempt++ {
		id, err := s.newID()
		if err != nil {
			return nil, fmt.Errorf("generate id: %w", err)
		}
		event.ID = id

		err = s.eventsRepository.CreateEvent(ctx, s.db, event)
		if err == nil {
			break
		}
		if errors.Is(err, model.ErrAlreadyExists) && attempt < maxIDAttempts {
			continue
		}
		return nil, fmt.Errorf("eventsRepository.CreateEvent: %w", err)
	}

	return event, nil
}
