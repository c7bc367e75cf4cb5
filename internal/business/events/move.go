package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/recurrence"
)

var errMoveInstance = &model.EventRepoError{Reason: "can not move an instance of a recurring event"}

// MoveEvent moves a single or base event, together with its overrides, to
// another calendar.
func (s *Service) MoveEvent(ctx context.Context, from *model.Calendar, id string, to *model.Calendar) (*model.Event, error) {
	ev, err := s.eventsRepository.GetEventByID(ctx, s.db, from.ID, id)
	if err != nil {
		if !errors.Is(err, model.ErrNoRecord) {
			return nil, fmt.Errorf("eventsRepository.GetEventByID: %w", err)
		}
		if _, err := recurrence.ParseInstanceID(id); err == nil {
			return nil, errMoveInstance
		}
		return nil, model.ErrEventNotFound
	}

	if ev.IsInstance() {
		return nil, errMoveInstance
	}
	if ev.Status == model.EventStatusDeleted {
		return nil, model.ErrEventNotFound
	}

	if from.ID == to.ID {
		return ev, nil
	}

	if err := s.eventsRepository.MoveEvent(ctx, s.db, from.ID, id, to.ID); err != nil {
		if errors.Is(err, model.ErrAlreadyExists) {
			return nil, &model.EventRepoError{Reason: fmt.Sprintf("event %s already exists in calendar %d", id, to.ID)}
		}
		return nil, fmt.Errorf("eventsRepository.MoveEvent: %w", err)
	}

	ev.CalendarID = to.ID
	return ev, nil
}
