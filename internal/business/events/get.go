package events

import (
	"context"
	"fmt"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/recurrence"
)

// GetEvent returns a single, base or override event, or synthesizes the
// virtual instance a composite id refers to.
func (s *Service) GetEvent(ctx context.Context, user *model.User, calendar *model.Calendar, id string) (*model.Event, error) {
	r, err := s.resolve(ctx, s.db, user, calendar, id)
	if err != nil {
		return nil, err
	}

	ev := r.event()
	if ev.Status == model.EventStatusDeleted {
		return nil, model.ErrEventNotFound
	}

	if r.row != nil && r.parent != nil {
		return recurrence.PatchOverride(r.parent, r.row), nil
	}

	return ev, nil
}

// GetEvents returns the events of a calendar intersecting the filter window:
// single events merged with the instances of every recurring event, sorted by
// start. The limit bounds single events only.
func (s *Service) GetEvents(ctx context.Context, user *model.User, calendar *model.Calendar, filter model.EventsFilter) ([]*model.Event, error) {
	filter.CalendarID = calendar.ID

	singles, err := s.eventsRepository.GetSingleEvents(ctx, s.db, filter)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetSingleEvents: %w", err)
	}

	bases, err := s.eventsRepository.GetRecurringEvents(ctx, s.db, calendar.ID, filter.To)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetRecurringEvents: %w", err)
	}

	baseIDs := make([]string, len(bases))
	for i, b := range bases {
		baseIDs[i] = b.ID
	}

	overrides, err := s.eventsRepository.GetOverrides(ctx, s.db, calendar.ID, baseIDs)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetOverrides: %w", err)
	}

	instances, err := s.expander.ExpandAll(bases, overrides, filter.From, filter.To, recurrence.ExpandOptions{
		TimeZone: fallbackTimeZone(user, calendar),
		Query:    filter.Query,
	})
	if err != nil {
		return nil, fmt.Errorf("expand: %w", err)
	}

	res := append(singles, instances...)
	recurrence.SortByStart(res)

	return res, nil
}

// ExportEvents returns the live single and base events of a calendar along
// with every override of the bases, tombstones included.
func (s *Service) ExportEvents(ctx context.Context, calendar *model.Calendar) ([]*model.Event, []*model.Event, error) {
	events, err := s.eventsRepository.GetCalendarEvents(ctx, s.db, calendar.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("eventsRepository.GetCalendarEvents: %w", err)
	}

	var baseIDs []string
	for _, e := range events {
		if e.IsRecurring() {
			baseIDs = append(baseIDs, e.ID)
		}
	}

	overrides, err := s.eventsRepository.GetOverrides(ctx, s.db, calendar.ID, baseIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("eventsRepository.GetOverrides: %w", err)
	}

	return events, overrides, nil
}
