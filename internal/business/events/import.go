package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/database"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/recurrence"
	"github.com/google/uuid"
)

// ImportEvent applies an event received from the calendar provider. Rows are
// matched by provider id; an item with RecurringEventID set is an instance of
// the base event with that provider id and is stored as its override.
func (s *Service) ImportEvent(ctx context.Context, calendar *model.Calendar, item *model.Event) error {
	if item.ProviderID == "" {
		return &model.EventRepoError{Reason: "imported event has no provider id"}
	}

	return database.RunInTx(ctx, s.db, func(tx database.Tx) error {
		if item.IsInstance() {
			return s.importInstance(ctx, tx, calendar, item)
		}
		return s.importEvent(ctx, tx, calendar, item)
	})
}

func (s *Service) importEvent(ctx context.Context, q database.Queryable, calendar *model.Calendar, item *model.Event) error {
	current, err := s.eventsRepository.GetEventByProviderID(ctx, q, calendar.ID, item.ProviderID)
	if err != nil && !errors.Is(err, model.ErrNoRecord) {
		return fmt.Errorf("eventsRepository.GetEventByProviderID: %w", err)
	}

	if current == nil {
		if item.Status == model.EventStatusDeleted {
			return nil
		}
		return s.createImported(ctx, q, calendar, item)
	}

	if item.Status == model.EventStatusDeleted {
		if current.Status == model.EventStatusDeleted {
			return nil
		}
		return s.markDeleted(ctx, q, current)
	}

	data := &item.EventCreate
	if err := validateRule(data, calendar.Timezone); err != nil {
		return err
	}

	reconcile := (current.IsRecurring() || data.IsRecurring()) && ruleChanged(current, data)

	ev := current.Clone()
	apply(ev, data)
	ev.LabelIDs = current.LabelIDs
	ev.Organizer, ev.Creator = item.Organizer, item.Creator
	ev.Status = item.Status

	if err := s.eventsRepository.UpdateEvent(ctx, q, ev); err != nil {
		return fmt.Errorf("eventsRepository.UpdateEvent: %w", err)
	}

	if reconcile {
		return s.reconcileOverrides(ctx, q, ev, calendar.Timezone)
	}

	return nil
}

func (s *Service) createImported(ctx context.Context, q database.Queryable, calendar *model.Calendar, item *model.Event) error {
	if err := validateRule(&item.EventCreate, calendar.Timezone); err != nil {
		return err
	}

	id, err := s.newID()
	if err != nil {
		return fmt.Errorf("generate id: %w", err)
	}

	ev := item.Clone()
	ev.UID = uuid.New()
	ev.ID = id
	ev.CalendarID = calendar.ID
	if ev.Status == "" {
		ev.Status = model.EventStatusActive
	}

	if err := s.eventsRepository.CreateEvent(ctx, q, ev); err != nil {
		return fmt.Errorf("eventsRepository.CreateEvent: %w", err)
	}

	return nil
}

func (s *Service) importInstance(ctx context.Context, q database.Queryable, calendar *model.Calendar, item *model.Event) error {
	if item.OriginalStart == nil {
		return &model.EventRepoError{Reason: fmt.Sprintf("instance %s has no original start", item.ProviderID)}
	}

	parent, err := s.eventsRepository.GetEventByProviderID(ctx, q, calendar.ID, item.RecurringEventID)
	if err != nil {
		if errors.Is(err, model.ErrNoRecord) {
			return &model.EventRepoError{Reason: fmt.Sprintf("recurring event %s not found", item.RecurringEventID)}
		}
		return fmt.Errorf("eventsRepository.GetEventByProviderID: %w", err)
	}
	if !parent.IsRecurring() {
		return &model.EventRepoError{Reason: fmt.Sprintf("event %s is not recurring", item.RecurringEventID)}
	}

	timezone := recurrence.EffectiveTimeZone(parent.TimeZone, calendar.Timezone)
	rs, err := recurrence.ParseRule(parent.Recurrences, timezone, parent.Start, parent.StartDay)
	if err != nil {
		return err
	}
	if !rs.Contains(*item.OriginalStart) {
		return &model.EventRepoError{Reason: fmt.Sprintf("instance %s is not produced by its recurring event", item.ProviderID)}
	}

	override := item.Clone()
	override.UID = uuid.New()
	override.ID = recurrence.MakeInstanceID(parent.ID, *item.OriginalStart, parent.IsAllDay())
	override.CalendarID = calendar.ID
	override.RecurringEventID = parent.ID
	override.Recurrences = nil
	override.OriginalTimezone = timezone
	if parent.IsAllDay() {
		override.OriginalStartDay = item.OriginalStart.Format(model.DayFormat)
	}
	if override.Status == "" {
		override.Status = model.EventStatusActive
	}

	if _, err := s.eventsRepository.UpsertOverride(ctx, q, override); err != nil {
		return fmt.Errorf("eventsRepository.UpsertOverride: %w", err)
	}

	return nil
}

// ProviderIDs lists the provider ids of the live provider-linked events of a
// calendar.
func (s *Service) ProviderIDs(ctx context.Context, calendar *model.Calendar) ([]string, error) {
	ids, err := s.eventsRepository.GetProviderIDs(ctx, s.db, calendar.ID)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetProviderIDs: %w", err)
	}

	return ids, nil
}
