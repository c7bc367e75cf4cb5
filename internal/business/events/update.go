package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/database"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/recurrence"
)

// UpdateEvent writes info to the event with the given id. Updating a virtual
// instance materializes its override; changing the rule of a base event
// removes the overrides it no longer produces.
func (s *Service) UpdateEvent(ctx context.Context, user *model.User, calendar *model.Calendar, id string, info *model.EventCreate) (*model.Event, error) {
	fallbackTZ := fallbackTimeZone(user, calendar)

	var res *model.Event
	err := database.RunInTx(ctx, s.db, func(tx database.Tx) error {
		r, err := s.resolve(ctx, tx, user, calendar, id)
		if err != nil {
			return err
		}

		current := r.event()
		if current.Status == model.EventStatusDeleted {
			return model.ErrEventNotFound
		}

		if info.RecurringEventID != "" && info.RecurringEventID != current.RecurringEventID {
			return &model.InvalidEventIDError{ID: id, Reason: "recurring event id does not match"}
		}

		data, err := verifyPermissions(user, current, info)
		if err != nil {
			return err
		}

		if !equalInt64s(current.LabelIDs, data.LabelIDs) {
			if err := s.checkLabels(ctx, tx, user, data.LabelIDs); err != nil {
				return err
			}
		}

		switch {
		case r.virtual != nil:
			res, err = s.updateVirtual(ctx, tx, r, data)
		case r.row.IsInstance():
			res, err = s.updateOverride(ctx, tx, r, data)
		default:
			res, err = s.updateEvent(ctx, tx, r.row, data, fallbackTZ)
		}

		return err
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

func (s *Service) updateVirtual(ctx context.Context, q database.Queryable, r *resolved, data *model.EventCreate) (*model.Event, error) {
	override := materialize(r.virtual, data)

	uid, err := s.eventsRepository.UpsertOverride(ctx, q, override)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.UpsertOverride: %w", err)
	}
	override.UID = uid

	return recurrence.PatchOverride(r.parent, override), nil
}

func (s *Service) updateOverride(ctx context.Context, q database.Queryable, r *resolved, data *model.EventCreate) (*model.Event, error) {
	override := r.row.Clone()
	apply(override, data)

	if err := s.eventsRepository.UpdateEvent(ctx, q, override); err != nil {
		return nil, fmt.Errorf("eventsRepository.UpdateEvent: %w", err)
	}

	return recurrence.PatchOverride(r.parent, override), nil
}

func (s *Service) updateEvent(ctx context.Context, q database.Queryable, current *model.Event, data *model.EventCreate, fallbackTZ string) (*model.Event, error) {
	if err := validateRule(data, fallbackTZ); err != nil {
		return nil, err
	}

	reconcile := (current.IsRecurring() || data.IsRecurring()) && ruleChanged(current, data)

	ev := current.Clone()
	apply(ev, data)

	if err := s.eventsRepository.UpdateEvent(ctx, q, ev); err != nil {
		if errors.Is(err, model.ErrNoRecord) {
			return nil, model.ErrEventNotFound
		}
		return nil, fmt.Errorf("eventsRepository.UpdateEvent: %w", err)
	}

	if reconcile {
		if err := s.reconcileOverrides(ctx, q, ev, fallbackTZ); err != nil {
			return nil, fmt.Errorf("reconcile overrides: %w", err)
		}
	}

	return ev, nil
}
