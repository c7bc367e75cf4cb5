package events

import (
	"context"
	"fmt"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/database"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
)

// DeleteEvent marks an event deleted. Deleting a base event removes all of its
// overrides; deleting a virtual instance stores a tombstone override.
func (s *Service) DeleteEvent(ctx context.Context, user *model.User, calendar *model.Calendar, id string) error {
	return database.RunInTx(ctx, s.db, func(tx database.Tx) error {
		r, err := s.resolve(ctx, tx, user, calendar, id)
		if err != nil {
			return err
		}

		if r.virtual != nil {
			tombstone := materialize(r.virtual, &r.virtual.EventCreate)
			tombstone.Status = model.EventStatusDeleted

			if _, err := s.eventsRepository.UpsertOverride(ctx, tx, tombstone); err != nil {
				return fmt.Errorf("eventsRepository.UpsertOverride: %w", err)
			}
			return nil
		}

		return s.markDeleted(ctx, tx, r.row)
	})
}

func (s *Service) markDeleted(ctx context.Context, q database.Queryable, ev *model.Event) error {
	if ev.Status == model.EventStatusDeleted {
		return model.ErrEventNotFound
	}

	deleted := ev.Clone()
	deleted.Status = model.EventStatusDeleted

	if err := s.eventsRepository.UpdateEvent(ctx, q, deleted); err != nil {
		return fmt.Errorf("eventsRepository.UpdateEvent: %w", err)
	}

	if deleted.IsInstance() {
		return nil
	}

	if err := s.eventsRepository.DeleteOverrides(ctx, q, deleted.CalendarID, deleted.ID); err != nil {
		return fmt.Errorf("eventsRepository.DeleteOverrides: %w", err)
	}

	return nil
}
