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

// resolved is an event id looked up in a calendar. Exactly one of row and
// virtual is set.
type resolved struct {
	// row is a persisted single, base or override event.
	row *model.Event
	// virtual is an instance synthesized from parent.
	virtual *model.Event
	// parent is the base event of an override or a virtual instance.
	parent *model.Event
}

func (r *resolved) event() *model.Event {
	if r.virtual != nil {
		return r.virtual
	}
	return r.row
}

// resolve maps an event id to a persisted row or, failing that, to a virtual
// instance of a live base event. Unknown ids yield model.ErrEventNotFound.
func (s *Service) resolve(ctx context.Context, q database.Queryable, user *model.User, calendar *model.Calendar, id string) (*resolved, error) {
	row, err := s.eventsRepository.GetEventByID(ctx, q, calendar.ID, id)
	switch {
	case err == nil:
		res := &resolved{row: row}
		if row.IsInstance() {
			res.parent, err = s.getParent(ctx, q, calendar.ID, row.RecurringEventID)
			if err != nil {
				return nil, err
			}
		}
		return res, nil
	case !errors.Is(err, model.ErrNoRecord):
		return nil, fmt.Errorf("eventsRepository.GetEventByID: %w", err)
	}

	parsed, err := recurrence.ParseInstanceID(id)
	if err != nil {
		return nil, model.ErrEventNotFound
	}

	parent, err := s.getParent(ctx, q, calendar.ID, parsed.BaseID)
	if err != nil {
		return nil, err
	}

	virtual, err := s.instance(parent, id, fallbackTimeZone(user, calendar))
	if err != nil {
		return nil, err
	}

	return &resolved{virtual: virtual, parent: parent}, nil
}

func (s *Service) getParent(ctx context.Context, q database.Queryable, calendarID int64, id string) (*model.Event, error) {
	parent, err := s.eventsRepository.GetEventByID(ctx, q, calendarID, id)
	if err != nil {
		if errors.Is(err, model.ErrNoRecord) {
			return nil, model.ErrEventNotFound
		}
		return nil, fmt.Errorf("eventsRepository.GetEventByID: %w", err)
	}

	if parent.Status == model.EventStatusDeleted || !parent.IsRecurring() {
		return nil, model.ErrEventNotFound
	}

	return parent, nil
}

// instance synthesizes the virtual instance of parent with the given
// composite id, verifying that the rule produces it.
func (s *Service) instance(parent *model.Event, id, fallbackTZ string) (*model.Event, error) {
	start, err := recurrence.VerifyInstanceID(id, parent, fallbackTZ)
	if err != nil {
		return nil, err
	}

	instances, err := s.expander.Expand(parent, nil, start, start, recurrence.ExpandOptions{TimeZone: fallbackTZ})
	if err != nil {
		return nil, err
	}

	for ev, ok := instances.Next(); ok; ev, ok = instances.Next() {
		if ev.ID == id {
			return ev, nil
		}
	}

	return nil, &model.InvalidEventIDError{ID: id, Reason: "no such occurrence"}
}

// materialize builds the override row for a virtual instance carrying data.
func materialize(virtual *model.Event, data *model.EventCreate) *model.Event {
	ev := &model.Event{
		UID:              uuid.New(),
		ID:               virtual.ID,
		CalendarID:       virtual.CalendarID,
		OriginalStartDay: virtual.OriginalStartDay,
		OriginalTimezone: virtual.OriginalTimezone,
		Organizer:        virtual.Organizer,
		Creator:          virtual.Creator,
		EventCreate:      *data,
	}

	originalStart := *virtual.OriginalStart
	ev.OriginalStart = &originalStart
	ev.RecurringEventID = virtual.RecurringEventID
	ev.Recurrences = nil

	if ev.Status == "" {
		ev.Status = model.EventStatusActive
	}

	return ev
}

// apply overwrites the writable fields of ev with data. Structural fields
// linking an override to its base are kept.
func apply(ev *model.Event, data *model.EventCreate) {
	recurringEventID, originalStart := ev.RecurringEventID, ev.OriginalStart
	status := ev.Status

	ev.EventCreate = *data
	ev.RecurringEventID, ev.OriginalStart = recurringEventID, originalStart

	if ev.IsInstance() {
		ev.Recurrences = nil
	}
	if ev.Status == "" {
		ev.Status = status
	}
}

// reconcileOverrides deletes the overrides of base whose original start the
// rule no longer produces.
func (s *Service) reconcileOverrides(ctx context.Context, q database.Queryable, base *model.Event, fallbackTZ string) error {
	if !base.IsRecurring() {
		if err := s.eventsRepository.DeleteOverrides(ctx, q, base.CalendarID, base.ID); err != nil {
			return fmt.Errorf("eventsRepository.DeleteOverrides: %w", err)
		}
		return nil
	}

	overrides, err := s.eventsRepository.GetOverrides(ctx, q, base.CalendarID, []string{base.ID})
	if err != nil {
		return fmt.Errorf("eventsRepository.GetOverrides: %w", err)
	}

	rs, err := recurrence.ParseRule(base.Recurrences, recurrence.EffectiveTimeZone(base.TimeZone, fallbackTZ), base.Start, base.StartDay)
	if err != nil {
		return err
	}

	var orphaned []string
	for _, o := range overrides {
		if o.OriginalStart == nil {
			continue
		}

		produced := o.IsAllDay() == base.IsAllDay() && rs.Contains(rs.Normalize(*o.OriginalStart))
		if !produced {
			orphaned = append(orphaned, o.ID)
		}
	}

	if len(orphaned) == 0 {
		return nil
	}

	if err := s.eventsRepository.DeleteEventsByIDs(ctx, q, base.CalendarID, orphaned); err != nil {
		return fmt.Errorf("eventsRepository.DeleteEventsByIDs: %w", err)
	}

	s.logger.Infow("removed orphaned overrides",
		"calendar_id", base.CalendarID,
		"event_id", base.ID,
		"overrides", orphaned,
	)

	return nil
}

// ruleChanged reports whether an update moves the occurrences of a base event.
func ruleChanged(old *model.Event, data *model.EventCreate) bool {
	if !equalStrings(old.Recurrences, data.Recurrences) {
		return true
	}
	return !old.Start.Equal(data.Start) || old.StartDay != data.StartDay || old.TimeZone != data.TimeZone
}

func (s *Service) checkLabels(ctx context.Context, q database.Queryable, user *model.User, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	labels, err := s.labelsRepository.GetUserLabels(ctx, q, user.ID)
	if err != nil {
		return fmt.Errorf("labelsRepository.GetUserLabels: %w", err)
	}

	owned := make(map[int64]struct{}, len(labels))
	for _, l := range labels {
		owned[l.ID] = struct{}{}
	}

	for _, id := range ids {
		if _, ok := owned[id]; !ok {
			return &model.EventRepoError{Reason: fmt.Sprintf("label %d not found", id)}
		}
	}

	return nil
}

func validateRule(data *model.EventCreate, fallbackTZ string) error {
	if !data.IsRecurring() {
		return nil
	}

	_, err := recurrence.ParseRule(data.Recurrences, recurrence.EffectiveTimeZone(data.TimeZone, fallbackTZ), data.Start, data.StartDay)
	return err
}

func fallbackTimeZone(user *model.User, calendar *model.Calendar) string {
	var userTZ string
	if user != nil {
		userTZ = user.Timezone
	}
	return recurrence.EffectiveTimeZone(calendar.Timezone, userTZ)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalInt64s(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func cloneCreate(data *model.EventCreate) *model.EventCreate {
	ev := (&model.Event{EventCreate: *data}).Clone()
	return &ev.EventCreate
}
