package recurrence

import (
	"strings"
	"time"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Expander turns base recurring events into concrete instances.
type Expander struct {
	logger *zap.SugaredLogger
}

func NewExpander(logger *zap.SugaredLogger) *Expander {
	return &Expander{logger: logger}
}

type ExpandOptions struct {
	// TimeZone is used when the base event has none: the calendar zone, then the user zone.
	TimeZone string
	// Query keeps only instances whose title matches, see model.SplitQuery.
	Query string
}

// Expand enumerates the instances of base inside [from, to]. overrides maps
// composite ids to materialized instances of base. The result is ascending
// by original start; call Expand again to restart.
func (e *Expander) Expand(base *model.Event, overrides map[string]*model.Event, from, to time.Time, opts ExpandOptions) (*Instances, error) {
	if !base.IsRecurring() {
		e.logger.Warnw("recurring event has no recurrences", "event_id", base.ID, "calendar_id", base.CalendarID)
		return &Instances{done: true}, nil
	}

	tz := EffectiveTimeZone(base.TimeZone, opts.TimeZone)
	rs, err := ParseRule(base.Recurrences, tz, base.Start, base.StartDay)
	if err != nil {
		return nil, err
	}

	from, to = rs.Normalize(from), rs.Normalize(to)
	if until, ok := rs.Until(); ok && until.Before(from) {
		return &Instances{done: true}, nil
	}

	return &Instances{
		base:        base,
		overrides:   overrides,
		occurrences: rs.Between(from.Add(-time.Second), to.Add(time.Second)),
		allDay:      base.IsAllDay(),
		duration:    base.End.Sub(base.Start),
		timeZone:    tz,
		tokens:      model.SplitQuery(opts.Query),
	}, nil
}

// Instances is a lazy sequence of expanded events.
type Instances struct {
	base        *model.Event
	overrides   map[string]*model.Event
	occurrences *Occurrences
	allDay      bool
	duration    time.Duration
	timeZone    string
	tokens      []string
	done        bool
}

func (it *Instances) Next() (*model.Event, bool) {
	if it.done {
		return nil, false
	}

	for {
		t, ok := it.occurrences.Next()
		if !ok {
			it.done = true
			return nil, false
		}

		id := MakeInstanceID(it.base.ID, t, it.allDay)

		var ev *model.Event
		if o, ok := it.overrides[id]; ok {
			if o.Status == model.EventStatusDeleted {
				continue
			}
			ev = PatchOverride(it.base, o)
		} else {
			ev = it.virtual(id, t)
		}

		if !MatchesQuery(ev.Title, it.tokens) {
			continue
		}

		return ev, true
	}
}

// Collect drains the sequence.
func (it *Instances) Collect() []*model.Event {
	var res []*model.Event
	for ev, ok := it.Next(); ok; ev, ok = it.Next() {
		res = append(res, ev)
	}
	return res
}

func (it *Instances) virtual(id string, start time.Time) *model.Event {
	ev := it.base.Clone()

	ev.UID = uuid.Nil
	ev.ID = id
	ev.ProviderID = ""
	ev.Start = start
	ev.End = start.Add(it.duration)
	ev.RecurringEventID = it.base.ID
	ev.OriginalStart = &start
	ev.OriginalTimezone = it.timeZone

	if it.allDay {
		ev.StartDay = ev.Start.Format(model.DayFormat)
		ev.EndDay = ev.End.Format(model.DayFormat)
		ev.OriginalStartDay = ev.StartDay
	}

	return ev
}

// PatchOverride returns a copy of override carrying the recurrence metadata
// of its base, which override rows do not store.
func PatchOverride(base, override *model.Event) *model.Event {
	ev := override.Clone()
	ev.Recurrences = append([]string(nil), base.Recurrences...)
	ev.CalendarID = base.CalendarID
	return ev
}

// MatchesQuery reports whether any token is a substring of the case folded title.
func MatchesQuery(title string, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}

	title = strings.ToLower(title)
	for _, t := range tokens {
		if strings.Contains(title, t) {
			return true
		}
	}

	return false
}
