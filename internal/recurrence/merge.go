package recurrence

import (
	"sort"
	"time"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
)

// Partition is the split of persisted overrides for a window query.
type Partition struct {
	// MovedIn holds overrides that currently start inside the window although
	// their original slot is outside of it.
	MovedIn []*model.Event
	// ByBase indexes overrides whose original slot is inside the window by
	// base id, then composite id.
	ByBase map[string]map[string]*model.Event
}

// PartitionOverrides splits overrides into moved in events and the per base
// index used by Expand. Overrides without an original start predate that
// column and can only surface by their current start.
func PartitionOverrides(overrides []*model.Event, from, to time.Time) Partition {
	p := Partition{ByBase: make(map[string]map[string]*model.Event)}

	for _, o := range overrides {
		if o.OriginalStart != nil && inWindow(*o.OriginalStart, from, to, o.IsAllDay(), time.Second) {
			byID, ok := p.ByBase[o.RecurringEventID]
			if !ok {
				byID = make(map[string]*model.Event)
				p.ByBase[o.RecurringEventID] = byID
			}
			byID[o.ID] = o
			continue
		}

		if o.Status != model.EventStatusDeleted && inWindow(o.Start, from, to, o.IsAllDay(), 0) {
			p.MovedIn = append(p.MovedIn, o)
		}
	}

	return p
}

// ExpandAll expands bases over [from, to] and merges the result with the
// moved in overrides. Overrides moved out of the window are dropped. The
// result is sorted by start.
func (e *Expander) ExpandAll(bases, overrides []*model.Event, from, to time.Time, opts ExpandOptions) ([]*model.Event, error) {
	p := PartitionOverrides(overrides, from, to)
	tokens := model.SplitQuery(opts.Query)

	basesByID := make(map[string]*model.Event, len(bases))
	var res []*model.Event

	for _, b := range bases {
		basesByID[b.ID] = b

		instances, err := e.Expand(b, p.ByBase[b.ID], from, to, opts)
		if err != nil {
			return nil, err
		}

		for ev, ok := instances.Next(); ok; ev, ok = instances.Next() {
			if _, overridden := p.ByBase[b.ID][ev.ID]; overridden && !inWindowSpan(ev, from, to) {
				continue
			}
			res = append(res, ev)
		}
	}

	for _, o := range p.MovedIn {
		if !MatchesQuery(o.Title, tokens) {
			continue
		}
		if b, ok := basesByID[o.RecurringEventID]; ok {
			o = PatchOverride(b, o)
		}
		res = append(res, o)
	}

	SortByStart(res)

	return res, nil
}

// SortByStart orders events by start, keeping the relative order of ties.
func SortByStart(events []*model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
}

func inWindow(t, from, to time.Time, naive bool, pad time.Duration) bool {
	if naive {
		t, from, to = stripZone(t.UTC()), stripZone(from), stripZone(to)
	}
	return !t.Before(from.Add(-pad)) && !t.After(to.Add(pad))
}

func inWindowSpan(ev *model.Event, from, to time.Time) bool {
	if ev.IsAllDay() {
		from, to = stripZone(from), stripZone(to)
	}
	return ev.Overlaps(from, to)
}
