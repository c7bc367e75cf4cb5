package recurrence

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/teambition/rrule-go"
)

// MaxRecurringEventCount caps how many occurrences a single rule yields for one window.
const MaxRecurringEventCount = 1000

// maxRuleIterations bounds how many instants one enumeration may walk,
// including the ones before the window.
var maxRuleIterations = 500_000

// RuleSet is a parsed recurrence line set anchored to the event start.
type RuleSet struct {
	set   *rrule.Set
	loc   *time.Location
	naive bool
}

// ParseRule builds a rule set from RRULE/EXDATE/RDATE lines. When startDay is
// set the rule is anchored to a naive date, otherwise to start localized into
// timezone.
func ParseRule(lines []string, timezone string, start time.Time, startDay string) (*RuleSet, error) {
	if len(lines) == 0 {
		return nil, &model.InvalidRecurrenceError{Reason: "no recurrence lines"}
	}

	for _, l := range lines {
		upper := strings.ToUpper(l)
		if strings.Contains(upper, "DTSTART") || strings.Contains(upper, "DTEND") {
			return nil, &model.InvalidRecurrenceError{Reason: "DTSTART and DTEND must not be embedded"}
		}
	}

	loc, err := loadLocation(timezone)
	if err != nil {
		return nil, &model.InvalidRecurrenceError{Reason: fmt.Sprintf("unknown time zone %q", timezone)}
	}

	rs := &RuleSet{loc: loc}

	var anchor time.Time
	if startDay != "" {
		anchor, err = time.Parse(model.DayFormat, startDay)
		if err != nil {
			return nil, &model.InvalidRecurrenceError{Reason: fmt.Sprintf("bad start day %q", startDay)}
		}
		rs.naive = true
		rs.loc = time.UTC
	} else {
		if start.IsZero() {
			return nil, &model.InvalidRecurrenceError{Reason: "rule has no start"}
		}
		anchor = start.In(loc)
	}

	set, err := rrule.StrSliceToRRuleSetInLoc(lines, rs.loc)
	if err != nil {
		return nil, &model.InvalidRecurrenceError{Reason: err.Error()}
	}
	if rule := set.GetRRule(); rule != nil && rule.OrigOptions.Freq == rrule.SECONDLY {
		return nil, &model.InvalidRecurrenceError{Reason: "sub-minute frequencies are not supported"}
	}
	set.DTStart(anchor)
	rs.set = set

	return rs, nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

// Naive reports whether the rule is anchored to a date without a zone.
func (r *RuleSet) Naive() bool {
	return r.naive
}

func (r *RuleSet) Location() *time.Location {
	return r.loc
}

// Normalize brings t into the rule's frame: the wall clock without zone for
// naive rules, the rule location otherwise.
func (r *RuleSet) Normalize(t time.Time) time.Time {
	if r.naive {
		return stripZone(t)
	}
	return t.In(r.loc)
}

// Until returns the UNTIL bound of the RRULE, if any.
func (r *RuleSet) Until() (time.Time, bool) {
	rule := r.set.GetRRule()
	if rule == nil || rule.OrigOptions.Until.IsZero() {
		return time.Time{}, false
	}
	return rule.OrigOptions.Until, true
}

// Contains reports whether t is produced by the rule set.
func (r *RuleSet) Contains(t time.Time) bool {
	t = r.Normalize(t)
	got := r.set.After(t, true)
	return !got.IsZero() && got.Equal(t)
}

// Between returns the occurrences inside [after, before]. Every call starts a
// fresh enumeration.
func (r *RuleSet) Between(after, before time.Time) *Occurrences {
	return &Occurrences{
		next:   r.set.Iterator(),
		after:  r.Normalize(after),
		before: r.Normalize(before),
	}
}

// Occurrences lazily enumerates rule instants in ascending order.
type Occurrences struct {
	next   func() (time.Time, bool)
	after  time.Time
	before time.Time
	count  int
	walked int
	done   bool
}

func (o *Occurrences) Next() (time.Time, bool) {
	for !o.done {
		o.walked++
		if o.walked > maxRuleIterations {
			o.done = true
			break
		}

		t, ok := o.next()
		if !ok || t.After(o.before) {
			o.done = true
			break
		}
		if t.Before(o.after) {
			continue
		}

		o.count++
		if o.count >= MaxRecurringEventCount {
			o.done = true
		}
		return t, true
	}

	return time.Time{}, false
}

func stripZone(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
