package recurrence

import (
	"strings"
	"time"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
)

const (
	instanceSeparator  = "_"
	instanceDayLayout  = "20060102"
	instanceTimeLayout = "20060102T150405Z"
)

// InstanceID is a parsed composite id `{baseID}_{timestamp}`.
type InstanceID struct {
	BaseID string
	Suffix string
	Start  time.Time
	AllDay bool
}

// MakeInstanceID names the occurrence of base event baseID starting at start.
func MakeInstanceID(baseID string, start time.Time, allDay bool) string {
	return baseID + instanceSeparator + FormatInstant(start, allDay)
}

// FormatInstant renders start in UTC in the compact form used in instance ids.
func FormatInstant(start time.Time, allDay bool) string {
	if allDay {
		return start.UTC().Format(instanceDayLayout)
	}
	return start.UTC().Format(instanceTimeLayout)
}

// ParseInstanceID splits id on its last separator. Base ids may contain the
// separator themselves.
func ParseInstanceID(id string) (InstanceID, error) {
	i := strings.LastIndex(id, instanceSeparator)
	if i < 0 {
		return InstanceID{}, &model.InvalidEventIDError{ID: id, Reason: "no instance suffix"}
	}
	if i == 0 {
		return InstanceID{}, &model.InvalidEventIDError{ID: id, Reason: "empty base id"}
	}

	res := InstanceID{
		BaseID: id[:i],
		Suffix: id[i+len(instanceSeparator):],
	}

	if t, err := time.Parse(instanceTimeLayout, res.Suffix); err == nil {
		res.Start = t
		return res, nil
	}

	t, err := time.Parse(instanceDayLayout, res.Suffix)
	if err != nil {
		return InstanceID{}, &model.InvalidEventIDError{ID: id, Reason: "instance suffix is not a timestamp"}
	}
	res.Start = t
	res.AllDay = true

	return res, nil
}

// VerifyInstanceID checks a client supplied instance id against its parent:
// the base id must match, the parent's rule must produce the instant and the
// id must round-trip. It returns the occurrence start in the rule frame.
func VerifyInstanceID(id string, parent *model.Event, fallbackTZ string) (time.Time, error) {
	parsed, err := ParseInstanceID(id)
	if err != nil {
		return time.Time{}, err
	}

	if parsed.BaseID != parent.ID {
		return time.Time{}, &model.InvalidEventIDError{ID: id, Reason: "base id does not match parent"}
	}
	if !parent.IsRecurring() {
		return time.Time{}, &model.InvalidEventIDError{ID: id, Reason: "parent is not recurring"}
	}
	if parsed.AllDay != parent.IsAllDay() {
		return time.Time{}, &model.InvalidEventIDError{ID: id, Reason: "instance kind does not match parent"}
	}

	rs, err := ParseRule(parent.Recurrences, EffectiveTimeZone(parent.TimeZone, fallbackTZ), parent.Start, parent.StartDay)
	if err != nil {
		return time.Time{}, err
	}

	start := rs.Normalize(parsed.Start)
	if !rs.Contains(start) {
		return time.Time{}, &model.InvalidEventIDError{ID: id, Reason: "no such occurrence"}
	}

	if MakeInstanceID(parent.ID, start, parsed.AllDay) != id {
		return time.Time{}, &model.InvalidEventIDError{ID: id, Reason: "id does not round-trip"}
	}

	return start, nil
}

// EffectiveTimeZone picks the first non empty zone.
func EffectiveTimeZone(zones ...string) string {
	for _, z := range zones {
		if z != "" {
			return z
		}
	}
	return ""
}
