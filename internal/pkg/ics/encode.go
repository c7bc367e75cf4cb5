package ics

import (
	"io"
	"strings"
	"time"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/recurrence"
	ical "github.com/arran4/golang-ical"
)

const productID = "-//calendar-sync//EN"

// Encode writes the single and base events of a calendar as an ICS feed.
// Overrides become VEVENTs with RECURRENCE-ID sharing the UID of their base;
// deleted overrides become EXDATE lines of the base.
func Encode(w io.Writer, calendar *model.Calendar, events, overrides []*model.Event) error {
	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodPublish)
	cal.SetName(calendar.Name)
	if calendar.Timezone != "" {
		cal.SetXWRTimezone(calendar.Timezone)
	}

	byBase := make(map[string][]*model.Event)
	for _, o := range overrides {
		byBase[o.RecurringEventID] = append(byBase[o.RecurringEventID], o)
	}

	for _, ev := range events {
		uid := ev.UID.String()

		ve := cal.AddEvent(uid)
		encodeEvent(ve, ev, calendar.Timezone)
		for _, line := range ev.Recurrences {
			addRecurrenceLine(ve, line)
		}

		for _, o := range byBase[ev.ID] {
			if o.OriginalStart == nil {
				continue
			}

			if o.Status == model.EventStatusDeleted {
				setTime(ve, ical.ComponentPropertyExdate, *o.OriginalStart, ev.IsAllDay(), effectiveZone(ev, calendar))
				continue
			}

			ov := cal.AddEvent(uid)
			encodeEvent(ov, o, calendar.Timezone)
			setTime(ov, propRecurrence, *o.OriginalStart, ev.IsAllDay(), effectiveZone(ev, calendar))
		}
	}

	return cal.SerializeTo(w)
}

func encodeEvent(ve *ical.VEvent, ev *model.Event, fallbackTZ string) {
	stamp := ev.UpdatedAt
	if stamp.IsZero() {
		stamp = time.Now()
	}
	ve.SetDtStampTime(stamp)

	ve.SetSummary(ev.Title)
	if ev.Description != "" {
		ve.SetDescription(ev.Description)
	}
	if ev.Location != "" {
		ve.SetLocation(ev.Location)
	}

	tz := recurrence.EffectiveTimeZone(ev.TimeZone, fallbackTZ)
	setTime(ve, ical.ComponentPropertyDtStart, ev.Start, ev.IsAllDay(), tz)
	setTime(ve, ical.ComponentPropertyDtEnd, ev.End, ev.IsAllDay(), tz)

	switch ev.Status {
	case model.EventStatusTentative:
		ve.SetStatus(ical.ObjectStatusTentative)
	case model.EventStatusDeleted:
		ve.SetStatus(ical.ObjectStatusCancelled)
	default:
		ve.SetStatus(ical.ObjectStatusConfirmed)
	}

	if ev.Organizer != nil {
		ve.SetOrganizer("mailto:"+ev.Organizer.Email, cn(ev.Organizer.DisplayName)...)
	}
	for _, p := range ev.Participants {
		params := append(cn(p.DisplayName), &ical.KeyValues{Key: "PARTSTAT", Value: []string{partStat(p.ResponseStatus)}})
		ve.AddAttendee("mailto:"+p.Email, params...)
	}
}

// setTime writes a DATE value for all-day events, a local DATE-TIME with TZID
// when a zone is known, and a UTC DATE-TIME otherwise.
func setTime(ve *ical.VEvent, prop ical.ComponentProperty, t time.Time, allDay bool, tz string) {
	set := ve.SetProperty
	if prop == ical.ComponentPropertyExdate {
		set = ve.AddProperty
	}

	if allDay {
		set(prop, t.UTC().Format(dateLayout), &ical.KeyValues{Key: "VALUE", Value: []string{"DATE"}})
		return
	}

	if tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			set(prop, t.In(loc).Format(localLayout), &ical.KeyValues{Key: "TZID", Value: []string{tz}})
			return
		}
	}

	set(prop, t.UTC().Format(utcLayout))
}

// addRecurrenceLine splits a stored line such as "EXDATE;TZID=Europe/Berlin:20200102T100000"
// into its property, parameters and value.
func addRecurrenceLine(ve *ical.VEvent, line string) {
	head, value, ok := strings.Cut(line, ":")
	if !ok {
		return
	}

	parts := strings.Split(head, ";")
	params := make([]ical.PropertyParameter, 0, len(parts)-1)
	for _, p := range parts[1:] {
		if key, v, ok := strings.Cut(p, "="); ok {
			params = append(params, &ical.KeyValues{Key: key, Value: []string{v}})
		}
	}

	ve.AddProperty(ical.ComponentProperty(strings.ToUpper(parts[0])), value, params...)
}

func effectiveZone(base *model.Event, calendar *model.Calendar) string {
	return recurrence.EffectiveTimeZone(base.TimeZone, calendar.Timezone)
}

func cn(name string) []ical.PropertyParameter {
	if name == "" {
		return nil
	}
	return []ical.PropertyParameter{ical.WithCN(name)}
}

func partStat(s model.ResponseStatus) string {
	switch s {
	case model.ResponseAccepted:
		return "ACCEPTED"
	case model.ResponseDeclined:
		return "DECLINED"
	case model.ResponseTentative:
		return "TENTATIVE"
	default:
		return "NEEDS-ACTION"
	}
}
