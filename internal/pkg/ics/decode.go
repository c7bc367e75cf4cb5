package ics

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	ical "github.com/arran4/golang-ical"
)

const (
	dateLayout     = "20060102"
	localLayout    = "20060102T150405"
	utcLayout      = "20060102T150405Z"
	propRecurrence = ical.ComponentProperty("RECURRENCE-ID")
)

var errMissingUID = errors.New("missing UID")

// Decode parses an ICS payload into events keyed by provider id. A VEVENT
// carrying RECURRENCE-ID becomes an instance of the VEVENT with the same UID;
// its provider id is the UID suffixed with the raw recurrence id.
//
// Components that can not be parsed are reported through skip and left out.
func Decode(r io.Reader, skip func(uid string, err error)) ([]*model.Event, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	var res []*model.Event
	for _, ve := range cal.Events() {
		ev, err := decodeEvent(ve)
		if err != nil {
			if skip != nil {
				skip(propValue(ve, ical.ComponentPropertyUniqueId), err)
			}
			continue
		}
		res = append(res, ev)
	}

	return res, nil
}

func decodeEvent(ve *ical.VEvent) (*model.Event, error) {
	uid := propValue(ve, ical.ComponentPropertyUniqueId)
	if uid == "" {
		return nil, errMissingUID
	}

	ev := &model.Event{
		ProviderID: uid,
		EventCreate: model.EventCreate{
			Title:       propValue(ve, ical.ComponentPropertySummary),
			Description: propValue(ve, ical.ComponentPropertyDescription),
			Location:    propValue(ve, ical.ComponentPropertyLocation),
			Status:      decodeStatus(propValue(ve, ical.ComponentPropertyStatus)),
		},
	}

	start := ve.GetProperty(ical.ComponentPropertyDtStart)
	if start == nil {
		return nil, errors.New("missing DTSTART")
	}

	startAt, allDay, tz, err := parseTime(start)
	if err != nil {
		return nil, fmt.Errorf("DTSTART: %w", err)
	}
	ev.Start, ev.TimeZone = startAt, tz

	if end := ve.GetProperty(ical.ComponentPropertyDtEnd); end != nil {
		if ev.End, _, _, err = parseTime(end); err != nil {
			return nil, fmt.Errorf("DTEND: %w", err)
		}
	} else if allDay {
		ev.End = ev.Start.AddDate(0, 0, 1)
	} else {
		ev.End = ev.Start
	}

	if allDay {
		ev.StartDay = ev.Start.Format(model.DayFormat)
		ev.EndDay = ev.End.Format(model.DayFormat)
		ev.TimeZone = ""
	}

	if rid := ve.GetProperty(propRecurrence); rid != nil {
		originalStart, _, _, err := parseTime(rid)
		if err != nil {
			return nil, fmt.Errorf("RECURRENCE-ID: %w", err)
		}
		ev.OriginalStart = &originalStart
		ev.RecurringEventID = uid
		ev.ProviderID = uid + "_" + rid.Value
		return ev, nil
	}

	for _, prop := range []ical.ComponentProperty{
		ical.ComponentPropertyRrule,
		ical.ComponentPropertyRdate,
		ical.ComponentPropertyExdate,
	} {
		for _, p := range ve.GetProperties(prop) {
			ev.Recurrences = append(ev.Recurrences, recurrenceLine(p))
		}
	}

	if org := ve.GetProperty(ical.ComponentPropertyOrganizer); org != nil {
		ev.Organizer = decodePerson(org)
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyAttendee) {
		ev.Participants = append(ev.Participants, &model.Participant{
			Person:         *decodePerson(p),
			ResponseStatus: decodePartStat(param(p, "PARTSTAT")),
		})
	}

	return ev, nil
}

// parseTime reads a DATE or DATE-TIME property. Dates are returned as naive
// UTC midnights; floating times without TZID are read as UTC.
func parseTime(p *ical.IANAProperty) (time.Time, bool, string, error) {
	v := strings.TrimSpace(p.Value)

	if strings.EqualFold(param(p, "VALUE"), "DATE") || !strings.Contains(v, "T") {
		t, err := time.Parse(dateLayout, v)
		return t, true, "", err
	}

	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse(utcLayout, v)
		return t, false, "", err
	}

	tz := param(p, "TZID")
	loc := time.UTC
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return time.Time{}, false, "", fmt.Errorf("unknown TZID %q", tz)
		}
		loc = l
	}

	t, err := time.ParseInLocation(localLayout, v, loc)
	if err != nil {
		return time.Time{}, false, "", err
	}

	return t.UTC(), false, tz, nil
}

// recurrenceLine rebuilds the content line of an RRULE, RDATE or EXDATE
// property, keeping TZID and VALUE parameters.
func recurrenceLine(p *ical.IANAProperty) string {
	var b strings.Builder
	b.WriteString(p.IANAToken)
	for _, key := range []string{"VALUE", "TZID"} {
		if v := param(p, key); v != "" {
			fmt.Fprintf(&b, ";%s=%s", key, v)
		}
	}
	b.WriteString(":")
	b.WriteString(p.Value)
	return b.String()
}

func decodePerson(p *ical.IANAProperty) *model.Person {
	email := p.Value
	if len(email) > len("mailto:") && strings.EqualFold(email[:len("mailto:")], "mailto:") {
		email = email[len("mailto:"):]
	}
	return &model.Person{Email: email, DisplayName: param(p, "CN")}
}

func decodeStatus(v string) model.EventStatus {
	switch strings.ToUpper(v) {
	case string(ical.ObjectStatusCancelled):
		return model.EventStatusDeleted
	case string(ical.ObjectStatusTentative):
		return model.EventStatusTentative
	default:
		return model.EventStatusActive
	}
}

func decodePartStat(v string) model.ResponseStatus {
	switch strings.ToUpper(v) {
	case "ACCEPTED":
		return model.ResponseAccepted
	case "DECLINED":
		return model.ResponseDeclined
	case "TENTATIVE":
		return model.ResponseTentative
	default:
		return model.ResponseNeedsAction
	}
}

func propValue(ve *ical.VEvent, prop ical.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return p.Value
	}
	return ""
}

func param(p *ical.IANAProperty, key string) string {
	if vs, ok := p.ICalParameters[key]; ok && len(vs) > 0 {
		return vs[0]
	}
	return ""
}
