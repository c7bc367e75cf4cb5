package events

import (
	"strings"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
)

// verifyPermissions checks that user may turn current into data and returns
// what should actually be written. Fields the editor does not own keep their
// current value.
func verifyPermissions(user *model.User, current *model.Event, data *model.EventCreate) (*model.EventCreate, error) {
	res := cloneCreate(data)

	if isOrganizer(user, current) {
		return res, nil
	}

	if !current.GuestsCanModify {
		if field := changedCoreField(current, data); field != "" {
			return nil, &model.PermissionError{Field: field}
		}

		res.Location = current.Location
		res.Status = current.Status
		res.TimeZone = current.TimeZone
		res.LabelIDs = append([]int64(nil), current.LabelIDs...)
	}

	res.Participants = mergeParticipants(user, current, data.Participants)

	return res, nil
}

// isOrganizer reports whether user organizes ev. Events without an organizer
// belong to whoever owns the calendar.
func isOrganizer(user *model.User, ev *model.Event) bool {
	return ev.Organizer == nil || strings.EqualFold(ev.Organizer.Email, user.Email)
}

func changedCoreField(current *model.Event, data *model.EventCreate) string {
	switch {
	case current.Title != data.Title:
		return "title"
	case current.Description != data.Description:
		return "description"
	case !current.Start.Equal(data.Start) || current.StartDay != data.StartDay:
		return "start"
	case !current.End.Equal(data.End) || current.EndDay != data.EndDay:
		return "end"
	case !current.IsInstance() && !equalStrings(current.Recurrences, data.Recurrences):
		return "recurrences"
	case current.GuestsCanModify != data.GuestsCanModify,
		current.GuestsCanInviteOthers != data.GuestsCanInviteOthers,
		current.GuestsCanSeeOtherGuests != data.GuestsCanSeeOtherGuests:
		return "guest permissions"
	}

	return ""
}

// mergeParticipants applies an attendee's participant edits: their own
// response status always, additions only when guests can invite others.
// Removals and edits of other participants are ignored.
func mergeParticipants(user *model.User, current *model.Event, requested []*model.Participant) []*model.Participant {
	byEmail := make(map[string]*model.Participant, len(requested))
	for _, p := range requested {
		byEmail[strings.ToLower(p.Email)] = p
	}

	known := make(map[string]struct{}, len(current.Participants))
	res := make([]*model.Participant, 0, len(current.Participants))

	for _, p := range current.Participants {
		email := strings.ToLower(p.Email)
		known[email] = struct{}{}

		merged := *p
		if req, ok := byEmail[email]; ok && strings.EqualFold(p.Email, user.Email) {
			merged.ResponseStatus = req.ResponseStatus
		}
		res = append(res, &merged)
	}

	if !current.GuestsCanInviteOthers {
		return res
	}

	for _, p := range requested {
		email := strings.ToLower(p.Email)
		if _, ok := known[email]; ok {
			continue
		}
		known[email] = struct{}{}

		added := *p
		res = append(res, &added)
	}

	return res
}
