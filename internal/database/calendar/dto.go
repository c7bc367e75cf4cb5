package calendar

import (
	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
)

type calendarDTO struct {
	ID                   int64
	UserID               int64
	Name                 string
	Timezone             string
	Provider             string
	ProviderCalendarID   string
	ProviderRefreshToken string
}

func mapToCalendar(d *calendarDTO) *model.Calendar {
	return &model.Calendar{
		ID:                   d.ID,
		UserID:               d.UserID,
		Name:                 d.Name,
		Timezone:             d.Timezone,
		Provider:             model.Provider(d.Provider),
		ProviderCalendarID:   d.ProviderCalendarID,
		ProviderRefreshToken: d.ProviderRefreshToken,
	}
}
