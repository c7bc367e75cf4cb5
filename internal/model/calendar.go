package model

type Provider string

const (
	ProviderNone   Provider = ""
	ProviderGoogle Provider = "google"
	ProviderICS    Provider = "ics"
)

type Calendar struct {
	ID                   int64
	UserID               int64
	Name                 string
	Timezone             string
	Provider             Provider
	ProviderCalendarID   string
	ProviderRefreshToken string
}

type CalendarsFilter struct {
	UserIDs   []int64
	Providers []Provider
}
