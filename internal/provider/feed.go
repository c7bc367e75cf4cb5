package provider

import (
	"context"
	"errors"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
)

// ErrSyncTokenExpired is returned by a feed when the provider no longer
// accepts the stored sync token and a full resync is required.
var ErrSyncTokenExpired = errors.New("sync token expired")

// Batch is the set of changes a feed returned for one calendar.
type Batch struct {
	// Items are keyed by ProviderID. Instances carry the provider id of their
	// recurring event in RecurringEventID.
	Items []*model.Event
	// NextSyncToken is stored and passed to the next Changes call.
	NextSyncToken string
	// Full reports that Items is a complete snapshot: provider-linked events
	// missing from it were deleted upstream.
	Full bool
	// RefreshToken is set when the provider rotated the calendar credential.
	RefreshToken string
}

type Feed interface {
	Changes(ctx context.Context, calendar *model.Calendar, syncToken string) (*Batch, error)
}
