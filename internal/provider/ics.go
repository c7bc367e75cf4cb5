package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/pkg/ics"
	"go.uber.org/zap"
)

// ICSFeed polls an ICS subscription. The calendar's ProviderCalendarID is the
// feed URL; the sync token is the last ETag, so an unchanged feed yields an
// empty batch.
type ICSFeed struct {
	client *http.Client
	logger *zap.SugaredLogger
}

func NewICSFeed(logger *zap.SugaredLogger, timeout time.Duration) *ICSFeed {
	return &ICSFeed{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (f *ICSFeed) Changes(ctx context.Context, calendar *model.Calendar, syncToken string) (*Batch, error) {
	if calendar.ProviderCalendarID == "" {
		return nil, errors.New("source URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, calendar.ProviderCalendarID, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if syncToken != "" {
		req.Header.Set("If-None-Match", syncToken)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotModified:
		return &Batch{NextSyncToken: syncToken}, nil
	default:
		return nil, fmt.Errorf("fetch feed: %s", resp.Status)
	}

	items, err := ics.Decode(resp.Body, func(uid string, err error) {
		f.logger.Warnw("skipping ics event", "calendar_id", calendar.ID, "uid", uid, "err", err)
	})
	if err != nil {
		return nil, err
	}

	return &Batch{
		Items:         items,
		NextSyncToken: resp.Header.Get("ETag"),
		Full:          true,
	}, nil
}
