package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/database"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrNoFeed = errors.New("calendar is not linked to a provider")

type Syncer struct {
	db          database.PGX
	logger      *zap.SugaredLogger
	calendars   calendarsRepository
	events      eventsImporter
	syncTokens  syncTokenRepository
	feeds       map[model.Provider]Feed
	concurrency int
}

type calendarsRepository interface {
	GetCalendars(ctx context.Context, q database.Queryable, filter model.CalendarsFilter) ([]*model.Calendar, error)
	UpdateRefreshToken(ctx context.Context, q database.Queryable, id int64, token string) error
}

type eventsImporter interface {
	ImportEvent(ctx context.Context, calendar *model.Calendar, item *model.Event) error
	ProviderIDs(ctx context.Context, calendar *model.Calendar) ([]string, error)
}

type syncTokenRepository interface {
	GetSyncToken(ctx context.Context, calendarID int64) (string, error)
	SetSyncToken(ctx context.Context, calendarID int64, token string) error
}

func NewSyncer(
	db database.PGX,
	logger *zap.SugaredLogger,
	calendars calendarsRepository,
	events eventsImporter,
	syncTokens syncTokenRepository,
	feeds map[model.Provider]Feed,
	concurrency int,
) *Syncer {
	if concurrency < 1 {
		concurrency = 1
	}

	return &Syncer{
		db:          db,
		logger:      logger,
		calendars:   calendars,
		events:      events,
		syncTokens:  syncTokens,
		feeds:       feeds,
		concurrency: concurrency,
	}
}

// SyncAll syncs every provider linked calendar. A failing calendar is logged
// and does not stop the others.
func (s *Syncer) SyncAll(ctx context.Context) error {
	providers := make([]model.Provider, 0, len(s.feeds))
	for p := range s.feeds {
		providers = append(providers, p)
	}

	calendars, err := s.calendars.GetCalendars(ctx, s.db, model.CalendarsFilter{Providers: providers})
	if err != nil {
		return fmt.Errorf("calendarsRepository.GetCalendars: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, c := range calendars {
		c := c
		g.Go(func() error {
			if err := s.SyncCalendar(ctx, c); err != nil {
				s.logger.Errorw("calendar sync failed", "calendar_id", c.ID, "provider", c.Provider, "err", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// SyncCalendar pulls the provider changes of one calendar and applies them.
func (s *Syncer) SyncCalendar(ctx context.Context, calendar *model.Calendar) error {
	feed, ok := s.feeds[calendar.Provider]
	if !ok {
		return ErrNoFeed
	}

	token, err := s.syncTokens.GetSyncToken(ctx, calendar.ID)
	if err != nil {
		return fmt.Errorf("syncTokenRepository.GetSyncToken: %w", err)
	}

	batch, err := feed.Changes(ctx, calendar, token)
	if errors.Is(err, ErrSyncTokenExpired) {
		s.logger.Infow("sync token expired, running full sync", "calendar_id", calendar.ID)
		batch, err = feed.Changes(ctx, calendar, "")
	}
	if err != nil {
		return fmt.Errorf("feed changes: %w", err)
	}

	applied, skipped, err := s.apply(ctx, calendar, batch.Items)
	if err != nil {
		return err
	}

	removed := 0
	if batch.Full {
		if removed, err = s.removeMissing(ctx, calendar, batch.Items); err != nil {
			return err
		}
	}

	if batch.RefreshToken != "" && batch.RefreshToken != calendar.ProviderRefreshToken {
		if err := s.calendars.UpdateRefreshToken(ctx, s.db, calendar.ID, batch.RefreshToken); err != nil {
			return fmt.Errorf("calendarsRepository.UpdateRefreshToken: %w", err)
		}
	}

	if err := s.syncTokens.SetSyncToken(ctx, calendar.ID, batch.NextSyncToken); err != nil {
		return fmt.Errorf("syncTokenRepository.SetSyncToken: %w", err)
	}

	s.logger.Infow("calendar synced",
		"calendar_id", calendar.ID,
		"applied", applied,
		"skipped", skipped,
		"removed", removed,
	)

	return nil
}

// apply imports items, recurring events before their instances. Items the
// event rules reject are skipped.
func (s *Syncer) apply(ctx context.Context, calendar *model.Calendar, items []*model.Event) (int, int, error) {
	ordered := make([]*model.Event, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return !ordered[i].IsInstance() && ordered[j].IsInstance()
	})

	var applied, skipped int
	for _, item := range ordered {
		err := s.events.ImportEvent(ctx, calendar, item)

		var repoErr *model.EventRepoError
		var recErr *model.InvalidRecurrenceError
		switch {
		case err == nil:
			applied++
		case errors.As(err, &repoErr), errors.As(err, &recErr):
			skipped++
			s.logger.Warnw("skipping provider event",
				"calendar_id", calendar.ID,
				"provider_id", item.ProviderID,
				"err", err,
			)
		default:
			return applied, skipped, fmt.Errorf("import %s: %w", item.ProviderID, err)
		}
	}

	return applied, skipped, nil
}

func (s *Syncer) removeMissing(ctx context.Context, calendar *model.Calendar, items []*model.Event) (int, error) {
	present := make(map[string]struct{}, len(items))
	for _, item := range items {
		if !item.IsInstance() && item.Status != model.EventStatusDeleted {
			present[item.ProviderID] = struct{}{}
		}
	}

	ids, err := s.events.ProviderIDs(ctx, calendar)
	if err != nil {
		return 0, fmt.Errorf("eventsService.ProviderIDs: %w", err)
	}

	removed := 0
	for _, id := range ids {
		if _, ok := present[id]; ok {
			continue
		}

		gone := &model.Event{ProviderID: id, EventCreate: model.EventCreate{Status: model.EventStatusDeleted}}
		if err := s.events.ImportEvent(ctx, calendar, gone); err != nil {
			return removed, fmt.Errorf("remove %s: %w", id, err)
		}
		removed++
	}

	return removed, nil
}
