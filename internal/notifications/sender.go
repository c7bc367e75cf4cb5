package notifications

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/database"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/pkg/fcm"
	"go.uber.org/zap"
)

// Sender pushes a reminder for every event instance starting lead after the
// current minute.
type Sender struct {
	db            database.PGX
	logger        *zap.SugaredLogger
	users         usersRepository
	calendars     calendarsRepository
	eventsService eventsService
	fcm           fcmService

	lead     time.Duration
	leadKind leadKind
}

type usersRepository interface {
	GetUsers(ctx context.Context, q database.Queryable, filter model.UsersFilter) ([]*model.User, error)
}

type calendarsRepository interface {
	GetCalendars(ctx context.Context, q database.Queryable, filter model.CalendarsFilter) ([]*model.Calendar, error)
}

type eventsService interface {
	GetEvents(ctx context.Context, user *model.User, calendar *model.Calendar, filter model.EventsFilter) ([]*model.Event, error)
}

type fcmService interface {
	SendMessageBatch(ctx context.Context, ms []*fcm.Message) error
}

func NewSender(
	db database.PGX,
	logger *zap.SugaredLogger,
	users usersRepository,
	calendars calendarsRepository,
	eventsService eventsService,
	fcm fcmService,
	lead time.Duration,
) (*Sender, error) {
	kind, err := mapToLeadKind(lead)
	if err != nil {
		return nil, err
	}

	return &Sender{
		db:            db,
		logger:        logger,
		users:         users,
		calendars:     calendars,
		eventsService: eventsService,
		fcm:           fcm,
		lead:          lead,
		leadKind:      kind,
	}, nil
}

// Start sends reminders once a minute until ctx is done.
func (s *Sender) Start(ctx context.Context) {
	from := time.Now().Truncate(time.Minute)
	to := from.Add(time.Minute)
	go s.findAndSendReminders(ctx, from, to)

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			from = to
			to = t.Truncate(time.Minute).Add(time.Minute)
			go s.findAndSendReminders(ctx, from, to)
		}
	}
}

func (s *Sender) findAndSendReminders(ctx context.Context, from, to time.Time) {
	s.logger.Debugw("sending reminders", "from", from, "to", to)

	messages, err := s.collectReminders(ctx, from, to)
	if err != nil {
		s.logger.Errorw("failed to collect reminders", "from", from, "to", to, "err", err)
		return
	}

	if len(messages) == 0 {
		return
	}

	if err := s.fcm.SendMessageBatch(ctx, messages); err != nil {
		s.logger.Errorw("failed to send reminders", "count", len(messages), "err", err)
		return
	}

	s.logger.Infow("sent reminders", "count", len(messages))
}

func (s *Sender) collectReminders(ctx context.Context, from, to time.Time) ([]*fcm.Message, error) {
	users, err := s.users.GetUsers(ctx, s.db, model.UsersFilter{WithPushToken: true})
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	if len(users) == 0 {
		return nil, nil
	}

	usersMap := make(map[int64]*model.User, len(users))
	userIDs := make([]int64, len(users))
	for i, u := range users {
		usersMap[u.ID] = u
		userIDs[i] = u.ID
	}

	calendars, err := s.calendars.GetCalendars(ctx, s.db, model.CalendarsFilter{UserIDs: userIDs})
	if err != nil {
		return nil, fmt.Errorf("get calendars: %w", err)
	}

	windowFrom, windowTo := from.Add(s.lead), to.Add(s.lead)

	var messages []*fcm.Message
	for _, c := range calendars {
		user, ok := usersMap[c.UserID]
		if !ok {
			continue
		}

		events, err := s.eventsService.GetEvents(ctx, user, c, model.EventsFilter{From: windowFrom, To: windowTo})
		if err != nil {
			return nil, fmt.Errorf("get events of calendar %d: %w", c.ID, err)
		}

		for _, e := range startingBetween(events, windowFrom, windowTo) {
			messages = append(messages, &fcm.Message{
				Token: user.PushToken,
				Data: map[string]string{
					"event_id":          e.ID,
					"event_title":       e.Title,
					"calendar_id":       strconv.FormatInt(c.ID, 10),
					"notification_type": strconv.Itoa(int(s.leadKind)),
				},
			})
		}
	}

	return messages, nil
}

// startingBetween keeps the events starting in [from, to). All-day events are
// never reminded of.
func startingBetween(events []*model.Event, from, to time.Time) []*model.Event {
	var res []*model.Event
	for _, e := range events {
		if e.IsAllDay() || e.Status == model.EventStatusDeleted {
			continue
		}
		if !e.Start.Before(from) && e.Start.Before(to) {
			res = append(res, e)
		}
	}

	return res
}
