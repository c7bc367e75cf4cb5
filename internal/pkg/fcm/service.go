package fcm

import (
	"context"
	"fmt"
	"sync/atomic"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"
)

const (
	batchSize     = 500
	maxBatchSends = 4
)

type Service struct {
	client *messaging.Client
	logger *zap.SugaredLogger
}

// NewService creates a messaging client. An empty credentialsPath falls back
// to application default credentials.
func NewService(ctx context.Context, logger *zap.SugaredLogger, credentialsPath string) (*Service, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtaining messaging client: %w", err)
	}

	return &Service{client: client, logger: logger}, nil
}

type Message struct {
	Token string
	Data  map[string]string
}

func (m *Message) toFCM() *messaging.Message {
	msg := &messaging.Message{
		Data:  m.Data,
		Token: m.Token,
	}
	if title, ok := m.Data["event_title"]; ok {
		msg.Notification = &messaging.Notification{Title: title}
	}
	return msg
}

// SendMessageBatch sends messages in chunks the FCM batch endpoint accepts.
// Per-token delivery failures are logged, not returned.
func (s *Service) SendMessageBatch(ctx context.Context, ms []*Message) error {
	messages := make([]*messaging.Message, len(ms))
	for i, m := range ms {
		messages[i] = m.toFCM()
	}

	var failed int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxBatchSends)
	for i := 0; i < len(messages); i += batchSize {
		chunk := messages[i:min(i+batchSize, len(messages))]

		g.Go(func() error {
			resp, err := s.client.SendAll(ctx, chunk)
			if err != nil {
				return fmt.Errorf("send messages: %w", err)
			}
			atomic.AddInt64(&failed, int64(resp.FailureCount))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if failed > 0 {
		s.logger.Warnw("some messages were not delivered", "failed", failed, "total", len(messages))
	}

	return nil
}
