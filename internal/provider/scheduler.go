package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs SyncAll on a cron schedule. A run still in progress when the
// next one is due makes the next one skip.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler(logger *zap.SugaredLogger, schedule string, syncer *Syncer, timeout time.Duration) (*Scheduler, error) {
	log := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLogger(log),
		cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
	)

	if _, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := syncer.SyncAll(ctx); err != nil {
			logger.Errorw("scheduled sync failed", "err", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("bad sync schedule %q: %w", schedule, err)
	}

	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for the running one.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "err", err)...)
}
