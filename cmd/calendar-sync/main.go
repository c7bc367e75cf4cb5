package main

import (
	"context"
	"log"
	"net/http"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/api"
	events_service "github.com/SergeyKozhin/calendar-sync-backend/internal/business/events"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/config"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/database"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/database/calendar"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/database/events"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/database/label"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/database/user"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/notifications"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/pkg/fcm"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/pkg/jwt"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/pkg/oauth"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/provider"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/redis"
	"github.com/xlab/closer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	closer.Bind(cancel)

	logger, err := initLogger()
	if err != nil {
		log.Fatalf("unable to initializae logger: %v", err)
	}

	jwts := jwt.NewManager(config.Secret(), config.JwtTTL())
	tokenParser, err := oauth.NewParser(config.ClientSecretPath(), config.ClientType(), config.RedirectURL())
	if err != nil {
		logger.Fatalw("unable to initialize oauth parser", "err", err)
	}

	redisPool := redis.NewRedisPool(logger, config.RedisURL())
	refreshTokens := redis.NewRefreshTokenRepository(redisPool, logger, config.SessionTTl())
	syncTokens := redis.NewSyncTokenRepository(redisPool)

	db, err := database.NewPGX(ctx, config.PostgresURL())
	if err != nil {
		logger.Fatalw("unable to initialize db", "err", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatalw("unable to migrate db", "err", err)
	}

	usersRepository := user.NewRepository()
	calendarsRepository := calendar.NewRepository()
	labelsRepository := label.NewRepository()
	eventsRepository := events.NewRepository()

	eventsService := events_service.NewService(db, logger, eventsRepository, labelsRepository)

	if config.RemindersEnabled() {
		fcmService, err := fcm.NewService(ctx, logger, config.FirebaseCredentials())
		if err != nil {
			logger.Fatalw("unable to initialize fcm service", "err", err)
		}

		sender, err := notifications.NewSender(db, logger, usersRepository, calendarsRepository, eventsService, fcmService, config.ReminderLead())
		if err != nil {
			logger.Fatalw("unable to initialize reminder sender", "err", err)
		}
		go sender.Start(ctx)
	}

	syncer := provider.NewSyncer(
		db,
		logger,
		calendarsRepository,
		eventsService,
		syncTokens,
		map[model.Provider]provider.Feed{
			model.ProviderGoogle: provider.NewGoogleFeed(tokenParser),
			model.ProviderICS:    provider.NewICSFeed(logger, config.ICSFetchTimeout()),
		},
		config.SyncConcurrency(),
	)

	scheduler, err := provider.NewScheduler(logger, config.SyncSchedule(), syncer, config.SyncTimeout())
	if err != nil {
		logger.Fatalw("unable to initialize sync scheduler", "err", err)
	}
	scheduler.Start()
	closer.Bind(scheduler.Stop)

	handler := api.NewApi(
		logger,
		api.Settings{
			SessionTokenLength: config.SessionTokenLength(),
			DefaultEventsLimit: config.DefaultEventsLimit(),
			AllowedOrigins:     config.AllowedOrigins(),
		},
		jwts,
		tokenParser,
		refreshTokens,
		db,
		usersRepository,
		calendarsRepository,
		labelsRepository,
		eventsService,
		syncer,
	)

	errLogger, err := zap.NewStdLogAt(logger.Desugar(), zap.ErrorLevel)
	if err != nil {
		logger.Fatalw("error initiating server logger", "err", err)
	}

	server := &http.Server{
		Addr:     ":" + config.Port(),
		Handler:  handler,
		ErrorLog: errLogger,
	}
	closer.Bind(func() {
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Errorw("server shutdown", "err", err)
		}
	})

	go func() {
		logger.Infow("Started server", "port", config.Port())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorw("server error", "err", err)
			closer.Close()
		}
	}()

	closer.Hold()
}

func initLogger() (*zap.SugaredLogger, error) {
	var logger *zap.Logger
	var err error

	if config.Production() {
		logger, err = zap.NewProduction()
	} else {
		conf := zap.NewDevelopmentConfig()
		conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err = conf.Build()
	}

	if err != nil {
		return nil, err
	}

	closer.Bind(func() {
		_ = logger.Sync()
	})

	return logger.Sugar(), nil
}
