package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/salonhq/admin-api/internal/config"
	"github.com/salonhq/admin-api/internal/email"
	"github.com/salonhq/admin-api/internal/repository/postgres"
	eventService "github.com/salonhq/admin-api/internal/service/event"
	"github.com/salonhq/admin-api/pkg/logger"
	"github.com/salonhq/admin-api/pkg/messaging/redis"
	"github.com/salonhq/admin-api/pkg/metrics"
	"github.com/salonhq/admin-api/pkg/worker"
)

// WorkerEnv tunes the outbox processor without touching the shared YAML
// config. Set via WORKER_* environment variables.
type WorkerEnv struct {
	BatchSize            int           `envconfig:"BATCH_SIZE" default:"50"`
	PollInterval         time.Duration `envconfig:"POLL_INTERVAL" default:"5s"`
	RetryAttempts        int           `envconfig:"RETRY_ATTEMPTS" default:"3"`
	RetryDelay           time.Duration `envconfig:"RETRY_DELAY" default:"1s"`
	CleanupInterval      time.Duration `envconfig:"CLEANUP_INTERVAL" default:"1h"`
	NotificationsEnabled bool          `envconfig:"NOTIFICATIONS_ENABLED" default:"true"`
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	var env WorkerEnv
	if err := envconfig.Process("WORKER", &env); err != nil {
		log.Fatal().Err(err).Msg("failed to process worker environment")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.InfoLevel,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Redis broker")
	}
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db)
	emitter := eventService.NewEmitter(outboxRepo)

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		worker.OutboxProcessorConfig{
			BatchSize:     env.BatchSize,
			PollInterval:  env.PollInterval,
			RetryAttempts: env.RetryAttempts,
			RetryDelay:    env.RetryDelay,
		},
		appLogger,
		metrics.NewMetrics("outbox_processor"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if env.NotificationsEnabled {
		notifier := worker.NewBookingNotifier(
			broker,
			email.NewService(email.Config{
				Host:     cfg.Email.Host,
				Port:     cfg.Email.Port,
				Username: cfg.Email.Username,
				Password: cfg.Email.Password,
				From:     cfg.Email.From,
			}),
			postgres.NewCustomerRepository(db),
			postgres.NewServiceRepository(db),
			postgres.NewStaffRepository(db),
			appLogger,
		)
		go func() {
			if err := notifier.Start(ctx); err != nil {
				appLogger.Error(err, "booking notifier stopped")
			}
		}()
	}

	// Periodically drop processed outbox rows.
	go func() {
		ticker := time.NewTicker(env.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := emitter.CleanupProcessedEvents(ctx)
				if err != nil {
					appLogger.Error(err, "failed to clean up processed events")
					continue
				}
				if deleted > 0 {
					appLogger.Info("cleaned up processed events", "deleted", deleted)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		appLogger.Info("shutting down worker")
		cancel()
	}()

	processor.Start(ctx)
}
