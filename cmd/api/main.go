package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/salonhq/admin-api/internal/config"
	"github.com/salonhq/admin-api/internal/handler"
	authHandler "github.com/salonhq/admin-api/internal/handler/auth"
	bookingHandler "github.com/salonhq/admin-api/internal/handler/booking"
	catalogHandler "github.com/salonhq/admin-api/internal/handler/catalog"
	customerHandler "github.com/salonhq/admin-api/internal/handler/customer"
	sessionHandler "github.com/salonhq/admin-api/internal/handler/session"
	staffHandler "github.com/salonhq/admin-api/internal/handler/staff"
	"github.com/salonhq/admin-api/internal/middleware"
	"github.com/salonhq/admin-api/internal/repository/postgres"
	"github.com/salonhq/admin-api/internal/router"
	authService "github.com/salonhq/admin-api/internal/service/auth"
	bookingService "github.com/salonhq/admin-api/internal/service/booking"
	catalogService "github.com/salonhq/admin-api/internal/service/catalog"
	customerService "github.com/salonhq/admin-api/internal/service/customer"
	eventService "github.com/salonhq/admin-api/internal/service/event"
	"github.com/salonhq/admin-api/internal/service/scheduling"
	sessionService "github.com/salonhq/admin-api/internal/service/session"
	staffService "github.com/salonhq/admin-api/internal/service/staff"
	"github.com/salonhq/admin-api/pkg/auth"
	"github.com/salonhq/admin-api/pkg/logger"
	"github.com/salonhq/admin-api/pkg/metrics"
	"github.com/salonhq/admin-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
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

	redisOpts, err := goredis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse Redis URL")
	}
	redisClient := goredis.NewClient(redisOpts)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer redisClient.Close()

	// Repositories
	serviceRepo := postgres.NewServiceRepository(db)
	addOnRepo := postgres.NewAddOnRepository(db)
	staffRepo := postgres.NewStaffRepository(db)
	customerRepo := postgres.NewCustomerRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	userRepo := postgres.NewUserRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	appMetrics := metrics.NewMetrics("admin_api")
	emitter := eventService.NewEmitter(outboxRepo)

	// Services
	jwtSvc := auth.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		time.Duration(cfg.JWT.ExpiryHours)*time.Hour,
		time.Duration(cfg.JWT.RefreshExpiryHours)*time.Hour,
	)
	authSvc := authService.NewService(userRepo, jwtSvc, security.NewBcryptHasher(0))
	catalogSvc := catalogService.NewService(serviceRepo, addOnRepo)
	staffSvc := staffService.NewService(staffRepo, bookingRepo)
	customerSvc := customerService.NewService(customerRepo)
	bookingSvc := bookingService.NewService(bookingRepo, emitter, appMetrics, appLogger)

	hours := bookingService.BusinessHours{
		OpenHour:         cfg.Scheduling.OpenHour,
		OpenMinute:       cfg.Scheduling.OpenMinute,
		CloseHour:        cfg.Scheduling.CloseHour,
		CloseMinute:      cfg.Scheduling.CloseMinute,
		StepMinutes:      cfg.Scheduling.StepMinutes,
		MinNoticeMinutes: cfg.Scheduling.MinNoticeMinutes,
	}
	availability := bookingService.NewAvailabilityService(bookingRepo, hours)
	assigner := bookingService.NewAssigner(bookingRepo, staffRepo)

	sessionStore := sessionService.NewRedisStore(
		redisClient,
		time.Duration(cfg.Session.TTLMinutes)*time.Minute,
	)
	sessionSvc := sessionService.NewService(sessionService.Deps{
		Store:     sessionStore,
		Catalog:   catalogSvc,
		Compat:    catalogSvc,
		Customers: customerSvc,
		Staff:     staffRepo,
		Bookings:  bookingRepo,
		Resolver:  scheduling.NewSlotResolver(availability),
		Verifier:  scheduling.NewVerifier(bookingRepo),
		Submitter: bookingSvc,
		Logger:    appLogger,
	})

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(authSvc)
	h := handler.NewHandler()

	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		catalogHandler.NewHandler(catalogSvc),
		staffHandler.NewHandler(staffSvc, assigner),
		customerHandler.NewHandler(customerSvc),
		bookingHandler.NewHandler(bookingSvc, catalogSvc, availability),
		sessionHandler.NewHandler(sessionSvc),
		h,
		router.RouterConfig{
			RateLimit:     rate.Limit(cfg.RateLimit.RPS),
			RateBurst:     cfg.RateLimit.Burst,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "admin_api_http",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
