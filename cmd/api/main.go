package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mealtrack-go-api/internal/config"
	"github.com/noah-isme/mealtrack-go-api/internal/database"
	"github.com/noah-isme/mealtrack-go-api/internal/handler"
	"github.com/noah-isme/mealtrack-go-api/internal/middleware"
	"github.com/noah-isme/mealtrack-go-api/internal/models"
	"github.com/noah-isme/mealtrack-go-api/internal/repository"
	"github.com/noah-isme/mealtrack-go-api/internal/router"
	"github.com/noah-isme/mealtrack-go-api/internal/service"
	cloud "github.com/noah-isme/mealtrack-go-api/pkg/cloudinary"
	"github.com/noah-isme/mealtrack-go-api/pkg/identity"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Program{},
		&models.Student{},
		&models.Schedule{},
		&models.MealRecord{},
		&models.Admin{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis and NATS back the analytics cache and the multi-node claim feed.
	// Either can be absent; the API degrades to single-node behaviour.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, analytics cache and cross-node feed disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, claim feed stays on redis only")
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}

	var storage *cloud.Service
	if cfg.CloudinaryCloudName != "" {
		storage, err = cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	studentRepo := repository.NewStudentRepository(db)
	programRepo := repository.NewProgramRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	mealRepo := repository.NewMealRecordRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	analyticsCache := service.NewAnalyticsCache(redisClient, cfg.AnalyticsCacheTTL, logger)
	claimFeed := service.NewClaimFeedService(redisClient, "mealtrack:feed", natsConn, logger)

	var verifier service.IdentityVerifier
	if cfg.GoogleClientID != "" {
		verifier = identity.NewGoogleVerifier(cfg.GoogleClientID)
	}

	authService := service.NewAuthService(
		adminRepo,
		verifier,
		service.NewLogResetDelivery(logger),
		validate,
		activityService,
		service.AuthConfig{
			JWTSecret:        cfg.JWTSecret,
			JWTRefreshSecret: cfg.JWTRefreshSecret,
			AdminEmailDomain: cfg.AdminEmailDomain,
		},
		logger,
	)

	var avatars service.AvatarResolver
	var uploadService service.UploadService
	if storage != nil {
		avatars = service.NewStorageAvatarResolver(storage)
		uploadService = service.NewUploadService(storage, cfg.AvatarMaxSizeMB, logger)
	}

	scheduleLookup := service.NewScheduleLookup(scheduleRepo)
	eligibilityService := service.NewEligibilityService(studentRepo, mealRepo, scheduleLookup, avatars, claimFeed, analyticsCache, logger)
	backfillService := service.NewBackfillService(studentRepo, scheduleRepo, mealRepo, analyticsCache, logger)
	summaryService := service.NewSummaryService(mealRepo, analyticsCache, logger)
	breakdownService := service.NewBreakdownService(mealRepo, logger)
	mealRecordService := service.NewMealRecordService(mealRepo, logger)
	studentService := service.NewStudentService(studentRepo, programRepo, validate, activityService, analyticsCache, cfg.StudentEmailDomain, logger)
	programService := service.NewProgramService(programRepo, studentRepo, validate, activityService, logger)
	scheduleService := service.NewScheduleService(scheduleRepo, programRepo, validate, activityService, analyticsCache, logger)
	seedService := service.NewSeedService(programRepo, scheduleRepo, adminRepo, cfg.SeedEnabled, cfg.SeedToken, logger)

	feedCtx, stopFeed := context.WithCancel(context.Background())
	defer stopFeed()
	claimFeed.Start(feedCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:        handler.NewAuthHandler(authService, uploadService, logger),
		EligibilityHandler: handler.NewEligibilityHandler(eligibilityService, validate, logger),
		StudentHandler:     handler.NewStudentHandler(studentService, uploadService, logger),
		ProgramHandler:     handler.NewProgramHandler(programService, logger),
		ScheduleHandler:    handler.NewScheduleHandler(scheduleService, logger),
		MealRecordHandler:  handler.NewMealRecordHandler(mealRecordService, backfillService, validate, logger),
		AnalyticsHandler:   handler.NewAnalyticsHandler(summaryService, breakdownService, logger),
		ActivityHandler:    handler.NewActivityHandler(activityService, logger),
		FeedHandler:        handler.NewFeedHandler(claimFeed, logger),
		SeedHandler:        handler.NewSeedHandler(seedService, logger),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
