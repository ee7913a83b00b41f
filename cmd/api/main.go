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

	"github.com/avaliaedu/avalia-api/internal/config"
	"github.com/avaliaedu/avalia-api/internal/database"
	"github.com/avaliaedu/avalia-api/internal/handler"
	"github.com/avaliaedu/avalia-api/internal/middleware"
	"github.com/avaliaedu/avalia-api/internal/models"
	"github.com/avaliaedu/avalia-api/internal/repository"
	"github.com/avaliaedu/avalia-api/internal/router"
	"github.com/avaliaedu/avalia-api/internal/service"
	"github.com/avaliaedu/avalia-api/pkg/analysis"
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
		&models.User{},
		&models.Institution{},
		&models.Course{},
		&models.Evaluation{},
		&models.EvaluationQuestion{},
		&models.PasswordResetToken{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, evaluation events disabled")
		} else {
			defer natsConn.Close()
		}
	}

	runner, err := analysis.NewScriptRunner(analysis.Config{
		PythonPath: cfg.PythonPath,
		ScriptPath: cfg.AnalysisScriptPath,
		Timeout:    cfg.AnalysisTimeout,
		Logger:     logger,
	})
	if err != nil {
		log.Fatalf("failed to create analysis runner: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	institutionRepo := repository.NewInstitutionRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	resetTokenRepo := repository.NewPasswordResetTokenRepository(db)

	hasher := service.NewBcryptHasher(cfg.BcryptCost)
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenLifetime)
	resetDelivery := service.NewLogResetDelivery(logger)

	authService := service.NewAuthService(userRepo, resetTokenRepo, hasher, tokens, resetDelivery, validate, cfg.ResetTokenTTL, logger)
	userService := service.NewUserService(userRepo, hasher, validate, logger)
	institutionService := service.NewInstitutionService(institutionRepo, validate, logger)
	courseService := service.NewCourseService(courseRepo, validate, logger)
	evaluationService := service.NewEvaluationService(evaluationRepo, natsConn, cfg.EventSubject, validate, logger)
	analysisService := service.NewAnalysisService(runner, redisClient, cfg.ReportCacheTTL, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:        handler.NewAuthHandler(authService, logger),
		UserHandler:        handler.NewUserHandler(userService, logger),
		InstitutionHandler: handler.NewInstitutionHandler(institutionService, logger),
		CourseHandler:      handler.NewCourseHandler(courseService, logger),
		EvaluationHandler:  handler.NewEvaluationHandler(evaluationService, logger),
		AnalysisHandler:    handler.NewAnalysisHandler(analysisService, logger),
		JWTMiddleware:      middleware.JWTProtected(tokens, logger),
		AuthRateLimiter:    middleware.RateLimit("auth", cfg.AuthRateLimit, cfg.AuthRateWindow),
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
