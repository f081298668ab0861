package main

import (
	"context"
	"go-tutoring-backend/config"
	_ "go-tutoring-backend/docs" // Important for Swagger
	v1 "go-tutoring-backend/internal/delivery/http/v1"
	"go-tutoring-backend/internal/domain"
	"go-tutoring-backend/internal/repository/postgres"
	"go-tutoring-backend/internal/usecase"
	"go-tutoring-backend/pkg/auth"
	"go-tutoring-backend/pkg/database"
	"go-tutoring-backend/pkg/email"
	"go-tutoring-backend/pkg/logger"
	"go-tutoring-backend/pkg/redis"
	"go-tutoring-backend/pkg/storage"
	"go-tutoring-backend/pkg/validation"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
)

// @title           Tutoring Platform Backend API
// @version         1.0
// @description     Backend for the tutor dashboard: onboarding checklist, achievements, sessions and student roster.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting tutoring backend", "port", cfg.Port)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (optional; rate limiter falls back to memory)
	if err := redis.Initialize(redis.Config{
		URL:      cfg.UpstashRedisURL,
		Password: cfg.UpstashRedisPassword,
	}); err != nil {
		logger.Log.Warn("Redis unavailable, using in-memory rate limiting", "error", err)
	}
	defer redis.Close()

	// 5. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	onboardingRepo := postgres.NewOnboardingRepository(dbPool)
	achievementRepo := postgres.NewAchievementRepository(dbPool)
	sessionRepo := postgres.NewSessionRepository(dbPool)
	studentRepo := postgres.NewStudentRepository(dbPool)

	// 6. Load static catalogs
	stepCatalog, err := domain.NewStepCatalog(domain.DefaultOnboardingSteps())
	if err != nil {
		logger.Log.Error("Invalid onboarding step catalog", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	achievementCatalog, err := achievementRepo.ListDefinitions(ctx)
	cancel()
	if err != nil {
		logger.Log.Error("Failed to load achievement catalog", "error", err)
		os.Exit(1)
	}
	logger.Log.Info("Achievement catalog loaded", "definitions", len(achievementCatalog))

	// 7. Setup Email Service
	emailService := email.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - session confirmations will be skipped")
	}

	// 8. Setup Avatar Storage (optional)
	var storageClient *storage.Client
	if cfg.AvatarBucket != "" {
		storageClient, err = storage.NewClient(context.Background(), storage.Config{
			Provider:        storage.Provider(cfg.S3Provider),
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.AvatarBucket,
		})
		if err != nil {
			logger.Log.Warn("Avatar storage unavailable", "error", err)
			storageClient = nil
		}
	}

	// 9. Setup UseCases
	validate := validator.New()
	validation.RegisterValidators(validate)

	authUC := usecase.NewAuthUsecase(userRepo)
	onboardingUC := usecase.NewOnboardingUsecase(onboardingRepo, stepCatalog, cfg.OnboardingStepMinutes)
	achievementUC := usecase.NewAchievementUsecase(achievementRepo, achievementCatalog)
	studentUC := usecase.NewStudentUsecase(studentRepo, validate)
	sessionUC := usecase.NewSessionUsecase(sessionRepo, studentRepo, userRepo, achievementUC, emailService, validate)
	healthUC := usecase.NewHealthUsecase(dbPool)

	// 10. Setup Auth Provider (JWKS)
	jwksURL := cfg.SupabaseUrl + "/auth/v1/.well-known/jwks.json"
	jwksProvider := auth.NewProvider(jwksURL)

	// 11. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:        authUC,
		OnboardingUC:  onboardingUC,
		AchievementUC: achievementUC,
		SessionUC:     sessionUC,
		StudentUC:     studentUC,
		HealthUC:      healthUC,
		Storage:       storageClient,
		JWKSProvider:  jwksProvider,
		Config:        cfg,
	})

	// 12. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
