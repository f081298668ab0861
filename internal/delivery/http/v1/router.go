package v1

import (
	"go-tutoring-backend/config"
	"go-tutoring-backend/internal/delivery/http/middleware"
	"go-tutoring-backend/internal/delivery/http/response"
	"go-tutoring-backend/internal/domain"
	"go-tutoring-backend/internal/usecase"
	"go-tutoring-backend/pkg/auth"
	"go-tutoring-backend/pkg/storage"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC        domain.AuthUsecase
	OnboardingUC  domain.OnboardingUsecase
	AchievementUC domain.AchievementUsecase
	SessionUC     domain.SessionUsecase
	StudentUC     domain.StudentUsecase
	HealthUC      usecase.HealthUsecase
	Storage       *storage.Client
	JWKSProvider  *auth.Provider
	Config        *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(
		deps.Config.RateLimitGlobalThreshold,
		time.Duration(deps.Config.RateLimitWindowSeconds)*time.Second,
	)))
	r.Use(middleware.ErrorHandler())

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		status := deps.HealthUC.Check(c.Request.Context())
		response.Success(c, http.StatusOK, "System operational", status)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWKSProvider, deps.Config, deps.AuthUC))
	{
		NewAuthHandler(protected, deps.AuthUC, deps.OnboardingUC)
		NewOnboardingHandler(protected, deps.OnboardingUC)
		NewAchievementHandler(protected, deps.AchievementUC)
		NewSessionHandler(protected, deps.SessionUC)
		NewStudentHandler(protected, deps.StudentUC)
		NewProfileHandler(protected, deps.AuthUC, deps.Storage)
	}

	return r
}
