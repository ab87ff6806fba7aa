package v1

import (
	"contact-backend/config"
	"contact-backend/internal/delivery/http/middleware"
	"contact-backend/internal/domain"
	"contact-backend/internal/usecase"
	"contact-backend/pkg/logger"
	"contact-backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ContactUC      domain.ContactUsecase
	HealthUC       usecase.HealthUsecase
	RateCounter    middleware.WindowCounter // nil uses the in-memory limiter
	SecurityLogger *security.SecurityLogger
	Config         *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// ClientIP feeds the rate limiter; forwarded headers count only from
	// configured proxies.
	if err := r.SetTrustedProxies(deps.Config.TrustedProxies); err != nil {
		logger.Log.Error("Invalid TRUSTED_PROXIES, trusting none", "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.AllowedOrigins)) // CORS must be first!
	r.Use(middleware.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	api := r.Group("/api")

	NewHealthHandler(r, api, deps.HealthUC)

	var admin *gin.RouterGroup
	if deps.Config.AdminJWTSecret != "" {
		admin = api.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware(deps.Config.AdminJWTSecret, deps.SecurityLogger))
	}

	var submitMiddleware []gin.HandlerFunc
	if perMinute := deps.Config.ContactRateLimitPerMinute; perMinute > 0 {
		submitMiddleware = append(submitMiddleware, middleware.RateLimitMiddleware(
			middleware.ContactRateLimitConfig(perMinute),
			deps.RateCounter,
			deps.SecurityLogger,
		))
	}
	NewContactHandler(api, admin, deps.ContactUC, submitMiddleware...)

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
