package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/user_accounts_service/cmd/docs"
	portssvc "github.com/SscSPs/user_accounts_service/internal/core/ports/services"
	"github.com/SscSPs/user_accounts_service/internal/middleware"
	"github.com/SscSPs/user_accounts_service/internal/platform/config"
	"github.com/SscSPs/user_accounts_service/internal/platform/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// m may be nil, in which case /metrics is not served.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	m *metrics.Metrics,
) {
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(corsConfig(cfg)))
	}

	if m != nil {
		r.Use(m.Middleware())
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	v1 := r.Group("/api/v1")
	registerUserRoutes(v1, cfg, services)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// registerUserRoutes registers the account and session routes under /users.
func registerUserRoutes(v1 *gin.RouterGroup, cfg *config.Config, services *portssvc.ServiceContainer) {
	auth := newAuthHandler(services.Session, cfg)
	user := newUserHandler(services.User, cfg.MaxUploadBytes)
	requireAuth := middleware.AuthMiddleware(services.Token)

	users := v1.Group("/users")
	{
		users.POST("/register", auth.register)
		users.POST("/login", loginRateLimit(cfg), auth.login)
		users.POST("/generateToken", auth.refreshToken)

		users.POST("/logout", requireAuth, auth.logout)
		users.POST("/change-password", requireAuth, auth.changePassword)
		users.GET("/get-user", requireAuth, user.getUser)
		users.POST("/update-user-details", requireAuth, user.updateUserDetails)
		users.POST("/update-avatar", requireAuth, user.updateAvatar)
		users.POST("/update-cover-image", requireAuth, user.updateCoverImage)
	}
}

func loginRateLimit(cfg *config.Config) gin.HandlerFunc {
	rate, err := limiter.NewRateFromFormatted(cfg.LoginRateLimit)
	if err != nil {
		slog.Warn("Invalid LOGIN_RATE_LIMIT, falling back to 5-M",
			slog.String("value", cfg.LoginRateLimit), slog.String("error", err.Error()))
		rate = limiter.Rate{Period: time.Minute, Limit: 5}
	}
	return middleware.RateLimit(limiter.New(memory.NewStore(), rate))
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	c.AllowOrigins = cfg.AllowedOrigins
	c.AllowCredentials = true
	c.AllowHeaders = append(c.AllowHeaders, "Authorization")
	c.ExposeHeaders = []string{"X-Request-ID"}
	return c
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
