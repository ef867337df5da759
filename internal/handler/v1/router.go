package v1

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glucotrack/glucotrack/internal/config"
	"github.com/glucotrack/glucotrack/internal/handler/middleware"
	"github.com/glucotrack/glucotrack/pkg/metrics"
)

// NewRouter wires middleware and routes. The web surface speaks
// form-POST/redirect, the /api/v1 surface speaks JSON; both resolve the
// doctor identity through the same guards.
func NewRouter(
	cfg *config.Config,
	log *zap.Logger,
	collector *metrics.Collector,
	authn *middleware.Authenticator,
	authHandler *AuthHandler,
	patientHandler *PatientHandler,
	healthHandler *HealthHandler,
) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	if cfg.Tracing.Enabled {
		r.Use(middleware.Tracing(cfg.Tracing.ServiceName))
	}
	r.Use(middleware.Metrics(collector))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: true,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	// Web surface
	r.POST("/register", authHandler.RegisterWeb)
	r.POST("/login", authHandler.LoginWeb)

	web := r.Group("/", authn.RequireWeb())
	{
		web.POST("/logout", authHandler.Logout)
		web.GET("/logout", authHandler.Logout)
		web.POST("/submit", patientHandler.SubmitWeb)
		web.GET("/patients", patientHandler.DashboardWeb)
		web.POST("/delete/:id", patientHandler.DeleteWeb)
	}

	// JSON API surface
	api := r.Group("/api/v1")
	{
		api.POST("/auth/register", authHandler.RegisterAPI)
		api.POST("/auth/login", authHandler.LoginAPI)
		api.POST("/auth/refresh", authHandler.RefreshAPI)

		protected := api.Group("/", authn.RequireAPI())
		{
			protected.POST("/patients", patientHandler.CreateAPI)
			protected.GET("/patients", patientHandler.ListAPI)
			protected.DELETE("/patients/:id", patientHandler.DeleteAPI)
			protected.GET("/patients/:id/predictions", patientHandler.PredictionsAPI)
			protected.POST("/predict", patientHandler.PredictAPI)
		}
	}

	return r
}
