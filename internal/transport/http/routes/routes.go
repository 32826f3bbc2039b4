package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/infra/config"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/transport/http/handlers"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/transport/http/middleware"
)

// ProtectedEndpoints holds the application handlers the gates guard. Any nil
// handler leaves its route unregistered, so the gate layer can run standalone
// while the owning application wires its endpoints in later.
type ProtectedEndpoints struct {
	Login            gin.HandlerFunc
	PasswordReset    gin.HandlerFunc
	SecurityQuestion gin.HandlerFunc
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config    *config.AppConfig
	Logger    *zap.Logger
	Gates     *middleware.Gates
	Endpoints ProtectedEndpoints
	Database  DatabaseChecker
	Cache     CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))

	healthOptions := make([]handlers.HealthOption, 0, 2)

	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}

	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	policies := middleware.PoliciesFromSettings(deps.Config.Gate)
	gateHandler := handlers.NewGateHandler(deps.Gates.Codec(), deps.Gates.Limiter(), policies, deps.Logger)

	api := r.Group("/api/v1")
	{
		// Token issuance stays outside the CSRF gate: a client without a
		// token has to be able to obtain one.
		api.GET("/csrf-token", gateHandler.IssueToken)
		api.GET("/gate/status", gateHandler.Status)

		authGroup := api.Group("/auth")
		authGroup.Use(deps.Gates.CSRF(middleware.CSRFConfig{
			MaxAge:      deps.Config.CSRF.MaxAge,
			ExemptPaths: deps.Config.CSRF.ExemptPaths,
		}))

		if deps.Endpoints.Login != nil {
			authGroup.POST("/login", deps.Gates.LoginGate(deps.Config.Gate), deps.Endpoints.Login)
		}

		if deps.Endpoints.PasswordReset != nil {
			authGroup.POST("/password-reset", deps.Gates.PasswordResetGate(deps.Config.Gate), deps.Endpoints.PasswordReset)
		}

		if deps.Endpoints.SecurityQuestion != nil {
			authGroup.POST("/security-question", deps.Gates.SecurityQuestionGate(deps.Config.Gate), deps.Endpoints.SecurityQuestion)
		}
	}

	return r
}
