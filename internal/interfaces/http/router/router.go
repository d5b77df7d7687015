package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lending/backend/internal/infrastructure/auth"
	"github.com/lending/backend/internal/infrastructure/logger"
	"github.com/lending/backend/internal/interfaces/http/handler"
	"github.com/lending/backend/internal/interfaces/http/middleware"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Config holds router construction options
type Config struct {
	Environment  string
	CORS         middleware.CORSConfig
	MaxBodyBytes int64
}

// Dependencies holds the wired handlers and services the router mounts
type Dependencies struct {
	Logger     *zap.Logger
	JWT        *auth.JWTService
	Credits    *handler.CreditHandler
	System     *handler.SystemHandler
	Registrars []RouteRegistrar
}

// New builds the gin engine with the full middleware chain and all routes.
// Health endpoints stay outside the authenticated API group so probes never
// need a token.
func New(cfg Config, deps Dependencies) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(deps.Logger))
	engine.Use(logger.Recovery(deps.Logger))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	if cfg.MaxBodyBytes > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	}

	engine.GET("/healthz", deps.System.Healthz)
	engine.GET("/readyz", deps.System.Readyz)

	api := engine.Group("/api/v1")
	api.Use(middleware.Auth(deps.JWT))

	deps.Credits.RegisterRoutes(api)
	for _, registrar := range deps.Registrars {
		registrar.RegisterRoutes(api)
	}

	return engine
}
