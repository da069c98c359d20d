package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	handlers "github.com/wekeepgrowing/entitlement-service/internal/adapter/handler/http"
	"github.com/wekeepgrowing/entitlement-service/internal/adapter/repository"
	"github.com/wekeepgrowing/entitlement-service/internal/config"
	"github.com/wekeepgrowing/entitlement-service/internal/middleware/auth"
	"github.com/wekeepgrowing/entitlement-service/internal/usecase"
	"go.uber.org/zap"
)

// Services bundles the use cases the HTTP surface is built from.
type Services struct {
	Entitlement *usecase.EntitlementService
	SessionLink *usecase.SessionLinkService
	Webhook     *usecase.WebhookService
	EventLog    repository.EventLogRepository
}

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	services *Services
}

type requestValidator struct {
	validator *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func NewServer(cfg *config.Config, logger *zap.Logger, services *Services) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validator: validator.New()}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	if cfg.Service.ClientURL != "" {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     []string{cfg.Service.ClientURL},
			AllowMethods:     []string{echo.GET, echo.POST},
			AllowCredentials: true,
		}))
	}

	return &Server{
		config:   cfg,
		logger:   logger,
		echo:     e,
		services: services,
	}
}

func (s *Server) Start() error {
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	accessHandler := handlers.NewAccessHandler(s.logger, s.services.Entitlement)
	linkHandler := handlers.NewLinkHandler(s.logger, s.services.SessionLink)
	webhookHandler := handlers.NewWebhookHandler(
		s.logger,
		s.config.Service.StripeWebhookSecret,
		s.config.Service.StripeSecretKey != "",
		s.services.Webhook,
	)

	api := s.echo.Group("/api")
	api.GET("/check-access", accessHandler.CheckAccess)
	api.POST("/link-session", linkHandler.LinkSession)
	api.POST("/stripe-webhook", webhookHandler.HandleWebhook)

	// Operator routes are only mounted when a secret exists to guard them.
	if s.config.Service.InternalJWTSecret != "" {
		eventsHandler := handlers.NewEventsHandler(s.logger, s.services.EventLog)
		internal := api.Group("/internal", auth.JWTMiddleware(auth.JWTConfig{
			Secret: s.config.Service.InternalJWTSecret,
			Logger: s.logger,
		}))
		internal.GET("/webhook-events", eventsHandler.GetRecentEvents)
	}
}
