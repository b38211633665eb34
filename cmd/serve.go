package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "estatehub/docs"
	"estatehub/internal/common"
	"estatehub/internal/config"
	"estatehub/internal/handlers"
	"estatehub/internal/jobs/background"
	"estatehub/internal/middleware"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	echoSwagger "github.com/swaggo/echo-swagger"
)

const shutdownTimeout = 15 * time.Second

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the background scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	authenticator, err := middleware.NewAuthenticator(cfg.Auth)
	if err != nil {
		return err
	}
	defer authenticator.Close()

	e := newServer(a, authenticator)

	if cfg.Jobs.Enabled {
		scheduler, err := background.NewJobScheduler(cfg.Jobs, a.leases, a.payments, a.onboarding)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				log.Printf("WARN: scheduler shutdown: %v", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("estatehub server v%s starting on port %s (%s)", version, cfg.Server.Port, cfg.Server.Environment)
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newServer(a *app, authenticator *middleware.Authenticator) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = common.HTTPErrorHandler

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: a.cfg.Server.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, middleware.ActiveRoleHeader},
	}))
	e.Use(echoMiddleware.RemoveTrailingSlash())

	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	handlers.RegisterHealth(e, handlers.NewHealthHandlers(
		handlers.PingFunc(a.pool.Ping),
		a.cache,
		handlers.PingFunc(func(ctx context.Context) error {
			return a.storage.Ping(ctx, a.cfg.Storage.AvatarBucket)
		}),
		version,
	))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")
	v1.Use(versionMiddleware.VersionHeader("v1"))

	protected := v1.Group("")
	protected.Use(authenticator.Middleware())
	protected.Use(middleware.Session(a.identity))
	protected.Use(middleware.Audit())

	api := &handlers.API{
		Profiles:    handlers.NewProfileHandlers(a.identity),
		Properties:  handlers.NewPropertyHandlers(a.properties, a.leases),
		Delegation:  handlers.NewDelegationHandlers(a.delegation),
		Agents:      handlers.NewAgentHandlers(a.territories),
		KYC:         handlers.NewKYCHandlers(a.kyc),
		Onboarding:  handlers.NewOnboardingHandlers(a.onboarding),
		Leases:      handlers.NewLeaseHandlers(a.leases, a.payments),
		Maintenance: handlers.NewMaintenanceHandlers(a.maintenance),
		Messages:    handlers.NewMessageHandlers(a.messaging),
		Shortlists:  handlers.NewShortlistHandlers(a.shortlists),
	}
	api.Register(protected)
	return e
}
