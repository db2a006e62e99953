package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/crewhub/internal/users/http"
	"github.com/aussiebroadwan/crewhub/internal/users/mail"
	"github.com/aussiebroadwan/crewhub/internal/users/service"
	"github.com/aussiebroadwan/crewhub/internal/users/store"
	"github.com/aussiebroadwan/crewhub/internal/users/store/drivers/sqlite"
	"github.com/aussiebroadwan/crewhub/pkg/cryptox"
	"github.com/aussiebroadwan/crewhub/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"

	mailQueueSize = 64
)

// Application encapsulates the users service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db         store.Store
	dispatcher *mail.Dispatcher

	userService         *service.UserService
	inviteService       *service.InviteService
	connectionService   *service.ConnectionService
	sessionService      *service.SessionService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "users-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.SessionSecret == "" {
		return nil, errors.New("USERS_SESSION_SECRET is required")
	}

	cryptox.SetPepper(cfg.Pepper)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initMail()
	app.initServices()
	app.initHTTP()

	// Seed the first admin so a fresh deployment is usable at all: every
	// other account enters through an invitation or an admin.
	if cfg.AdminPassword != "" {
		if err := app.userService.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
			_ = app.db.Close()
			return nil, fmt.Errorf("failed to seed admin account: %w", err)
		}
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.dispatcher.Start()
	app.housekeepingService.Start()

	app.logger.Info("users service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down users service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Drain queued mail before the store goes away.
	app.dispatcher.Stop()
	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("users service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initMail() {
	var mailer mail.Mailer
	if app.cfg.SendGridAPIKey != "" {
		mailer = &mail.SendGridMailer{
			APIKey:    app.cfg.SendGridAPIKey,
			FromEmail: app.cfg.MailFrom,
			FromName:  app.cfg.MailFromName,
		}
		app.logger.Info("mail delivery via sendgrid", "from", app.cfg.MailFrom)
	} else {
		mailer = &mail.LogMailer{Logger: app.logger}
		app.logger.Info("mail delivery disabled, logging instead")
	}

	app.dispatcher = mail.NewDispatcher(mailer, mailQueueSize, app.logger)
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.userService = &service.UserService{
		Store:     app.db,
		BaseGrant: app.cfg.BaseGrant,
	}
	app.inviteService = &service.InviteService{
		Store:         app.db,
		Notifier:      app.dispatcher,
		BaseGrant:     app.cfg.BaseGrant,
		ReferralBonus: app.cfg.ReferralBonus,
	}
	app.connectionService = &service.ConnectionService{Store: app.db}
	app.sessionService = &service.SessionService{
		Store:  app.db,
		Secret: []byte(app.cfg.SessionSecret),
		TTL:    app.cfg.SessionTTL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	router.UserService = app.userService
	router.InviteService = app.inviteService
	router.ConnectionService = app.connectionService
	router.SessionService = app.sessionService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
