// Package app assembles the IAM service: config, logging, database, the
// domain services and the HTTP server, wired through fx.
package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/iam/config"
	"github.com/tech-arch1tect/iam/database"
	"github.com/tech-arch1tect/iam/handlers"
	"github.com/tech-arch1tect/iam/server"
	"github.com/tech-arch1tect/iam/services/auth"
	"github.com/tech-arch1tect/iam/services/jwt"
	"github.com/tech-arch1tect/iam/services/logging"
	"github.com/tech-arch1tect/iam/services/mail"
	"github.com/tech-arch1tect/iam/services/revocation"
	"github.com/tech-arch1tect/iam/services/usertoken"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type App struct {
	fx     *fx.App
	config *config.Config
	logger *logging.Service
	db     *gorm.DB
	server *server.Server
}

// New builds the application. A nil cfg loads configuration from the
// environment.
func New(cfg *config.Config) *App {
	app := &App{}

	app.fx = fx.New(
		config.NewProvider(cfg),
		logging.Module,

		fx.Provide(func() *database.ModelsOption {
			return database.WithModels(
				&auth.User{},
				&auth.VerificationRecord{},
				&revocation.RevokedToken{},
			)
		}),
		database.Module,

		usertoken.Module,
		auth.Module,
		jwt.Module,
		revocation.Module,
		mail.Module,

		server.NewProvider(),
		fx.Provide(handlers.NewAuthHandler, handlers.NewTokenHandler),
		fx.Invoke(handlers.RegisterRoutes),
		fx.Invoke(bootstrapSuperuser),

		fx.Populate(&app.config, &app.logger, &app.db, &app.server),
		fx.NopLogger,
	)

	return app
}

func bootstrapSuperuser(lc fx.Lifecycle, cfg *config.Config, svc *auth.Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return svc.EnsureSuperuser(cfg.Bootstrap.SuperuserEmail, cfg.Bootstrap.SuperuserPassword)
		},
	})
}

func (a *App) Start() error {
	return a.fx.Start(context.Background())
}

// Run starts the application and blocks until SIGINT or SIGTERM.
func (a *App) Run() {
	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	if a.logger != nil {
		a.logger.Info("Received shutdown signal, stopping gracefully...")
	} else {
		log.Printf("Received signal %v, shutting down gracefully...", sig)
	}

	a.Stop()
}

func (a *App) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.fx.Stop(ctx); err != nil {
		if a.logger != nil {
			a.logger.Error("Failed to stop application gracefully")
		} else {
			log.Printf("Failed to stop application gracefully: %v", err)
		}
	}
}

func (a *App) Server() *echo.Echo {
	if a.server == nil {
		return nil
	}
	return a.server.Echo()
}

func (a *App) DB() *gorm.DB {
	return a.db
}

func (a *App) Logger() *logging.Service {
	return a.logger
}

func (a *App) Config() *config.Config {
	return a.config
}
