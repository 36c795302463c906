package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/meditrack/ward-api/internal/config"
	"github.com/meditrack/ward-api/internal/email"
	"github.com/meditrack/ward-api/internal/handler"
	careunitHandler "github.com/meditrack/ward-api/internal/handler/careunit"
	logoHandler "github.com/meditrack/ward-api/internal/handler/logo"
	patientHandler "github.com/meditrack/ward-api/internal/handler/patient"
	staffHandler "github.com/meditrack/ward-api/internal/handler/staff"
	"github.com/meditrack/ward-api/internal/middleware"
	"github.com/meditrack/ward-api/internal/repository/postgres"
	"github.com/meditrack/ward-api/internal/router"
	careunitService "github.com/meditrack/ward-api/internal/service/careunit"
	eventService "github.com/meditrack/ward-api/internal/service/event"
	logoService "github.com/meditrack/ward-api/internal/service/logo"
	"github.com/meditrack/ward-api/internal/service/occupancy"
	patientService "github.com/meditrack/ward-api/internal/service/patient"
	staffService "github.com/meditrack/ward-api/internal/service/staff"
	"github.com/meditrack/ward-api/internal/validation"
	"github.com/meditrack/ward-api/pkg/logger"
	"github.com/meditrack/ward-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := validation.RegisterCustom(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	// Repositories
	careUnitRepo := postgres.NewCareUnitRepository(db)
	bedRepo := postgres.NewBedRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	userRepo := postgres.NewUserRepository(db)
	logoRepo := postgres.NewLogoRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Services
	enforcer := occupancy.NewEnforcer(careUnitRepo, bedRepo)
	eventSvc := eventService.NewService(outboxRepo)

	var emailSvc email.Service
	if cfg.SMTP.Host != "" {
		emailSvc = email.NewSMTPService(cfg.SMTP)
	} else {
		emailSvc = email.NewNoopService(appLogger)
	}

	patientSvc := patientService.NewService(patientRepo, bedRepo, userRepo, enforcer, eventSvc, emailSvc, appLogger)
	careUnitSvc := careunitService.NewService(careUnitRepo, bedRepo, appLogger)
	staffSvc := staffService.NewService(userRepo, security.NewBcryptHasher(0), appLogger)

	logoStorage, err := logoService.NewDiskStorage(cfg.Uploads.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize logo storage")
	}
	logoSvc := logoService.NewService(logoRepo, logoStorage, appLogger)

	// Router
	r := router.NewRouter(router.Config{
		RateLimitRPS:   50,
		RateLimitBurst: 100,
		Timeout:        time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		CORS:           middleware.DefaultCORSConfig(),
		MetricsPrefix:  "ward_api",
	}, middleware.NewAuthMiddleware(cfg.JWT.Secret), handler.NewHealthHandler(db))

	r.Secured(
		patientHandler.NewHandler(patientSvc),
		careunitHandler.NewHandler(careUnitSvc),
		staffHandler.NewHandler(staffSvc),
		logoHandler.NewHandler(logoSvc),
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		appLogger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info("server exited")
}
