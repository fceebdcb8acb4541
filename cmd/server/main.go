package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"freelance/internal/app"
	"freelance/internal/config"
	"freelance/internal/handler"
	"freelance/internal/logger"
	internalRedis "freelance/internal/redis"
	"freelance/internal/repository/postgres"
	"freelance/internal/service"
	"freelance/internal/stripe"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic first so the database can be instrumented.
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.WithError(err).Warn("failed to initialize New Relic")
		} else {
			log.WithField("app", cfg.NewRelic.AppName).Info("New Relic enabled")
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()
	log.Info("Connected to PostgreSQL")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info("Connected to Redis")

	server := wireServer(db, redisClient, nrApp, cfg, log)

	go func() {
		log.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config, log *logrus.Logger) *http.Server {
	// Redis stores.
	tokenStore := internalRedis.NewTokenStore(redisClient)
	eventStore := internalRedis.NewEventStore(redisClient)

	// Repositories.
	userRepo := postgres.NewUserRepository(db)
	projectRepo := postgres.NewProjectRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)

	// Payment processor adapter.
	processor := stripe.NewClient(cfg.Stripe.SecretKey, cfg.Stripe.BaseURL, cfg.Stripe.CallTimeout)
	verifier := stripe.NewWebhookVerifier(cfg.Stripe.WebhookSecret)

	// Mail delivery; logged instead of sent when SMTP is not configured.
	var mailer service.Mailer
	if cfg.SMTP.Host != "" {
		mailer = service.NewSMTPMailer(cfg.SMTP)
	} else {
		mailer = service.NewLogMailer(log)
	}

	// Services.
	userService := service.NewUserService(userRepo, tokenStore, mailer, cfg.JWT, cfg.Server.BaseURL, log)
	projectService := service.NewProjectService(projectRepo, log)
	paymentService := service.NewPaymentService(paymentRepo, projectRepo, processor, verifier, eventStore, log)

	// Handlers.
	userHandler := handler.NewUserHandler(userService)
	projectHandler := handler.NewProjectHandler(projectService)
	paymentHandler := handler.NewPaymentHandler(paymentService)

	router := app.NewRouter(app.RouterDeps{
		UserHandler:    userHandler,
		ProjectHandler: projectHandler,
		PaymentHandler: paymentHandler,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
		JWTSecret:      cfg.JWT.Secret,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
