package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/joshua-takyi/cinepass/internal/clock"
	"github.com/joshua-takyi/cinepass/internal/config"
	"github.com/joshua-takyi/cinepass/internal/connect"
	"github.com/joshua-takyi/cinepass/internal/container"
	"github.com/joshua-takyi/cinepass/internal/helpers"
	"github.com/joshua-takyi/cinepass/internal/jobs"
	"github.com/joshua-takyi/cinepass/internal/mailer"
	"github.com/joshua-takyi/cinepass/internal/models"
	"github.com/joshua-takyi/cinepass/internal/routes"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	logger.Info("Starting CinePass API server", "environment", cfg.Environment)

	mongoClient, err := connect.MongoDBConnect(cfg.MongoDBURI, cfg.MongoDBPassword)
	if err != nil {
		logger.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to MongoDB successfully")

	redisClient, err := connect.RedisConnect(cfg.RedisURL)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to Redis successfully")

	mongoRepo := models.MongodbNewRepo(mongoClient, cfg.MongoDBDatabase)
	idxCtx, idxCancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := mongoRepo.EnsureIndexes(idxCtx); err != nil {
		logger.Error("Failed to create indexes", "error", err)
	}
	idxCancel()

	var mail mailer.Mailer = mailer.NewLogMailer(logger)
	if cfg.MailEnabled() {
		smtp, err := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
		if err != nil {
			logger.Error("Failed to configure SMTP mailer", "error", err)
			os.Exit(1)
		}
		mail = smtp
	} else {
		logger.Warn("SMTP not configured, outgoing mail will only be logged")
	}

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	var social *helpers.SocialVerifier
	if cfg.SocialJWKSURL != "" {
		social, err = helpers.NewSocialVerifier(appCtx, cfg.SocialJWKSURL, cfg.SocialAudience, cfg.SocialIssuer)
		if err != nil {
			logger.Error("Failed to load identity provider keys", "error", err)
			os.Exit(1)
		}
		defer social.Close()
	}

	appContainer := container.NewContainer(cfg, logger, container.Deps{
		BookingRepo: mongoRepo,
		UserRepo:    mongoRepo,
		OTPRepo:     models.RedisNewRepo(redisClient),
		Mailer:      mail,
		Social:      social,
		Clock:       clock.NewSystem(),
	})

	scheduler, err := jobs.NewScheduler(logger)
	if err != nil {
		logger.Error("Failed to create scheduler", "error", err)
		os.Exit(1)
	}
	if err := scheduler.RegisterReminders(appContainer.ReminderService, cfg.ReminderInterval); err != nil {
		logger.Error("Failed to register reminder job", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	router := routes.SetupRoutes(appContainer)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	if err := scheduler.Shutdown(); err != nil {
		logger.Error("Scheduler shutdown failed", "error", err)
	}

	if err := connect.RedisDisconnect(); err != nil {
		logger.Error("Error disconnecting from Redis", "error", err)
	}
	if err := connect.MongoDBDisconnect(); err != nil {
		logger.Error("Error disconnecting from MongoDB", "error", err)
	}

	logger.Info("Server exited")
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		// Human-readable logging for development
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}
