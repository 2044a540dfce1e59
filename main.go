package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/ctfground/ctf-service/internal/config"
	"github.com/ctfground/ctf-service/internal/email"
	"github.com/ctfground/ctf-service/internal/events"
	"github.com/ctfground/ctf-service/internal/handlers"
	"github.com/ctfground/ctf-service/internal/repositories/postgres"
	"github.com/ctfground/ctf-service/internal/security"
	"github.com/ctfground/ctf-service/internal/services"
	"github.com/ctfground/ctf-service/internal/utils"
	"github.com/ctfground/ctf-service/internal/validator"
	"github.com/ctfground/ctf-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			log.Printf("Warning: Failed to initialize Redis: %v", err)
		}
	}

	// Initialize repositories
	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
	})

	// Email event transport. Kafka when brokers are configured, an
	// in-process channel otherwise.
	var (
		publisher  message.Publisher
		subscriber message.Subscriber
	)
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err = events.NewKafkaPublisher(cfg.Kafka.Brokers, slogLogger)
		if err != nil {
			log.Fatalf("Failed to initialize Kafka publisher: %v", err)
		}
		subscriber, err = events.NewKafkaSubscriber(cfg.Kafka.Brokers, "ctf-service-mailer", slogLogger)
		if err != nil {
			log.Fatalf("Failed to initialize Kafka subscriber: %v", err)
		}
	} else {
		channel := events.NewGoChannel(slogLogger)
		publisher = channel
		subscriber = channel
	}
	eventPublisher := events.NewWatermillPublisher(publisher, cfg.Kafka.EmailTopic, slogLogger)

	// Initialize validator
	validator := validator.New()

	// Initialize services
	tokens := security.NewTokenService(cfg.JWTSecret, cfg.JWTExpire)
	serviceManager := services.NewServiceManager(services.Dependencies{
		Repo:               repo,
		Tokens:             tokens,
		Publisher:          eventPublisher,
		Validator:          validator,
		Logger:             slogLogger,
		ConfirmationWindow: cfg.ConfirmationWindow,
	})

	// Email delivery loop
	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	defer stopDispatcher()
	mailer := email.NewSMTPMailer(cfg.SMTP)
	dispatcher := email.NewDispatcher(subscriber, cfg.Kafka.EmailTopic, mailer, slogLogger)
	go func() {
		if err := dispatcher.Run(dispatcherCtx); err != nil && dispatcherCtx.Err() == nil {
			slogLogger.Error("email dispatcher stopped", "error", err)
		}
	}()

	// Initialize handlers
	handlerManager := handlers.NewHandlerManager(serviceManager, validator, logger)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	stopDispatcher()
	if err := eventPublisher.Close(); err != nil {
		log.Printf("Failed to close event publisher: %v", err)
	}

	if err := repo.Close(); err != nil {
		log.Printf("Failed to close repository: %v", err)
	}
	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("Server exited")
}
