package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tixbay/internal/config"
	"tixbay/internal/connect"
	"tixbay/internal/container"
	"tixbay/internal/mq"
	"tixbay/internal/routes"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	cld, err := connect.CloudinaryCredentials()
	if err != nil {
		slog.Error("Failed to connect to Cloudinary", "error", err)
		os.Exit(1)
	}
	connect.Cld = cld

	// Setup logger
	logger := setupLogger(cfg)
	logger.Info("Starting Tixbay API server", "environment", cfg.Environment)

	// Initialize database connections
	supaClient, supaUrl, supaKey, err := connect.InitSupabase()
	if err != nil {
		logger.Error("Failed to connect to Supabase", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to Supabase successfully")

	mongoClient, err := connect.MongoDBConnect()
	if err != nil {
		logger.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to MongoDB successfully")

	redisClient, err := connect.RedisConnect(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to Redis successfully")

	amqpConn, err := connect.RabbitMQConnect(cfg.AMQPURL)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	if err := mq.InitQueues(amqpConn); err != nil {
		logger.Error("Failed to declare notification queues", "error", err)
		os.Exit(1)
	}
	amqpChannel, err := mq.NewChannel(amqpConn)
	if err != nil {
		logger.Error("Failed to open RabbitMQ channel", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to RabbitMQ successfully")

	// Initialize dependency container
	appContainer := container.NewContainer(logger, cld, supaClient, mongoClient, redisClient, amqpChannel, supaUrl, supaKey)

	// Search index must exist before the mirror starts feeding it.
	indexCtx, indexCancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := appContainer.SearchRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Error("Failed to ensure search indexes", "error", err)
	}
	indexCancel()

	// Run the search mirror for the lifetime of the process.
	mirrorCtx, mirrorCancel := context.WithCancel(context.Background())
	go func() {
		if err := appContainer.SearchMirror.Run(mirrorCtx); err != nil && err != context.Canceled {
			logger.Error("Search mirror stopped", "error", err)
		}
	}()

	// Setup routes
	router := routes.SetupRoutes(appContainer, cfg.FrontendURL)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
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

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	mirrorCancel()

	// Close connections
	connect.Disconnect()
	if err := connect.MongoDBDisconnect(); err != nil {
		logger.Error("Error disconnecting from MongoDB", "error", err)
	}
	if err := connect.RedisDisconnect(); err != nil {
		logger.Error("Error disconnecting from Redis", "error", err)
	}
	if err := connect.RabbitMQDisconnect(); err != nil {
		logger.Error("Error disconnecting from RabbitMQ", "error", err)
	}

	logger.Info("Server exited")
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	if cfg.IsProduction() {
		// JSON logging for production
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		// Human-readable logging for development
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	return slog.New(handler)
}
