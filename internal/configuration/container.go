package configuration

import (
	"context"
	"fmt"
	"os"
	"time"

	"gatherly/internal/auth"
	"gatherly/internal/handler"
	"gatherly/internal/hub"
	"gatherly/internal/repo"
	"gatherly/internal/service"
	"gatherly/internal/store"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Container wires the whole application together.
type Container struct {
	AuthHandler  handler.AuthHandler
	EventHandler handler.EventHandler
	UserHandler  handler.UserHandler
	UserService  service.UserService
	Issuer       *auth.TokenIssuer
	Hub          *hub.Hub
	Config       Config
	Logger       *zap.Logger

	// private - for cleanup
	mongoClient *mongo.Database
}

func BuildContainer() (*Container, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.dev.json"
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	con, err := store.OpenConnection(config.Mongo.Uri, config.Mongo.Database)
	if err != nil {
		return nil, err
	}

	logger, _ := zap.NewProduction()

	eventRepo := repo.NewEventRepository(con, logger)
	userRepo := repo.NewUserRepository(con, logger)

	issuer := auth.NewTokenIssuer(config.Auth.JwtSecret, time.Duration(config.Auth.TokenTTLHours)*time.Hour)

	userService := service.NewUserService(userRepo, logger)
	eventService := service.NewEventService(eventRepo, userRepo, logger)
	authService := service.NewAuthService(userRepo, issuer, logger)

	liveHub := hub.NewHub(hub.NewRoomFactory(eventRepo, userRepo, eventService, userService, logger), logger)

	return &Container{
		AuthHandler:  handler.NewAuthHandler(authService),
		EventHandler: handler.NewEventHandler(eventService, userService),
		UserHandler:  handler.NewUserHandler(userService, authService),
		UserService:  userService,
		Issuer:       issuer,
		Hub:          liveHub,
		Config:       *config,
		Logger:       logger,
		mongoClient:  con,
	}, nil
}

// Close gracefully shuts down all connections.
func (c *Container) Close() error {
	// Stop the hub first (closes all WebSocket connections and rooms)
	if c.Hub != nil {
		c.Hub.Stop()
	}

	// Sync logger
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}

	// Close MongoDB connection pool
	if c.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.mongoClient.Client().Disconnect(ctx); err != nil {
			return fmt.Errorf("failed to close MongoDB connection: %w", err)
		}
	}

	return nil
}
