package main

import (
	"log"

	"github.com/joho/godotenv"

	approuters "gatherly/internal/app_routers"
	"gatherly/internal/configuration"
)

func main() {
	// Optional .env for local development; env vars win either way.
	_ = godotenv.Load()

	container, err := configuration.BuildContainer()
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}

	// Ensure cleanup on shutdown
	defer container.Close()

	approuters.StartServer(container)
}
