package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"roomtour-backend/pkg/container"
	"roomtour-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	// Initialize container
	c, err := container.NewContainer(context.Background())
	if err != nil {
		logger.Init("development")
		log.Fatal().Err(err).Msg("[Container] Failed to initialize")
	}
	defer c.Cleanup()

	logger.Init(c.Config.App.Environment)

	if c.Redis == nil {
		log.Fatal().Msg("[Worker] REDIS_HOST must point to a reachable Redis")
	}
	if c.DB == nil {
		log.Fatal().Str("driver", c.Config.Database.Driver).
			Msg("[Worker] DB_DRIVER=postgres is required, a memory store is not shared with the API")
	}

	// Handlers and server
	handlers := initializeHandlers(c)
	srv := setupAsynqServer(c, handlers)

	// Health checks and startup log
	if err := startServices(c); err != nil {
		log.Fatal().Err(err).Msg("[Startup] Health check failed")
	}

	waitForShutdown(srv)
}

func waitForShutdown(srv *asynqServer) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("[Shutdown] Gracefully stopping...")
	srv.Shutdown()
	log.Info().Msg("[Shutdown] Stopped")
}
