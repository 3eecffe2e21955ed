package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"vitals/internal/app"
	"vitals/internal/handlers"
	"vitals/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	log := logger.New("main")

	application, err := app.New()
	if err != nil {
		log.Er("failed to initialize application", err)
		os.Exit(1)
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Er("failed to close application cleanly", err)
		}
	}()

	server := fiber.New(fiber.Config{
		AppName:               "vitals",
		DisableStartupMessage: application.Config.Environment == "production",
	})

	server.Use(recover.New())
	server.Use(application.Middleware.Cors())

	if err := handlers.Router(server, application); err != nil {
		log.Er("failed to register routes", err)
		os.Exit(1)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		log.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			log.Er("failed to shut down server", err)
		}
	}()

	address := fmt.Sprintf(":%d", application.Config.ServerPort)
	log.Info("starting server", "address", address)
	if err := server.Listen(address); err != nil {
		log.Er("server stopped", err)
		os.Exit(1)
	}
}
