package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"vitals/internal/app"
	"vitals/internal/ingestion"
	"vitals/internal/logger"
)

// The ingestion worker runs separately from the API so a slow provider
// sync never competes with request serving. Progress still reaches API
// processes through the cache's pub/sub channel.
func main() {
	log := logger.New("main").File("ingest")

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

	consumer := ingestion.New(
		application.Database,
		application.SampleRepo,
		application.EventBus,
		application.Config,
	)
	defer func() {
		if err := consumer.Close(); err != nil {
			log.Er("failed to close consumer", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		log.Info("shutting down")
		cancel()
	}()

	if err := consumer.Run(ctx); err != nil {
		log.Er("consumer stopped", err)
		os.Exit(1)
	}
}
