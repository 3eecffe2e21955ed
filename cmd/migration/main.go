package main

import (
	"flag"
	"os"
	"vitals/cmd/migration/initialize"
	"vitals/cmd/migration/seed"
	"vitals/config"
	"vitals/internal/database"
	"vitals/internal/logger"
)

func main() {
	runSeed := flag.Bool("seed", false, "seed development data after migrating")
	flag.Parse()

	log := logger.New("migration")

	config, err := config.InitConfig()
	if err != nil {
		log.Er("failed to initialize config", err)
		os.Exit(1)
	}

	logger.Setup(config.Environment)

	db, err := database.New(config)
	if err != nil {
		log.Er("failed to create database", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := db.Migrate(); err != nil {
		log.Er("failed to apply migrations", err)
		os.Exit(1)
	}

	if err := initialize.InitializeTables(db.SQL, config, log); err != nil {
		log.Er("failed to initialize tables", err)
		os.Exit(1)
	}

	if *runSeed {
		if err := seed.Seed(db.SQL, config, log); err != nil {
			log.Er("failed to seed data", err)
			os.Exit(1)
		}
	}
}
