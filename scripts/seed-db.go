package main

import (
	"context"
	"flag"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/logger"
	"storefront/internal/migrations"

	"go.uber.org/zap"
)

func main() {
	reset := flag.Bool("reset", false, "drop every storefront table before migrating")
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := migrations.RunMigrations(context.Background(), db, *reset, log); err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	log.Info("database initialized")
}
