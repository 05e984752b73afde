package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/rs/zerolog/log"
	"greekgeeks/internal/pkg/logger"
	"greekgeeks/internal/platform/config"
	"greekgeeks/internal/platform/database"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	dsn := flag.String("dsn", "", "Database DSN (overrides config)")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Logging)

	if *dsn != "" {
		cfg.Database.DSN = *dsn
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	fmt.Println("Migration completed successfully")
}
