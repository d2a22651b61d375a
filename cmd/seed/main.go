package main

import (
	"flag"
	"fmt"
	"log"

	"go.uber.org/zap"

	"libmate/internal/config"
	"libmate/internal/database"
	"libmate/internal/logging"
	"libmate/internal/seeds"
	"libmate/internal/services"
)

func main() {
	configFile := flag.String("config", "./config.yml", "path to the yaml configuration file")
	envFile := flag.String("env", "./.env", "path to the dotenv file")
	flag.Parse()

	cfg, err := config.Load(*configFile, *envFile)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logFile, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}
	defer logFile.Close()

	logger, flush := logging.Setup(cfg, logFile)
	defer flush()
	logger = logger.Named("seed")

	if err := run(cfg, logger); err != nil {
		logger.Error("seeding failed", zap.Error(err))
		flush()
		log.Fatalf("seeding failed: %v", err)
	}
	fmt.Println("Database seeded with data successfully!")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	db, err := database.Open(&cfg.Database, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	fmt.Println("Recreating database tables...")
	if err := database.Reset(db); err != nil {
		return err
	}

	clock := services.NewClock(cfg.IsProduction)
	seeder := seeds.NewSeeder(db, logger, cfg.Seed.RandomSeed, clock.Now())
	return seeder.RunAllSeeds(cfg.Seed)
}
