package main

import (
	"flag"
	"log"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"libmate/internal/cli"
	"libmate/internal/config"
	"libmate/internal/database"
	"libmate/internal/logging"
	"libmate/internal/services"
)

func main() {
	configFile := flag.String("config", "./config.yml", "path to the yaml configuration file")
	envFile := flag.String("env", "./.env", "path to the dotenv file")
	pause := flag.Bool("pause", true, "wait for Enter after every action")
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
	logger = logger.With(zap.String("session", uuid.NewString()))

	db, err := database.Open(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", zap.Error(err))
		flush()
		log.Fatalf("failed to open database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error("failed to close database", zap.Error(err))
		}
	}()

	svc := services.New(db, logger, services.NewClock(cfg.IsProduction))
	menu := cli.NewMenu(svc, logger, os.Stdin, os.Stdout, cli.WithPause(*pause))

	if err := menu.Run(); err != nil {
		logger.Error("menu stopped", zap.Error(err))
	}
	logger.Info("session closed")
}
