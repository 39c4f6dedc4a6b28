package main

import (
	"fmt"

	"github.com/Nirajxs/Hospital-management-system/internal/app/dsn"
	"github.com/Nirajxs/Hospital-management-system/internal/app/repository"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := run(); err != nil {
		log.WithError(err).Fatal("migrate failed")
	}
	log.Info("schema is up to date")
}

func run() error {
	_ = godotenv.Load()

	repo, err := repository.New(dsn.FromEnv())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer repo.Close()

	// Migrate the schema
	if err := repo.Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
