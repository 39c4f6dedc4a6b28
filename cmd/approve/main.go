package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Nirajxs/Hospital-management-system/internal/app/dsn"
	"github.com/Nirajxs/Hospital-management-system/internal/app/repository"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

var errUsage = errors.New("-username is required")

// approve activates (or with -deactivate, blocks) a registered account. Doctor and
// staff registrations stay inactive until an administrator runs it.
func main() {
	username := flag.String("username", "", "account to change")
	deactivate := flag.Bool("deactivate", false, "block the account instead of activating it")
	flag.Parse()

	if err := run(*username, !*deactivate); err != nil {
		if errors.Is(err, errUsage) {
			flag.Usage()
		}
		log.WithError(err).Error("approve failed")
		os.Exit(1)
	}
}

func run(username string, active bool) error {
	if username == "" {
		return errUsage
	}

	_ = godotenv.Load()
	repo, err := repository.New(dsn.FromEnv())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	n, err := repo.SetUserActive(ctx, username, active)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no such user %q", username)
	}
	log.WithFields(log.Fields{"username": username, "active": active}).Info("account updated")
	return nil
}
