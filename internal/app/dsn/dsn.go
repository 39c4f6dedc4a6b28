package dsn

import (
	"fmt"
	"os"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// FromEnv builds the Postgres DSN from DB_* variables.
func FromEnv() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		env("DB_HOST", "localhost"),
		env("DB_PORT", "5432"),
		env("DB_USER", "postgres"),
		env("DB_PASS", "postgres"),
		env("DB_NAME", "clinic"),
		env("DB_SSLMODE", "disable"),
		env("DB_TIMEZONE", "UTC"),
	)
}
