package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Nirajxs/Hospital-management-system/internal/app/ds"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ErrDuplicate is returned when a write hits a unique index.
var ErrDuplicate = errors.New("duplicate record")

type Repository struct {
	db *gorm.DB
}

func New(dsn string) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return NewWithDB(db), nil
}

func NewWithDB(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Models lists every table in migration order.
func Models() []interface{} {
	return []interface{}{
		&ds.User{},
		&ds.Appointment{},
		&ds.Rating{},
		&ds.GalleryImage{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

func (r *Repository) Migrate() error {
	return AutoMigrate(r.db)
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// isUniqueViolation covers translated gorm errors as well as raw postgres (23505)
// and sqlite messages.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "23505") || strings.Contains(msg, "unique")
}
