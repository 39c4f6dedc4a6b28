// Package repositorytest opens a migrated in-memory database for tests.
package repositorytest

import (
	"context"
	"testing"
	"time"

	"github.com/Nirajxs/Hospital-management-system/internal/app/ds"
	"github.com/Nirajxs/Hospital-management-system/internal/app/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Password is the plain password of every user made by User.
const Password = "s3cret-pass"

// New returns a repository over a private sqlite memory database. A single open
// connection keeps the database alive for the whole test.
func New(t testing.TB) *repository.Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repository.AutoMigrate(db))
	return repository.NewWithDB(db)
}

// User stores an account with Password hashed at the minimum bcrypt cost.
func User(t testing.TB, repo *repository.Repository, username string, role ds.Role, active bool) *ds.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	u := &ds.User{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: username,
		Password:  string(hash),
		Role:      role,
		IsActive:  active,
	}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	return u
}

// Appointment books doctor for patient on the given day and time.
func Appointment(t testing.TB, repo *repository.Repository, patient, doctor *ds.User, day time.Time, at string) *ds.Appointment {
	t.Helper()

	a := &ds.Appointment{
		PatientID:     patient.ID,
		DoctorID:      doctor.ID,
		Date:          day,
		Time:          at,
		PatientName:   patient.FullName(),
		ContactNumber: "5551234567",
		Symptoms:      "headache",
		Status:        ds.StatusPendingPayment,
		PaymentStatus: ds.PaymentPending,
	}
	require.NoError(t, repo.CreateAppointment(context.Background(), a))
	return a
}

// Day parses a YYYY-MM-DD date in UTC.
func Day(t testing.TB, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}
