package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Nirajxs/Hospital-management-system/internal/app/ds"
	"github.com/Nirajxs/Hospital-management-system/internal/app/dsn"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/auth"
	"github.com/Nirajxs/Hospital-management-system/internal/app/repository"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type demoUser struct {
	username      string
	first, last   string
	role          ds.Role
	speciality    string
	qualification string
	workFrom      string
	experience    int
}

var demoUsers = []demoUser{
	{username: "reception", first: "Rita", last: "Shah", role: ds.RoleStaff},
	{username: "drmehta", first: "Anil", last: "Mehta", role: ds.RoleDoctor,
		speciality: "Cardiology", qualification: "MD, DM", workFrom: "City Clinic", experience: 12},
	{username: "drrao", first: "Priya", last: "Rao", role: ds.RoleDoctor,
		speciality: "Dermatology", qualification: "MBBS, MD", workFrom: "City Clinic", experience: 7},
	{username: "patient", first: "Ravi", last: "Kumar", role: ds.RolePatient},
}

func main() {
	if err := run(); err != nil {
		log.WithError(err).Fatal("seed failed")
	}
}

func run() error {
	_ = godotenv.Load()

	repo, err := repository.New(dsn.FromEnv())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer repo.Close()
	if err := repo.Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "clinic-demo"
	}
	hash, err := auth.NewHasher(bcrypt.DefaultCost).Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	ctx := context.Background()
	created := 0
	for _, d := range demoUsers {
		u := &ds.User{
			Username:  d.username,
			Email:     d.username + "@clinic.local",
			FirstName: d.first,
			LastName:  d.last,
			Password:  hash,
			Role:      d.role,
			IsActive:  true,
		}
		if d.role == ds.RoleDoctor {
			exp := d.experience
			u.Speciality = &d.speciality
			u.Qualification = &d.qualification
			u.WorkFrom = &d.workFrom
			u.Experience = &exp
		}
		err := repo.CreateUser(ctx, u)
		if errors.Is(err, repository.ErrDuplicate) {
			log.WithField("username", d.username).Info("already seeded")
			continue
		}
		if err != nil {
			return fmt.Errorf("seed user %s: %w", d.username, err)
		}
		created++
	}

	log.Infof("seeded %d users (password %q)", created, password)
	return nil
}
