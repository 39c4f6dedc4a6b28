package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/Nirajxs/Hospital-management-system/internal/app/ds"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/apperror"

	"gorm.io/gorm"
)

// ParseStars reads a star count from form input. Missing or unparseable input means
// the default; anything else is clamped into range.
func ParseStars(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return ds.DefaultStars
	}
	if n < ds.MinStars {
		return ds.MinStars
	}
	if n > ds.MaxStars {
		return ds.MaxStars
	}
	return n
}

type RateInput struct {
	Stars  string
	Review string
}

// Rate creates or replaces the caller's single rating of a doctor.
func (s *Clinic) Rate(ctx context.Context, caller Caller, doctorID uint, in RateInput) (*ds.Rating, Outcome, error) {
	if err := caller.require(ds.RolePatient); err != nil {
		return nil, Outcome{}, err
	}
	if _, err := s.store.GetDoctor(ctx, doctorID); err != nil {
		return nil, Outcome{}, lookupErr(err, "doctor")
	}

	existing, err := s.store.CountRatings(ctx, doctorID, caller.UserID)
	if err != nil {
		return nil, Outcome{}, apperror.Internal("load rating", err)
	}

	rt, err := s.store.UpsertRating(ctx, &ds.Rating{
		DoctorID:  doctorID,
		PatientID: caller.UserID,
		Stars:     ParseStars(in.Stars),
		Review:    strings.TrimSpace(in.Review),
	})
	if err != nil {
		return nil, Outcome{}, apperror.Internal("save rating", err)
	}

	msg := "Thank you! Your rating has been submitted."
	if existing > 0 {
		msg = "Your rating has been updated."
	}
	return rt, Outcome{Redirect: "/", Message: msg}, nil
}

// GetMyRating returns the caller's rating of the doctor, or nil when there is none.
func (s *Clinic) GetMyRating(ctx context.Context, caller Caller, doctorID uint) (*ds.Rating, error) {
	if err := caller.require(ds.RolePatient); err != nil {
		return nil, err
	}
	if _, err := s.store.GetDoctor(ctx, doctorID); err != nil {
		return nil, lookupErr(err, "doctor")
	}
	rt, err := s.store.GetRating(ctx, doctorID, caller.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal("load rating", err)
	}
	return rt, nil
}
