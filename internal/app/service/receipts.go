package service

import (
	"context"
	"errors"

	"github.com/Nirajxs/Hospital-management-system/internal/app/ds"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/apperror"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/receipt"
)

// Receipt renders the PDF receipt of a paid appointment for its patient or for staff.
func (s *Clinic) Receipt(ctx context.Context, caller Caller, id uint) ([]byte, string, error) {
	if err := caller.require(ds.RolePatient, ds.RoleStaff); err != nil {
		return nil, "", err
	}
	a, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, "", lookupErr(err, "appointment")
	}
	if caller.Role == ds.RolePatient && a.PatientID != caller.UserID {
		return nil, "", apperror.NotFound("appointment", nil)
	}

	pdf, err := receipt.Render(s.name, a, s.now())
	if errors.Is(err, receipt.ErrNotPaid) {
		return nil, "", apperror.Conflict("The receipt is available once the appointment is paid.")
	}
	if err != nil {
		return nil, "", apperror.Internal("render receipt", err)
	}
	return pdf, receipt.FileName(a), nil
}
