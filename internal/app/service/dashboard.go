package service

import (
	"context"

	"github.com/Nirajxs/Hospital-management-system/internal/app/ds"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/apperror"
)

// Dashboard is the role-dependent landing page.
type Dashboard struct {
	Role            ds.Role          `json:"role"`
	Appointments    []ds.Appointment `json:"appointments"`
	NewAppointments []ds.Appointment `json:"new_appointments,omitempty"`
	NewCount        int              `json:"new_count"`
}

// Dashboard lists the caller's appointments. For a doctor, the rows unseen at read
// time come back as new and are then acknowledged, so the next read shows none of
// them as new.
func (s *Clinic) Dashboard(ctx context.Context, caller Caller) (*Dashboard, error) {
	if err := caller.require(allRoles...); err != nil {
		return nil, err
	}

	d := &Dashboard{Role: caller.Role}
	var err error
	switch caller.Role {
	case ds.RolePatient:
		d.Appointments, err = s.store.ListPatientAppointments(ctx, caller.UserID)
	case ds.RoleDoctor:
		d.Appointments, err = s.store.ListDoctorAppointments(ctx, caller.UserID)
	case ds.RoleStaff:
		d.Appointments, err = s.store.ListAllAppointments(ctx)
	}
	if err != nil {
		return nil, apperror.Internal("list appointments", err)
	}
	if d.Appointments == nil {
		d.Appointments = []ds.Appointment{}
	}
	s.decorateAppointments(d.Appointments)

	if caller.Role != ds.RoleDoctor {
		return d, nil
	}

	ids := make([]uint, 0)
	d.NewAppointments = make([]ds.Appointment, 0)
	for _, a := range d.Appointments {
		if !a.IsSeenByDoctor {
			d.NewAppointments = append(d.NewAppointments, a)
			ids = append(ids, a.ID)
		}
	}
	d.NewCount = len(d.NewAppointments)

	if len(ids) > 0 {
		if _, err := s.AcknowledgeNotifications(ctx, caller, ids); err != nil {
			// the rows stay new and show up again on the next read
			s.log.WithError(err).WithField("doctor_id", caller.UserID).Warn("acknowledge notifications failed")
		}
	}
	return d, nil
}

// AcknowledgeNotifications marks the given unseen appointments of the doctor as seen
// in one conditional update. A nil ids slice acknowledges all of them.
func (s *Clinic) AcknowledgeNotifications(ctx context.Context, caller Caller, ids []uint) (int64, error) {
	if err := caller.require(ds.RoleDoctor); err != nil {
		return 0, err
	}
	n, err := s.store.MarkSeen(ctx, caller.UserID, ids)
	if err != nil {
		return 0, apperror.Internal("acknowledge notifications", err)
	}
	return n, nil
}

// AcknowledgeAll clears every pending notification of the doctor.
func (s *Clinic) AcknowledgeAll(ctx context.Context, caller Caller) (int64, Outcome, error) {
	n, err := s.AcknowledgeNotifications(ctx, caller, nil)
	if err != nil {
		return 0, Outcome{}, err
	}
	return n, Outcome{Redirect: "/dashboard", Message: "Notifications cleared."}, nil
}

// NotificationCount is the number of the doctor's appointments not yet seen.
func (s *Clinic) NotificationCount(ctx context.Context, caller Caller) (int64, error) {
	if err := caller.require(ds.RoleDoctor); err != nil {
		return 0, err
	}
	n, err := s.store.CountUnseen(ctx, caller.UserID)
	if err != nil {
		return 0, apperror.Internal("count notifications", err)
	}
	return n, nil
}
