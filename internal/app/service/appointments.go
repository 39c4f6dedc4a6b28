package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Nirajxs/Hospital-management-system/internal/app/ds"
	"github.com/Nirajxs/Hospital-management-system/internal/app/notify"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/apperror"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/storage"

	"gorm.io/gorm"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	maxPatientNameLen   = 100
	maxContactNumberLen = 15
)

// ParseTime accepts HH:MM and the HH:MM:SS form that time inputs send when a step is
// set, and returns the time as HH:MM.
func ParseTime(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{TimeLayout, "15:04:05"} {
		if at, err := time.Parse(layout, s); err == nil {
			return at.Format(TimeLayout), true
		}
	}
	return "", false
}

func PaymentPath(id uint) string {
	return fmt.Sprintf("/appointments/%d/payment", id)
}

type BookInput struct {
	DoctorID      uint
	Date          string
	Time          string
	Symptoms      string
	PatientName   string
	ContactNumber string
	Image         *storage.Object
}

func (in *BookInput) check() (time.Time, error) {
	if in.DoctorID == 0 {
		return time.Time{}, apperror.Validation("Select a valid doctor")
	}
	day, err := time.Parse(DateLayout, strings.TrimSpace(in.Date))
	if err != nil {
		return time.Time{}, apperror.Validation("Enter a valid date.")
	}
	at, ok := ParseTime(in.Time)
	if !ok {
		return time.Time{}, apperror.Validation("Enter a valid time.")
	}
	in.Time = at

	in.PatientName = strings.TrimSpace(in.PatientName)
	in.ContactNumber = strings.TrimSpace(in.ContactNumber)
	if utf8.RuneCountInString(in.PatientName) > maxPatientNameLen {
		return time.Time{}, apperror.Validation("Patient name must be at most 100 characters.")
	}
	if utf8.RuneCountInString(in.ContactNumber) > maxContactNumberLen {
		return time.Time{}, apperror.Validation("Contact number must be at most 15 characters.")
	}
	if in.Image != nil && !in.Image.IsImage() {
		return time.Time{}, apperror.Validation("Upload a valid image.")
	}
	return day, nil
}

// Book stores a new appointment awaiting payment and announces it to the doctor.
func (s *Clinic) Book(ctx context.Context, caller Caller, in BookInput) (*ds.Appointment, Outcome, error) {
	if err := caller.require(ds.RolePatient); err != nil {
		return nil, Outcome{}, err
	}
	day, err := in.check()
	if err != nil {
		return nil, Outcome{}, err
	}

	doctor, err := s.store.GetActiveDoctor(ctx, in.DoctorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Outcome{}, apperror.Validation("Select a valid doctor")
	}
	if err != nil {
		return nil, Outcome{}, apperror.Internal("load doctor", err)
	}

	if in.PatientName == "" {
		patient, err := s.store.GetUserByID(ctx, caller.UserID)
		if err != nil {
			return nil, Outcome{}, lookupErr(err, "user")
		}
		in.PatientName = patient.FullName()
	}

	a := &ds.Appointment{
		PatientID:      caller.UserID,
		DoctorID:       doctor.ID,
		Date:           day,
		Time:           in.Time,
		PatientName:    in.PatientName,
		ContactNumber:  in.ContactNumber,
		Symptoms:       strings.TrimSpace(in.Symptoms),
		Status:         ds.StatusPendingPayment,
		PaymentStatus:  ds.PaymentPending,
		IsSeenByDoctor: false,
	}
	if in.Image != nil {
		key, err := s.files.Put(ctx, storage.PrefixAppointments, *in.Image)
		if err != nil {
			return nil, Outcome{}, apperror.Internal("store image", err)
		}
		a.ImageKey = &key
	}

	if err := s.store.CreateAppointment(ctx, a); err != nil {
		if a.ImageKey != nil {
			s.discard(ctx, *a.ImageKey)
		}
		return nil, Outcome{}, apperror.Internal("create appointment", err)
	}

	if s.events != nil {
		s.events.Publish(notify.NewAppointmentBooked(a, doctor))
	}

	a.Doctor = *doctor
	s.decorateAppointment(a)
	return a, Outcome{
		Redirect: PaymentPath(a.ID),
		Message:  "Appointment booked. Complete the payment to confirm it.",
	}, nil
}

// GetForPayment shows the patient's own appointment on the payment step.
func (s *Clinic) GetForPayment(ctx context.Context, caller Caller, id uint) (*ds.Appointment, error) {
	if err := caller.require(ds.RolePatient); err != nil {
		return nil, err
	}
	a, err := s.store.GetPatientAppointment(ctx, id, caller.UserID)
	if err != nil {
		return nil, lookupErr(err, "appointment")
	}
	s.decorateAppointment(a)
	return a, nil
}

// Pay records a simulated payment. Payment status, method and the confirmed status
// change together in one update.
func (s *Clinic) Pay(ctx context.Context, caller Caller, id uint, method string) (*ds.Appointment, Outcome, error) {
	if err := caller.require(ds.RolePatient); err != nil {
		return nil, Outcome{}, err
	}
	a, err := s.store.GetPatientAppointment(ctx, id, caller.UserID)
	if err != nil {
		return nil, Outcome{}, lookupErr(err, "appointment")
	}

	pm, ok := ds.NormalizePaymentMethod(method)
	if !ok {
		return nil, Outcome{}, apperror.Validation("Please select a payment method.").WithRedirect(PaymentPath(id))
	}
	if a.PaymentStatus == ds.PaymentSuccess {
		return nil, Outcome{}, apperror.Conflict("This appointment is already paid.")
	}

	n, err := s.store.MarkPaid(ctx, id, caller.UserID, pm)
	if err != nil {
		return nil, Outcome{}, apperror.Internal("record payment", err)
	}
	if n == 0 {
		return nil, Outcome{}, apperror.Conflict("This appointment is already paid.")
	}

	paid, err := s.GetForPayment(ctx, caller, id)
	if err != nil {
		return nil, Outcome{}, err
	}
	s.log.WithField("appointment_id", id).WithField("method", pm).Info("payment recorded")
	return paid, Outcome{
		Redirect: "/dashboard",
		Message:  fmt.Sprintf("Payment successful using %s! Appointment confirmed.", pm.Label()),
	}, nil
}

// ConfirmPayment confirms a booking without touching the payment fields.
func (s *Clinic) ConfirmPayment(ctx context.Context, caller Caller, id uint) (*ds.Appointment, Outcome, error) {
	if err := caller.require(ds.RolePatient); err != nil {
		return nil, Outcome{}, err
	}
	a, err := s.store.GetPatientAppointment(ctx, id, caller.UserID)
	if err != nil {
		return nil, Outcome{}, lookupErr(err, "appointment")
	}
	if a.Status != ds.StatusPendingPayment {
		return nil, Outcome{}, apperror.Conflict("This appointment is already confirmed.")
	}

	n, err := s.store.ConfirmBooking(ctx, id, caller.UserID)
	if err != nil {
		return nil, Outcome{}, apperror.Internal("confirm appointment", err)
	}
	if n == 0 {
		return nil, Outcome{}, apperror.Conflict("This appointment is already confirmed.")
	}

	confirmed, err := s.GetForPayment(ctx, caller, id)
	if err != nil {
		return nil, Outcome{}, err
	}
	return confirmed, Outcome{Redirect: "/dashboard", Message: "Payment successful! Appointment confirmed."}, nil
}

// UpdateStatus lets the assigned doctor set any of the doctor statuses. There is no
// transition order: a completed appointment can be reopened.
func (s *Clinic) UpdateStatus(ctx context.Context, caller Caller, id uint, status string) (*ds.Appointment, Outcome, error) {
	if err := caller.require(ds.RoleDoctor); err != nil {
		return nil, Outcome{}, err
	}
	st, ok := ds.ParseDoctorStatus(status)
	if !ok {
		return nil, Outcome{}, apperror.Validation("Invalid status.").WithRedirect("/dashboard")
	}

	n, err := s.store.SetAppointmentStatus(ctx, id, caller.UserID, st)
	if err != nil {
		return nil, Outcome{}, apperror.Internal("update status", err)
	}
	if n == 0 {
		return nil, Outcome{}, apperror.NotFound("appointment", nil)
	}

	a, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, Outcome{}, lookupErr(err, "appointment")
	}
	s.decorateAppointment(a)
	return a, Outcome{Redirect: "/dashboard", Message: "Status updated."}, nil
}
