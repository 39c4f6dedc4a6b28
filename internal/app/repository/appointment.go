package repository

import (
	"context"

	"github.com/Nirajxs/Hospital-management-system/internal/app/ds"

	"gorm.io/gorm/clause"
)

func (r *Repository) CreateAppointment(ctx context.Context, a *ds.Appointment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error
}

func (r *Repository) GetAppointment(ctx context.Context, id uint) (*ds.Appointment, error) {
	var a ds.Appointment
	err := r.db.WithContext(ctx).Preload("Patient").Preload("Doctor").First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetPatientAppointment only finds the appointment when patientID owns it.
func (r *Repository) GetPatientAppointment(ctx context.Context, id, patientID uint) (*ds.Appointment, error) {
	var a ds.Appointment
	err := r.db.WithContext(ctx).Preload("Doctor").
		Where("id = ? AND patient_id = ?", id, patientID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) ListPatientAppointments(ctx context.Context, patientID uint) ([]ds.Appointment, error) {
	var list []ds.Appointment
	err := r.db.WithContext(ctx).Preload("Doctor").
		Where("patient_id = ?", patientID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

func (r *Repository) ListDoctorAppointments(ctx context.Context, doctorID uint) ([]ds.Appointment, error) {
	var list []ds.Appointment
	err := r.db.WithContext(ctx).Preload("Patient").
		Where("doctor_id = ?", doctorID).
		Order(`"date" DESC, "time" DESC, id DESC`).
		Find(&list).Error
	return list, err
}

func (r *Repository) ListAllAppointments(ctx context.Context) ([]ds.Appointment, error) {
	var list []ds.Appointment
	err := r.db.WithContext(ctx).Preload("Patient").Preload("Doctor").
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

// MarkPaid sets the three payment fields in one statement. Rows already paid or not
// owned by patientID are left alone and reported as zero rows affected.
func (r *Repository) MarkPaid(ctx context.Context, id, patientID uint, method ds.PaymentMethod) (int64, error) {
	res := r.db.WithContext(ctx).Model(&ds.Appointment{}).
		Where("id = ? AND patient_id = ? AND payment_status <> ?", id, patientID, ds.PaymentSuccess).
		Updates(map[string]interface{}{
			"payment_status": ds.PaymentSuccess,
			"payment_method": method,
			"status":         ds.StatusPending,
		})
	return res.RowsAffected, res.Error
}

// ConfirmBooking moves an unpaid booking to the confirmed status.
func (r *Repository) ConfirmBooking(ctx context.Context, id, patientID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&ds.Appointment{}).
		Where("id = ? AND patient_id = ? AND status = ?", id, patientID, ds.StatusPendingPayment).
		Update("status", ds.StatusPending)
	return res.RowsAffected, res.Error
}

func (r *Repository) SetAppointmentStatus(ctx context.Context, id, doctorID uint, status ds.AppointmentStatus) (int64, error) {
	res := r.db.WithContext(ctx).Model(&ds.Appointment{}).
		Where("id = ? AND doctor_id = ?", id, doctorID).
		Update("status", status)
	return res.RowsAffected, res.Error
}

// MarkSeen flags the doctor's unseen appointments in a single conditional update.
// A nil ids slice means every unseen appointment; a non-nil one limits the update
// to those rows, so bookings that arrive after a dashboard read stay new.
func (r *Repository) MarkSeen(ctx context.Context, doctorID uint, ids []uint) (int64, error) {
	if ids != nil && len(ids) == 0 {
		return 0, nil
	}
	q := r.db.WithContext(ctx).Model(&ds.Appointment{}).
		Where("doctor_id = ? AND is_seen_by_doctor = ?", doctorID, false)
	if ids != nil {
		q = q.Where("id IN ?", ids)
	}
	res := q.Update("is_seen_by_doctor", true)
	return res.RowsAffected, res.Error
}

func (r *Repository) CountUnseen(ctx context.Context, doctorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ds.Appointment{}).
		Where("doctor_id = ? AND is_seen_by_doctor = ?", doctorID, false).
		Count(&count).Error
	return count, err
}
