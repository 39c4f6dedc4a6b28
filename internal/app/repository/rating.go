package repository

import (
	"context"
	"time"

	"github.com/Nirajxs/Hospital-management-system/internal/app/ds"

	"gorm.io/gorm/clause"
)

func (r *Repository) GetRating(ctx context.Context, doctorID, patientID uint) (*ds.Rating, error) {
	var rt ds.Rating
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND patient_id = ?", doctorID, patientID).
		First(&rt).Error
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// UpsertRating relies on the (doctor_id, patient_id) unique index: a second submission
// for the same pair rewrites stars and review instead of adding a row.
func (r *Repository) UpsertRating(ctx context.Context, rt *ds.Rating) (*ds.Rating, error) {
	now := time.Now()
	row := ds.Rating{
		DoctorID:  rt.DoctorID,
		PatientID: rt.PatientID,
		Stars:     rt.Stars,
		Review:    rt.Review,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := r.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doctor_id"}, {Name: "patient_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"stars", "review", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}
	return r.GetRating(ctx, rt.DoctorID, rt.PatientID)
}

func (r *Repository) CountRatings(ctx context.Context, doctorID, patientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ds.Rating{}).
		Where("doctor_id = ? AND patient_id = ?", doctorID, patientID).
		Count(&count).Error
	return count, err
}
