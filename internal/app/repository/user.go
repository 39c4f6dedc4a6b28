package repository

import (
	"context"
	"fmt"

	"github.com/Nirajxs/Hospital-management-system/internal/app/ds"
)

func (r *Repository) GetUserByID(ctx context.Context, id uint) (*ds.User, error) {
	var u ds.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*ds.User, error) {
	var u ds.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) CreateUser(ctx context.Context, u *ds.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create user %q: %w", u.Username, ErrDuplicate)
		}
		return err
	}
	return nil
}

func (r *Repository) UpdateUser(ctx context.Context, id uint, fields map[string]interface{}) error {
	err := r.db.WithContext(ctx).Model(&ds.User{}).Where("id = ?", id).Updates(fields).Error
	if isUniqueViolation(err) {
		return fmt.Errorf("update user %d: %w", id, ErrDuplicate)
	}
	return err
}

// SetUserActive flips the approval flag and reports how many rows changed.
func (r *Repository) SetUserActive(ctx context.Context, username string, active bool) (int64, error) {
	res := r.db.WithContext(ctx).Model(&ds.User{}).
		Where("username = ?", username).
		Update("is_active", active)
	return res.RowsAffected, res.Error
}

// GetActiveDoctor returns a doctor that can currently take bookings.
func (r *Repository) GetActiveDoctor(ctx context.Context, id uint) (*ds.User, error) {
	var u ds.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND role = ? AND is_active = ?", id, ds.RoleDoctor, true).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetDoctor(ctx context.Context, id uint) (*ds.User, error) {
	var u ds.User
	if err := r.db.WithContext(ctx).Where("id = ? AND role = ?", id, ds.RoleDoctor).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// ListDoctors returns active doctors with their rating average and review count,
// recomputed from the ratings table on every call.
func (r *Repository) ListDoctors(ctx context.Context) ([]ds.DoctorSummary, error) {
	var doctors []ds.DoctorSummary
	err := r.db.WithContext(ctx).Model(&ds.User{}).
		Select("users.*, AVG(ratings.stars) AS avg_rating, COUNT(ratings.id) AS total_reviews").
		Joins("LEFT JOIN ratings ON ratings.doctor_id = users.id").
		Where("users.role = ? AND users.is_active = ?", ds.RoleDoctor, true).
		Group("users.id").
		Order("users.username").
		Scan(&doctors).Error
	return doctors, err
}
