package ds

import "time"

const (
	MinStars     = 1
	MaxStars     = 5
	DefaultStars = 5
)

type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DoctorID  uint      `gorm:"not null;uniqueIndex:idx_rating_doctor_patient" json:"doctor_id"`
	PatientID uint      `gorm:"not null;uniqueIndex:idx_rating_doctor_patient" json:"patient_id"`
	Stars     int       `gorm:"type:integer;not null;default:5;check:stars BETWEEN 1 AND 5" json:"stars"`
	Review    string    `gorm:"type:text" json:"review"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
}

// DoctorSummary is a doctor with the aggregate of its current ratings.
type DoctorSummary struct {
	User
	AvgRating    *float64 `json:"avg_rating"`
	TotalReviews int64    `json:"total_reviews"`
}
