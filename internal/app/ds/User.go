package ds

import (
	"strings"
	"time"
)

type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
	RoleStaff   Role = "STAFF"
)

var roleLabels = map[Role]string{
	RolePatient: "Patient",
	RoleDoctor:  "Doctor",
	RoleStaff:   "Staff",
}

// ParseRole accepts the stored value or its label in any case ("doctor", "Doctor", "DOCTOR").
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

func (r Role) Label() string {
	return roleLabels[r]
}

// RequiresApproval reports whether accounts with this role start inactive.
func (r Role) RequiresApproval() bool {
	return r != RolePatient
}

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`
	FirstName string    `gorm:"type:varchar(150)" json:"first_name"`
	LastName  string    `gorm:"type:varchar(150)" json:"last_name"`
	Password  string    `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Role      Role      `gorm:"type:varchar(10);not null;default:'PATIENT';index" json:"role"`
	IsActive  bool      `gorm:"type:boolean;not null" json:"is_active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`

	// doctor profile, empty for other roles
	Speciality    *string `gorm:"type:varchar(100)" json:"speciality,omitempty"`
	WorkFrom      *string `gorm:"type:varchar(150)" json:"work_from,omitempty"`
	Experience    *int    `json:"experience,omitempty"`
	Qualification *string `gorm:"type:varchar(150)" json:"qualification,omitempty"`
	About         *string `gorm:"type:text" json:"about,omitempty"`
	ImageKey      *string `gorm:"type:varchar(200)" json:"image_key,omitempty"`

	ImageURL string `gorm:"-" json:"image_url,omitempty"`
}

// FullName joins first and last name, falling back to the username.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

func (u User) String() string {
	return u.Username + " (" + u.Role.Label() + ")"
}
