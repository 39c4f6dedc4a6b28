// Package service holds the clinic workflow: registration, booking, payment,
// doctor status changes, dashboards, ratings and the gallery.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/Nirajxs/Hospital-management-system/internal/app/ds"
	"github.com/Nirajxs/Hospital-management-system/internal/app/notify"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/apperror"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/auth"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/storage"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Store is the persistence the workflow needs. *repository.Repository implements it.
type Store interface {
	GetUserByID(ctx context.Context, id uint) (*ds.User, error)
	GetUserByUsername(ctx context.Context, username string) (*ds.User, error)
	CreateUser(ctx context.Context, u *ds.User) error
	UpdateUser(ctx context.Context, id uint, fields map[string]interface{}) error
	GetActiveDoctor(ctx context.Context, id uint) (*ds.User, error)
	GetDoctor(ctx context.Context, id uint) (*ds.User, error)
	ListDoctors(ctx context.Context) ([]ds.DoctorSummary, error)

	CreateAppointment(ctx context.Context, a *ds.Appointment) error
	GetAppointment(ctx context.Context, id uint) (*ds.Appointment, error)
	GetPatientAppointment(ctx context.Context, id, patientID uint) (*ds.Appointment, error)
	ListPatientAppointments(ctx context.Context, patientID uint) ([]ds.Appointment, error)
	ListDoctorAppointments(ctx context.Context, doctorID uint) ([]ds.Appointment, error)
	ListAllAppointments(ctx context.Context) ([]ds.Appointment, error)
	MarkPaid(ctx context.Context, id, patientID uint, method ds.PaymentMethod) (int64, error)
	ConfirmBooking(ctx context.Context, id, patientID uint) (int64, error)
	SetAppointmentStatus(ctx context.Context, id, doctorID uint, status ds.AppointmentStatus) (int64, error)
	MarkSeen(ctx context.Context, doctorID uint, ids []uint) (int64, error)
	CountUnseen(ctx context.Context, doctorID uint) (int64, error)

	GetRating(ctx context.Context, doctorID, patientID uint) (*ds.Rating, error)
	UpsertRating(ctx context.Context, rt *ds.Rating) (*ds.Rating, error)
	CountRatings(ctx context.Context, doctorID, patientID uint) (int64, error)

	CreateGalleryImage(ctx context.Context, g *ds.GalleryImage) error
	ListGalleryImages(ctx context.Context) ([]ds.GalleryImage, error)
}

// Files stores uploaded images. *storage.MinIO implements it.
type Files interface {
	Put(ctx context.Context, prefix string, obj storage.Object) (string, error)
	URL(key string) string
	Delete(ctx context.Context, key string) error
}

// Publisher receives booking events; it must not block.
type Publisher interface {
	Publish(ev notify.AppointmentBooked) bool
}

// Caller is the authenticated identity behind a request.
type Caller struct {
	UserID uint
	Role   ds.Role
}

var allRoles = []ds.Role{ds.RolePatient, ds.RoleDoctor, ds.RoleStaff}

func (c Caller) require(roles ...ds.Role) error {
	if c.UserID == 0 || !c.Role.Valid() {
		return apperror.Unauthorized("Authentication required.")
	}
	for _, r := range roles {
		if c.Role == r {
			return nil
		}
	}
	return apperror.Forbidden("You do not have permission to perform this action.")
}

// Outcome tells the client where to go next and what to show there.
type Outcome struct {
	Redirect string `json:"redirect"`
	Message  string `json:"message"`
}

type Options struct {
	ClinicName string
	Hasher     auth.Hasher
	Logger     *logrus.Logger
	Now        func() time.Time
}

type Clinic struct {
	store  Store
	files  Files
	events Publisher
	hasher auth.Hasher
	name   string
	log    *logrus.Logger
	now    func() time.Time
}

func New(store Store, files Files, events Publisher, opts Options) *Clinic {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ClinicName == "" {
		opts.ClinicName = "Clinic"
	}
	return &Clinic{
		store:  store,
		files:  files,
		events: events,
		hasher: opts.Hasher,
		name:   opts.ClinicName,
		log:    opts.Logger,
		now:    opts.Now,
	}
}

// lookupErr maps a store read failure onto the error taxonomy.
func lookupErr(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(resource, err)
	}
	return apperror.Internal("load "+resource, err)
}

// discard removes an object whose row was never written.
func (s *Clinic) discard(ctx context.Context, key string) {
	if err := s.files.Delete(ctx, key); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("remove orphaned image")
	}
}

func (s *Clinic) imageURL(key *string) string {
	if key == nil || *key == "" || s.files == nil {
		return ""
	}
	return s.files.URL(*key)
}

func (s *Clinic) decorateUser(u *ds.User) {
	u.ImageURL = s.imageURL(u.ImageKey)
}

func (s *Clinic) decorateAppointment(a *ds.Appointment) {
	a.ImageURL = s.imageURL(a.ImageKey)
	s.decorateUser(&a.Patient)
	s.decorateUser(&a.Doctor)
}

func (s *Clinic) decorateAppointments(list []ds.Appointment) {
	for i := range list {
		s.decorateAppointment(&list[i])
	}
}
