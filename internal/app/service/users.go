package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Nirajxs/Hospital-management-system/internal/app/ds"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/apperror"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/storage"
	"github.com/Nirajxs/Hospital-management-system/internal/app/repository"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	minPasswordLen = 8
	maxUsernameLen = 150
)

var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}@.+\-_]+$`)
	allDigits       = regexp.MustCompile(`^[0-9]+$`)
	validate        = validator.New()
)

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
	Role            string
	FirstName       string
	LastName        string
}

func (in RegisterInput) check() (ds.Role, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" || in.PasswordConfirm == "" || strings.TrimSpace(in.Role) == "" {
		return "", apperror.Validation("All fields are required.")
	}
	if utf8.RuneCountInString(in.Username) > maxUsernameLen || !usernamePattern.MatchString(in.Username) {
		return "", apperror.Validation("Enter a valid username. It may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	if err := validate.Var(in.Email, "required,email,max=254"); err != nil {
		return "", apperror.Validation("Enter a valid email address.")
	}
	role, ok := ds.ParseRole(in.Role)
	if !ok {
		return "", apperror.Validation("Select a valid role.")
	}
	if in.Password != in.PasswordConfirm {
		return "", apperror.Validation("The two password fields didn't match.")
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLen {
		return "", apperror.Validation("This password is too short. It must contain at least 8 characters.")
	}
	if allDigits.MatchString(in.Password) {
		return "", apperror.Validation("This password is entirely numeric.")
	}
	return role, nil
}

// Register creates an account. Patients are active at once; doctors and staff wait
// for an administrator. Pending approval is an outcome, not an error.
func (s *Clinic) Register(ctx context.Context, in RegisterInput) (*ds.User, Outcome, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	role, err := in.check()
	if err != nil {
		return nil, Outcome{}, err
	}

	if _, err := s.store.GetUserByUsername(ctx, in.Username); err == nil {
		return nil, Outcome{}, apperror.Validation("A user with that username already exists.")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Outcome{}, apperror.Internal("check username", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, Outcome{}, apperror.Internal("hash password", err)
	}

	u := &ds.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Password:  hash,
		Role:      role,
		IsActive:  !role.RequiresApproval(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, Outcome{}, apperror.Validation("A user with that username or email already exists.")
		}
		return nil, Outcome{}, apperror.Internal("create user", err)
	}

	s.log.WithField("username", u.Username).WithField("role", u.Role).Info("user registered")

	if u.IsActive {
		return u, Outcome{
			Redirect: "/dashboard",
			Message:  "Registration successful. You are logged in as " + strings.ToLower(u.Role.Label()) + ".",
		}, nil
	}
	return u, Outcome{
		Redirect: "/login",
		Message:  "Registration received. Admin approval required before you can login.",
	}, nil
}

// Login checks credentials. Unknown users, inactive users and wrong passwords get
// the same answer.
func (s *Clinic) Login(ctx context.Context, username, password string) (*ds.User, error) {
	invalid := apperror.Unauthorized("Please enter a correct username and password.")

	u, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, apperror.Internal("load user", err)
	}
	if err := s.hasher.Check(u.Password, password); err != nil {
		return nil, invalid
	}
	if !u.IsActive {
		return nil, invalid
	}
	s.decorateUser(u)
	return u, nil
}

// ActiveUser reloads the account behind a token or session. Missing and inactive
// accounts are unauthorized, so blocking a user ends the sessions already issued.
func (s *Clinic) ActiveUser(ctx context.Context, userID uint) (*ds.User, error) {
	u, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Unauthorized("Authentication required.")
	}
	if err != nil {
		return nil, apperror.Internal("load user", err)
	}
	if !u.IsActive {
		return nil, apperror.Unauthorized("Authentication required.")
	}
	return u, nil
}

func (s *Clinic) Profile(ctx context.Context, caller Caller) (*ds.User, error) {
	if err := caller.require(allRoles...); err != nil {
		return nil, err
	}
	u, err := s.store.GetUserByID(ctx, caller.UserID)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	s.decorateUser(u)
	return u, nil
}

// ProfileInput changes only the fields that are set.
type ProfileInput struct {
	FirstName *string
	LastName  *string
	Email     *string

	Speciality    *string
	Qualification *string
	WorkFrom      *string
	About         *string
	Experience    *int
}

func (in ProfileInput) touchesDoctorProfile() bool {
	return in.Speciality != nil || in.Qualification != nil || in.WorkFrom != nil || in.About != nil || in.Experience != nil
}

func (s *Clinic) UpdateProfile(ctx context.Context, caller Caller, in ProfileInput) (*ds.User, Outcome, error) {
	if err := caller.require(allRoles...); err != nil {
		return nil, Outcome{}, err
	}
	if in.touchesDoctorProfile() && caller.Role != ds.RoleDoctor {
		return nil, Outcome{}, apperror.Forbidden("Only doctors have a professional profile.")
	}

	fields := map[string]interface{}{}
	if in.FirstName != nil {
		fields["first_name"] = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		fields["last_name"] = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if err := validate.Var(email, "required,email,max=254"); err != nil {
			return nil, Outcome{}, apperror.Validation("Enter a valid email address.")
		}
		fields["email"] = email
	}
	if in.Speciality != nil {
		fields["speciality"] = strings.TrimSpace(*in.Speciality)
	}
	if in.Qualification != nil {
		fields["qualification"] = strings.TrimSpace(*in.Qualification)
	}
	if in.WorkFrom != nil {
		fields["work_from"] = strings.TrimSpace(*in.WorkFrom)
	}
	if in.About != nil {
		fields["about"] = strings.TrimSpace(*in.About)
	}
	if in.Experience != nil {
		if *in.Experience < 0 {
			return nil, Outcome{}, apperror.Validation("Experience cannot be negative.")
		}
		fields["experience"] = *in.Experience
	}

	if len(fields) > 0 {
		if err := s.store.UpdateUser(ctx, caller.UserID, fields); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, Outcome{}, apperror.Validation("A user with that email already exists.")
			}
			return nil, Outcome{}, apperror.Internal("update profile", err)
		}
	}

	u, err := s.Profile(ctx, caller)
	if err != nil {
		return nil, Outcome{}, err
	}
	return u, Outcome{Redirect: "/profile", Message: "Profile updated."}, nil
}

func (s *Clinic) UploadDoctorImage(ctx context.Context, caller Caller, image *storage.Object) (*ds.User, Outcome, error) {
	if err := caller.require(ds.RoleDoctor); err != nil {
		return nil, Outcome{}, err
	}
	if image == nil || !image.IsImage() {
		return nil, Outcome{}, apperror.Validation("Upload a valid image.")
	}

	key, err := s.files.Put(ctx, storage.PrefixDoctors, *image)
	if err != nil {
		return nil, Outcome{}, apperror.Internal("store image", err)
	}
	if err := s.store.UpdateUser(ctx, caller.UserID, map[string]interface{}{"image_key": key}); err != nil {
		s.discard(ctx, key)
		return nil, Outcome{}, apperror.Internal("update profile image", err)
	}

	u, err := s.Profile(ctx, caller)
	if err != nil {
		return nil, Outcome{}, err
	}
	return u, Outcome{Redirect: "/profile", Message: "Profile image updated."}, nil
}

// ListDoctors is public: active doctors with their current rating aggregate.
func (s *Clinic) ListDoctors(ctx context.Context) ([]ds.DoctorSummary, error) {
	doctors, err := s.store.ListDoctors(ctx)
	if err != nil {
		return nil, apperror.Internal("list doctors", err)
	}
	for i := range doctors {
		s.decorateUser(&doctors[i].User)
	}
	return doctors, nil
}
