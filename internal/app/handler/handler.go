package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Nirajxs/Hospital-management-system/internal/app/config"
	"github.com/Nirajxs/Hospital-management-system/internal/app/ds"
	"github.com/Nirajxs/Hospital-management-system/internal/app/middleware"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/apperror"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/auth"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/storage"
	"github.com/Nirajxs/Hospital-management-system/internal/app/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Sessions is the session store used for login and logout. *auth.SessionService
// implements it.
type Sessions interface {
	middleware.SessionStore
	Create(ctx context.Context, sessionID string, data auth.SessionData) error
	Delete(ctx context.Context, sessionID string) error
	TTL() time.Duration
}

type Handler struct {
	Clinic   *service.Clinic
	JWT      *auth.JWTService
	Sessions Sessions
	Config   *config.Config
	Log      *logrus.Logger

	// Checks run on /health; a failing check turns the answer into 503.
	Checks map[string]func(context.Context) error

	auth *middleware.AuthService
}

func NewHandler(clinic *service.Clinic, jwt *auth.JWTService, sessions Sessions, cfg *config.Config, log *logrus.Logger) *Handler {
	registerValidators()
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		Clinic:   clinic,
		JWT:      jwt,
		Sessions: sessions,
		Config:   cfg,
		Log:      log,
		Checks:   map[string]func(context.Context) error{},
		auth:     &middleware.AuthService{JWT: jwt, Session: sessions, Accounts: clinic},
	}
}

// RegisterHandler wires every route of the API.
func (h *Handler) RegisterHandler(router *gin.Engine) {
	router.MaxMultipartMemory = 8 << 20
	router.GET("/health", h.Health)

	api := router.Group("/api", h.limitBody())

	api.POST("/users/register", h.ApiRegisterUser)
	api.POST("/users/login", h.ApiLogin)
	api.GET("/doctors", h.ApiListDoctors)

	authed := api.Group("", middleware.AuthMiddleware(h.auth))
	authed.POST("/users/logout", h.ApiLogout)
	authed.GET("/users/profile", h.ApiGetProfile)
	authed.PUT("/users/profile", h.ApiUpdateProfile)
	authed.GET("/dashboard", h.ApiDashboard)
	authed.GET("/gallery", h.ApiListGallery)

	patient := authed.Group("", middleware.RequireRole(ds.RolePatient))
	patient.GET("/doctors/:id/rating", h.ApiGetMyRating)
	patient.POST("/doctors/:id/rating", h.ApiRateDoctor)
	patient.POST("/appointments", h.ApiBookAppointment)
	patient.GET("/appointments/:id/payment", h.ApiGetPayment)
	patient.POST("/appointments/:id/payment", h.ApiPay)
	patient.POST("/appointments/:id/confirm", h.ApiConfirmPayment)

	doctor := authed.Group("", middleware.RequireRole(ds.RoleDoctor))
	doctor.POST("/users/profile/image", h.ApiUploadDoctorImage)
	doctor.PUT("/appointments/:id/status", h.ApiUpdateStatus)
	doctor.GET("/notifications", h.ApiNotificationCount)
	doctor.POST("/notifications/ack", h.ApiAcknowledgeNotifications)

	authed.GET("/appointments/:id/receipt", middleware.RequireRole(ds.RolePatient, ds.RoleStaff), h.ApiReceipt)
	authed.POST("/gallery", middleware.RequireRole(ds.RoleDoctor, ds.RoleStaff), h.ApiUploadGallery)
}

// Health reports liveness and the state of the backing services.
func (h *Handler) Health(ctx *gin.Context) {
	status := http.StatusOK
	checks := gin.H{}
	for name, check := range h.Checks {
		if err := check(ctx.Request.Context()); err != nil {
			h.Log.WithError(err).WithField("check", name).Error("health check failed")
			checks[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "up"
	}
	state := "ok"
	if status != http.StatusOK {
		state = "error"
	}
	ctx.JSON(status, gin.H{"status": state, "checks": checks})
}

func (h *Handler) limitBody() gin.HandlerFunc {
	limit := int64(10) << 20
	if h.Config != nil && h.Config.MaxUploadMB > 0 {
		limit = int64(h.Config.MaxUploadMB) << 20
	}
	return func(ctx *gin.Context) {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, limit)
		ctx.Next()
	}
}

// errorHandler logs err and renders it with the status of its error class.
func (h *Handler) errorHandler(ctx *gin.Context, err error) {
	appErr := apperror.From(err)
	entry := h.Log.WithFields(logrus.Fields{
		"method": ctx.Request.Method,
		"path":   ctx.Request.URL.Path,
		"code":   appErr.Code,
	})
	if appErr.Status >= http.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
	} else {
		entry.Warn(err.Error())
	}
	middleware.Abort(ctx, appErr)
}

// jsonResponse writes the success envelope; out may be nil for plain reads.
func jsonResponse(ctx *gin.Context, status int, data interface{}, out *service.Outcome) {
	body := gin.H{
		"status": "ok",
		"data":   data,
	}
	if out != nil {
		body["message"] = out.Message
		body["redirect"] = out.Redirect
	}
	ctx.JSON(status, body)
}

func parseID(ctx *gin.Context, resource string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.NotFound(resource, err)
	}
	return uint(id), nil
}

// bind decodes JSON or form bodies and turns binding failures into validation errors.
func bind(ctx *gin.Context, dst interface{}) error {
	if err := ctx.ShouldBind(dst); err != nil {
		return bindError(err)
	}
	return nil
}

var tagMessages = map[string]string{
	"clinic_role": "Select a valid role.",
	"clinic_date": "Enter a valid date.",
	"clinic_time": "Enter a valid time.",
}

func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if msg, ok := tagMessages[fe.Tag()]; ok {
			return apperror.Validation(msg)
		}
		return apperror.Validation(fmt.Sprintf("Invalid value for %s.", strings.ToLower(fe.Field())))
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperror.Validation("The upload is too large.")
	}
	return apperror.Validation("Malformed request body.")
}

// readUpload returns the file in field, or nil when the request carries none. The
// caller must call the returned func once done with the object.
func readUpload(ctx *gin.Context, field string) (*storage.Object, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(ctx.ContentType(), "multipart/form-data") {
		return nil, noop, nil
	}
	fh, err := ctx.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, bindError(err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, apperror.Internal("open upload", err)
	}
	obj := &storage.Object{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}
	return obj, func() { _ = f.Close() }, nil
}

// flexString takes a JSON string or number, so {"stars": 4} and {"stars": "4"} both bind.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	*f = flexString(strings.TrimSpace(string(b)))
	return nil
}

var validatorsOnce sync.Once

// registerValidators adds the clinic tags to gin's validator engine.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("clinic_role", func(fl validator.FieldLevel) bool {
			_, ok := ds.ParseRole(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("clinic_date", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(service.DateLayout, strings.TrimSpace(fl.Field().String()))
			return err == nil
		})
		_ = v.RegisterValidation("clinic_time", func(fl validator.FieldLevel) bool {
			_, ok := service.ParseTime(fl.Field().String())
			return ok
		})
	})
}
