package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Nirajxs/Hospital-management-system/internal/app/config"
	"github.com/Nirajxs/Hospital-management-system/internal/app/ds"
	"github.com/Nirajxs/Hospital-management-system/internal/app/notify"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/auth"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/storage"
	"github.com/Nirajxs/Hospital-management-system/internal/app/repository"
	"github.com/Nirajxs/Hospital-management-system/internal/app/repository/repositorytest"
	"github.com/Nirajxs/Hospital-management-system/internal/app/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memorySessions struct {
	mu   sync.Mutex
	data map[string]auth.SessionData
}

func (m *memorySessions) Create(_ context.Context, id string, d auth.SessionData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = d
	return nil
}

func (m *memorySessions) Get(_ context.Context, id string) (*auth.SessionData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (m *memorySessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *memorySessions) Extend(context.Context, string) error { return nil }

func (m *memorySessions) TTL() time.Duration { return time.Hour }

type memoryFiles struct{}

func (memoryFiles) Put(_ context.Context, prefix string, obj storage.Object) (string, error) {
	return prefix + "/" + obj.Filename, nil
}

func (memoryFiles) URL(key string) string { return "http://files.test/" + key }

func (memoryFiles) Delete(context.Context, string) error { return nil }

type server struct {
	router   *gin.Engine
	handler  *Handler
	repo     *repository.Repository
	jwt      *auth.JWTService
	sessions *memorySessions
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()

	repo := repositorytest.New(t)
	clinic := service.New(repo, memoryFiles{}, notify.NewDispatcher(notify.DispatcherConfig{}, logger), service.Options{
		ClinicName: "Test Clinic",
		Hasher:     auth.NewHasher(bcrypt.MinCost),
		Logger:     logger,
	})
	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	sessions := &memorySessions{data: map[string]auth.SessionData{}}

	h := NewHandler(clinic, jwtSvc, sessions, &config.Config{MaxUploadMB: 1}, logger)
	router := gin.New()
	h.RegisterHandler(router)

	return &server{router: router, handler: h, repo: repo, jwt: jwtSvc, sessions: sessions}
}

func (s *server) token(t *testing.T, u *ds.User) string {
	t.Helper()
	token, err := s.jwt.Generate(u)
	require.NoError(t, err)
	return token
}

func (s *server) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *server) multipart(t *testing.T, path, token string, fields map[string]string, fileName, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="image"; filename="`+fileName+`"`)
		hdr.Set("Content-Type", contentType)
		part, err := w.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG\r\n"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status      string          `json:"status"`
	Data        json.RawMessage `json:"data"`
	Message     string          `json:"message"`
	Redirect    string          `json:"redirect"`
	Code        string          `json:"code"`
	Description string          `json:"description"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	s.handler.Checks["redis"] = func(context.Context) error { return errors.New("down") }
	rec = s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"down"`)
}

func TestRegisterPatientSignsIn(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodPost, "/api/users/register", "", gin.H{
		"username": "alice", "email": "alice@example.com",
		"password": "wonderland", "password_confirm": "wonderland", "role": "PATIENT",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	env := decode(t, rec)
	assert.Equal(t, "/dashboard", env.Redirect)
	assert.Equal(t, "Registration successful. You are logged in as patient.", env.Message)
	assert.Contains(t, string(env.Data), `"token"`)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), auth.SessionCookie+"=")
	assert.Len(t, s.sessions.data, 1)
}

func TestRegisterDoctorAwaitsApproval(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodPost, "/api/users/register", "", gin.H{
		"username": "drbob", "email": "bob@example.com",
		"password": "stethoscope", "password_confirm": "stethoscope", "role": "doctor",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	env := decode(t, rec)
	assert.Equal(t, "/login", env.Redirect)
	assert.Equal(t, "Registration received. Admin approval required before you can login.", env.Message)
	assert.NotContains(t, string(env.Data), `"token"`)
	assert.Empty(t, rec.Header().Get("Set-Cookie"))

	rec = s.do(t, http.MethodPost, "/api/users/login", "", gin.H{"username": "drbob", "password": "stethoscope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodPost, "/api/users/register", "", gin.H{
		"username": "mallory", "email": "m@example.com",
		"password": "wonderland", "password_confirm": "wonderland", "role": "ADMIN",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
	assert.Equal(t, "Select a valid role.", env.Description)
}

func TestLoginAndSessionCookie(t *testing.T) {
	s := newServer(t)
	repositorytest.User(t, s.repo, "alice", ds.RolePatient, true)

	rec := s.do(t, http.MethodPost, "/api/users/login", "", gin.H{"username": "alice", "password": repositorytest.Password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.AddCookie(cookies[0])
	profile := httptest.NewRecorder()
	s.router.ServeHTTP(profile, req)
	assert.Equal(t, http.StatusOK, profile.Code)
	assert.Contains(t, profile.Body.String(), `"username":"alice"`)

	req = httptest.NewRequest(http.MethodPost, "/api/users/logout", nil)
	req.AddCookie(cookies[0])
	logout := httptest.NewRecorder()
	s.router.ServeHTTP(logout, req)
	assert.Equal(t, http.StatusOK, logout.Code)
	assert.Empty(t, s.sessions.data)
}

func TestDeactivatedAccountIsSignedOut(t *testing.T) {
	s := newServer(t)
	repositorytest.User(t, s.repo, "drbob", ds.RoleDoctor, true)

	rec := s.do(t, http.MethodPost, "/api/users/login", "", gin.H{"username": "drbob", "password": repositorytest.Password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &login))

	n, err := s.repo.SetUserActive(context.Background(), "drbob", false)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.AddCookie(cookies[0])
	byCookie := httptest.NewRecorder()
	s.router.ServeHTTP(byCookie, req)
	assert.Equal(t, http.StatusUnauthorized, byCookie.Code)

	rec = s.do(t, http.MethodGet, "/api/notifications", login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "/login", decode(t, rec).Redirect)
}

func TestRoleGates(t *testing.T) {
	s := newServer(t)
	bob := repositorytest.User(t, s.repo, "drbob", ds.RoleDoctor, true)
	alice := repositorytest.User(t, s.repo, "alice", ds.RolePatient, true)

	rec := s.do(t, http.MethodPost, "/api/appointments", "", gin.H{"doctor_id": bob.ID})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/appointments", s.token(t, bob), gin.H{"doctor_id": bob.ID})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/appointments/1/status", s.token(t, alice), gin.H{"status": "ACCEPTED"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/notifications", s.token(t, alice), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBookingPaymentDashboardFlow(t *testing.T) {
	s := newServer(t)
	bob := repositorytest.User(t, s.repo, "drbob", ds.RoleDoctor, true)
	alice := repositorytest.User(t, s.repo, "alice", ds.RolePatient, true)
	patient, doctor := s.token(t, alice), s.token(t, bob)

	rec := s.do(t, http.MethodPost, "/api/appointments", patient, gin.H{
		"doctor_id": bob.ID, "date": "2024-06-01", "time": "10:00",
		"patient_name": "Alice", "contact_number": "5551234567",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env := decode(t, rec)
	var booked ds.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &booked))
	assert.Equal(t, ds.PaymentPending, booked.PaymentStatus)
	assert.Equal(t, service.PaymentPath(booked.ID), env.Redirect)

	rec = s.do(t, http.MethodGet, "/api/appointments/1/payment", patient, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Net Banking"`)

	rec = s.do(t, http.MethodPost, "/api/appointments/1/payment", patient, gin.H{"payment_method": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env = decode(t, rec)
	assert.Equal(t, "Please select a payment method.", env.Description)
	assert.Equal(t, "/appointments/1/payment", env.Redirect)

	rec = s.do(t, http.MethodPost, "/api/appointments/1/payment", patient, gin.H{"payment_method": "upi"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env = decode(t, rec)
	var paid ds.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &paid))
	assert.Equal(t, ds.PaymentSuccess, paid.PaymentStatus)
	assert.Equal(t, ds.PaymentUPI, *paid.PaymentMethod)
	assert.Equal(t, ds.StatusPending, paid.Status)
	assert.Equal(t, "/dashboard", env.Redirect)

	rec = s.do(t, http.MethodPost, "/api/appointments/1/payment", patient, gin.H{"payment_method": "card"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/notifications", doctor, nil)
	assert.JSONEq(t, `{"status":"ok","data":{"new_count":1}}`, rec.Body.String())

	var dash service.Dashboard
	rec = s.do(t, http.MethodGet, "/api/dashboard", doctor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &dash))
	assert.Equal(t, 1, dash.NewCount)

	dash = service.Dashboard{}
	rec = s.do(t, http.MethodGet, "/api/dashboard", doctor, nil)
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &dash))
	assert.Equal(t, 0, dash.NewCount)
	assert.Len(t, dash.Appointments, 1)

	rec = s.do(t, http.MethodPut, "/api/appointments/1/status", doctor, gin.H{"status": "in progress"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"IN_PROGRESS"`)

	rec = s.do(t, http.MethodGet, "/api/appointments/1/receipt", patient, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "receipt-1.pdf")
}

func TestBookRejectsBadTime(t *testing.T) {
	s := newServer(t)
	bob := repositorytest.User(t, s.repo, "drbob", ds.RoleDoctor, true)
	alice := repositorytest.User(t, s.repo, "alice", ds.RolePatient, true)

	rec := s.do(t, http.MethodPost, "/api/appointments", s.token(t, alice), gin.H{
		"doctor_id": bob.ID, "date": "2024-06-01", "time": "noon",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Enter a valid time.", decode(t, rec).Description)
}

func TestBookAcceptsTimeWithSeconds(t *testing.T) {
	s := newServer(t)
	bob := repositorytest.User(t, s.repo, "drbob", ds.RoleDoctor, true)
	alice := repositorytest.User(t, s.repo, "alice", ds.RolePatient, true)

	rec := s.do(t, http.MethodPost, "/api/appointments", s.token(t, alice), gin.H{
		"doctor_id": bob.ID, "date": "2024-06-01", "time": "10:00:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"time":"10:00"`)
}

func TestRatingAcceptsFormAndJSON(t *testing.T) {
	s := newServer(t)
	bob := repositorytest.User(t, s.repo, "drbob", ds.RoleDoctor, true)
	alice := repositorytest.User(t, s.repo, "alice", ds.RolePatient, true)
	token := s.token(t, alice)

	req := httptest.NewRequest(http.MethodPost, "/api/doctors/1/rating", strings.NewReader("stars=4&review=good"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Thank you! Your rating has been submitted.", decode(t, rec).Message)

	rec = s.do(t, http.MethodPost, "/api/doctors/1/rating", token, gin.H{"stars": 2, "review": "actually bad"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decode(t, rec)
	assert.Equal(t, "Your rating has been updated.", env.Message)
	assert.Equal(t, "/", env.Redirect)

	rec = s.do(t, http.MethodGet, "/api/doctors", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var doctors []ds.DoctorSummary
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &doctors))
	require.Len(t, doctors, 1)
	assert.Equal(t, bob.ID, doctors[0].ID)
	assert.EqualValues(t, 1, doctors[0].TotalReviews)
	assert.InDelta(t, 2.0, *doctors[0].AvgRating, 0.001)

	rec = s.do(t, http.MethodGet, "/api/doctors/1/rating", token, nil)
	assert.Contains(t, rec.Body.String(), `"stars":2`)
}

func TestGalleryUpload(t *testing.T) {
	s := newServer(t)
	staff := repositorytest.User(t, s.repo, "nina", ds.RoleStaff, true)
	alice := repositorytest.User(t, s.repo, "alice", ds.RolePatient, true)

	rec := s.multipart(t, "/api/gallery", s.token(t, staff), map[string]string{"caption": "Lobby"}, "lobby.png", "image/png")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env := decode(t, rec)
	assert.Equal(t, "/gallery", env.Redirect)
	assert.Equal(t, "Image uploaded to gallery.", env.Message)

	rec = s.multipart(t, "/api/gallery", s.token(t, staff), map[string]string{"caption": "Notes"}, "notes.txt", "text/plain")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.multipart(t, "/api/gallery", s.token(t, alice), nil, "mine.png", "image/png")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/gallery", s.token(t, alice), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"image_url":"http://files.test/gallery/lobby.png"`)
}

func TestAcknowledgeEndpoint(t *testing.T) {
	s := newServer(t)
	bob := repositorytest.User(t, s.repo, "drbob", ds.RoleDoctor, true)
	alice := repositorytest.User(t, s.repo, "alice", ds.RolePatient, true)
	day := repositorytest.Day(t, "2024-06-01")
	first := repositorytest.Appointment(t, s.repo, alice, bob, day, "09:00")
	repositorytest.Appointment(t, s.repo, alice, bob, day, "10:00")
	doctor := s.token(t, bob)

	rec := s.do(t, http.MethodPost, "/api/notifications/ack", doctor, gin.H{"ids": []uint{first.ID}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"status":"ok","data":{"acknowledged":1}}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/notifications/ack", doctor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"acknowledged":1`)
	assert.Contains(t, rec.Body.String(), `"redirect":"/dashboard"`)
}

func TestUnknownAppointmentIsNotFound(t *testing.T) {
	s := newServer(t)
	alice := repositorytest.User(t, s.repo, "alice", ds.RolePatient, true)

	rec := s.do(t, http.MethodGet, "/api/appointments/abc/payment", s.token(t, alice), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/appointments/42/confirm", s.token(t, alice), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, rec).Code)
}
