package handler

import (
	"net/http"

	"github.com/Nirajxs/Hospital-management-system/internal/app/ds"
	"github.com/Nirajxs/Hospital-management-system/internal/app/middleware"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/apperror"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/auth"
	"github.com/Nirajxs/Hospital-management-system/internal/app/service"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username        string `json:"username" form:"username"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm"`
	Role            string `json:"role" form:"role" binding:"omitempty,clinic_role"`
	FirstName       string `json:"first_name" form:"first_name"`
	LastName        string `json:"last_name" form:"last_name"`
}

// ApiRegisterUser registers a patient, doctor or staff account
// @Summary Register
// @Tags auth
// @Accept json,mpfd
// @Produce json
// @Param request body registerRequest true "Account data"
// @Success 201 {object} object{status=string,data=object,message=string,redirect=string}
// @Failure 400 {object} object{status=string,code=string,description=string}
// @Router /api/users/register [post]
func (h *Handler) ApiRegisterUser(ctx *gin.Context) {
	var body registerRequest
	if err := bind(ctx, &body); err != nil {
		h.errorHandler(ctx, err)
		return
	}

	user, out, err := h.Clinic.Register(ctx.Request.Context(), service.RegisterInput{
		Username:        body.Username,
		Email:           body.Email,
		Password:        body.Password,
		PasswordConfirm: body.PasswordConfirm,
		Role:            body.Role,
		FirstName:       body.FirstName,
		LastName:        body.LastName,
	})
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}

	data := gin.H{"user": user}
	// patients are signed in right away, the others wait for approval
	if user.IsActive {
		token, sessionID, err := h.startSession(ctx, user)
		if err != nil {
			h.errorHandler(ctx, err)
			return
		}
		data["token"] = token
		data["session_id"] = sessionID
	}
	jsonResponse(ctx, http.StatusCreated, data, &out)
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// ApiLogin signs a user in
// @Summary Login
// @Tags auth
// @Accept json,mpfd
// @Produce json
// @Param request body loginRequest true "Credentials"
// @Success 200 {object} object{status=string,data=object{user=ds.User,token=string,session_id=string}}
// @Failure 401 {object} object{status=string,code=string,description=string}
// @Router /api/users/login [post]
func (h *Handler) ApiLogin(ctx *gin.Context) {
	var body loginRequest
	if err := bind(ctx, &body); err != nil {
		h.errorHandler(ctx, err)
		return
	}

	user, err := h.Clinic.Login(ctx.Request.Context(), body.Username, body.Password)
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}

	token, sessionID, err := h.startSession(ctx, user)
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	jsonResponse(ctx, http.StatusOK, gin.H{
		"user":       user,
		"token":      token,
		"session_id": sessionID,
	}, &service.Outcome{Redirect: "/dashboard", Message: "Welcome back, " + user.FullName() + "."})
}

// ApiLogout ends the session
// @Summary Logout
// @Tags auth
// @Produce json
// @Success 200 {object} object{status=string}
// @Router /api/users/logout [post]
func (h *Handler) ApiLogout(ctx *gin.Context) {
	if sessionID, err := ctx.Cookie(auth.SessionCookie); err == nil && sessionID != "" && h.Sessions != nil {
		if err := h.Sessions.Delete(ctx.Request.Context(), sessionID); err != nil {
			h.Log.WithError(err).Warn("delete session")
		}
	}
	h.setSessionCookie(ctx, "", -1)
	jsonResponse(ctx, http.StatusOK, nil, &service.Outcome{Redirect: "/login", Message: "You have been logged out."})
}

// ApiGetProfile returns the current user
// @Summary Profile
// @Tags users
// @Produce json
// @Success 200 {object} object{status=string,data=ds.User}
// @Router /api/users/profile [get]
func (h *Handler) ApiGetProfile(ctx *gin.Context) {
	user, err := h.Clinic.Profile(ctx.Request.Context(), middleware.CurrentCaller(ctx))
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	jsonResponse(ctx, http.StatusOK, user, nil)
}

type profileRequest struct {
	FirstName     *string `json:"first_name" form:"first_name"`
	LastName      *string `json:"last_name" form:"last_name"`
	Email         *string `json:"email" form:"email"`
	Speciality    *string `json:"speciality" form:"speciality"`
	Qualification *string `json:"qualification" form:"qualification"`
	WorkFrom      *string `json:"work_from" form:"work_from"`
	About         *string `json:"about" form:"about"`
	Experience    *int    `json:"experience" form:"experience" binding:"omitempty,min=0,max=80"`
}

// ApiUpdateProfile changes names, e-mail and, for doctors, the professional profile
// @Summary Update profile
// @Tags users
// @Accept json,mpfd
// @Produce json
// @Param request body profileRequest true "Fields to change"
// @Success 200 {object} object{status=string,data=ds.User,message=string,redirect=string}
// @Router /api/users/profile [put]
func (h *Handler) ApiUpdateProfile(ctx *gin.Context) {
	var body profileRequest
	if err := bind(ctx, &body); err != nil {
		h.errorHandler(ctx, err)
		return
	}

	user, out, err := h.Clinic.UpdateProfile(ctx.Request.Context(), middleware.CurrentCaller(ctx), service.ProfileInput{
		FirstName:     body.FirstName,
		LastName:      body.LastName,
		Email:         body.Email,
		Speciality:    body.Speciality,
		Qualification: body.Qualification,
		WorkFrom:      body.WorkFrom,
		About:         body.About,
		Experience:    body.Experience,
	})
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	jsonResponse(ctx, http.StatusOK, user, &out)
}

// ApiUploadDoctorImage replaces the doctor's profile picture
// @Summary Doctor image
// @Tags users
// @Accept mpfd
// @Produce json
// @Param image formData file true "Image"
// @Success 200 {object} object{status=string,data=ds.User}
// @Router /api/users/profile/image [post]
func (h *Handler) ApiUploadDoctorImage(ctx *gin.Context) {
	image, done, err := readUpload(ctx, "image")
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	defer done()

	user, out, err := h.Clinic.UploadDoctorImage(ctx.Request.Context(), middleware.CurrentCaller(ctx), image)
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	jsonResponse(ctx, http.StatusOK, user, &out)
}

// startSession issues a bearer token and a Redis session with its cookie.
func (h *Handler) startSession(ctx *gin.Context, user *ds.User) (string, string, error) {
	token, err := h.JWT.Generate(user)
	if err != nil {
		return "", "", apperror.Internal("issue token", err)
	}
	if h.Sessions == nil {
		return token, "", nil
	}

	sessionID := auth.NewSessionID()
	if err := h.Sessions.Create(ctx.Request.Context(), sessionID, auth.SessionData{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}); err != nil {
		return "", "", apperror.Internal("create session", err)
	}
	h.setSessionCookie(ctx, sessionID, int(h.Sessions.TTL().Seconds()))
	return token, sessionID, nil
}

func (h *Handler) setSessionCookie(ctx *gin.Context, value string, maxAge int) {
	secure, domain := false, ""
	if h.Config != nil {
		secure, domain = h.Config.Cookie.Secure, h.Config.Cookie.Domain
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(auth.SessionCookie, value, maxAge, "/", domain, secure, true)
}
