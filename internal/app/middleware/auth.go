package middleware

import (
	"context"
	"strings"

	"github.com/Nirajxs/Hospital-management-system/internal/app/ds"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/apperror"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/auth"
	"github.com/Nirajxs/Hospital-management-system/internal/app/service"

	"github.com/gin-gonic/gin"
)

const (
	UserIDKey   = "user_id"
	UsernameKey = "username"
	RoleKey     = "role"
)

// TokenValidator is satisfied by *auth.JWTService.
type TokenValidator interface {
	Validate(token string) (*auth.JWTClaims, error)
}

// SessionStore is satisfied by *auth.SessionService.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*auth.SessionData, error)
	Extend(ctx context.Context, sessionID string) error
}

// AccountChecker reloads the account behind a token or session, so blocked users lose
// access at once. *service.Clinic implements it.
type AccountChecker interface {
	ActiveUser(ctx context.Context, userID uint) (*ds.User, error)
}

// AuthService resolves a request to a user by bearer token or session cookie.
type AuthService struct {
	JWT      TokenValidator
	Session  SessionStore
	Accounts AccountChecker
}

var errNoIdentity = apperror.Unauthorized("Authentication required.").WithRedirect("/login")

// identify sets the caller on c. It returns errNoIdentity when the request carries no
// usable credentials or the account is no longer active.
func (a *AuthService) identify(c *gin.Context) error {
	var (
		userID    uint
		username  string
		role      ds.Role
		sessionID string
		found     bool
	)

	authHeader := c.GetHeader("Authorization")
	if a.JWT != nil && strings.HasPrefix(authHeader, "Bearer ") {
		claims, err := a.JWT.Validate(strings.TrimPrefix(authHeader, "Bearer "))
		if err == nil {
			userID, username, role, found = claims.UserID, claims.Username, claims.Role, true
		}
	}

	if !found && a.Session != nil {
		if id, err := c.Cookie(auth.SessionCookie); err == nil && id != "" {
			data, err := a.Session.Get(c.Request.Context(), id)
			if err == nil && data != nil && data.Role.Valid() {
				userID, username, role, found = data.UserID, data.Username, data.Role, true
				sessionID = id
			}
		}
	}
	if !found {
		return errNoIdentity
	}

	if a.Accounts != nil {
		u, err := a.Accounts.ActiveUser(c.Request.Context(), userID)
		if err != nil {
			if apperror.Is(err, apperror.CodeUnauthorized) {
				return errNoIdentity
			}
			return err
		}
		username, role = u.Username, u.Role
	}

	setIdentity(c, userID, username, role)
	if sessionID != "" {
		// sliding expiry
		_ = a.Session.Extend(c.Request.Context(), sessionID)
	}
	return nil
}

func setIdentity(c *gin.Context, userID uint, username string, role ds.Role) {
	c.Set(UserIDKey, userID)
	c.Set(UsernameKey, username)
	c.Set(RoleKey, role)
}

// AuthMiddleware rejects requests without a valid token or session.
func AuthMiddleware(a *AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.identify(c); err != nil {
			Abort(c, apperror.From(err))
			return
		}
		c.Next()
	}
}

// RequireRole lets through only callers with one of the roles. It must run after
// AuthMiddleware.
func RequireRole(roles ...ds.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetCurrentRole(c)
		if !ok {
			Abort(c, apperror.Unauthorized("Authentication required.").WithRedirect("/login"))
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		Abort(c, apperror.Forbidden("You do not have permission to perform this action."))
	}
}

// Abort writes the error body and stops the chain.
func Abort(c *gin.Context, err *apperror.AppError) {
	body := gin.H{
		"status":      "error",
		"code":        err.Code,
		"description": err.Message,
	}
	if err.Redirect != "" {
		body["redirect"] = err.Redirect
	}
	c.AbortWithStatusJSON(err.Status, body)
}

func GetCurrentUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

func GetCurrentUsername(c *gin.Context) (string, bool) {
	username, exists := c.Get(UsernameKey)
	if !exists {
		return "", false
	}
	s, ok := username.(string)
	return s, ok
}

func GetCurrentRole(c *gin.Context) (ds.Role, bool) {
	role, exists := c.Get(RoleKey)
	if !exists {
		return "", false
	}
	r, ok := role.(ds.Role)
	return r, ok
}

// CurrentCaller is the service identity of the request; zero when anonymous.
func CurrentCaller(c *gin.Context) service.Caller {
	id, _ := GetCurrentUserID(c)
	role, _ := GetCurrentRole(c)
	return service.Caller{UserID: id, Role: role}
}
