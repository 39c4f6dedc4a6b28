package auth

import (
	"testing"
	"time"

	"github.com/Nirajxs/Hospital-management-system/internal/app/ds"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	token, err := svc.Generate(&ds.User{ID: 7, Username: "drbob", Role: ds.RoleDoctor})
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims.UserID)
	assert.Equal(t, "drbob", claims.Username)
	assert.Equal(t, ds.RoleDoctor, claims.Role)
}

func TestJWTRejectsOtherSecret(t *testing.T) {
	token, err := NewJWTService("one", time.Hour).Generate(&ds.User{ID: 1, Username: "a", Role: ds.RolePatient})
	require.NoError(t, err)

	_, err = NewJWTService("two", time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestJWTRejectsUnknownRole(t *testing.T) {
	claims := JWTClaims{
		UserID:   1,
		Username: "root",
		Role:     ds.Role("ADMIN"),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTService("secret", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTRejectsExpired(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	svc.ttl = -time.Minute
	token, err := svc.Generate(&ds.User{ID: 1, Username: "a", Role: ds.RolePatient})
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestHasher(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	hash, err := h.Hash("correct horse")
	require.NoError(t, err)

	assert.NoError(t, h.Check(hash, "correct horse"))
	assert.ErrorIs(t, h.Check(hash, "wrong"), ErrPasswordMismatch)
}

func TestNewHasherFallsBackToDefaultCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).cost)
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "session:abc", sessionKey("abc"))
	assert.NotEqual(t, NewSessionID(), NewSessionID())
}
