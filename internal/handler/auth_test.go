package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/cinebook/booking-api/internal/utils"
)

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	hash, err := utils.HashPassword("s3cret", bcrypt.MinCost)
	assert.NoError(t, err)
	return &AuthHandler{
		Username:  "admin",
		PassHash:  hash,
		JWTSecret: "test-secret",
		TTLMin:    15,
	}
}

func TestLogin(t *testing.T) {
	h := newAuthHandler(t)

	c, rec := newJSONContext(http.MethodPost, "/v1/auth/login",
		`{"username":"admin","password":"s3cret"}`)
	assert.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresAt   string `json:"expires_at"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out.AccessToken)
	assert.NotEmpty(t, out.ExpiresAt)

	// The issued token verifies against the same secret and names the
	// admin as subject.
	tok, err := jwt.Parse(out.AccessToken, func(tk *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	assert.NoError(t, err)
	sub, err := tok.Claims.GetSubject()
	assert.NoError(t, err)
	assert.Equal(t, "admin", sub)
}

func TestLoginWrongPassword(t *testing.T) {
	h := newAuthHandler(t)

	c, rec := newJSONContext(http.MethodPost, "/v1/auth/login",
		`{"username":"admin","password":"nope"}`)
	assert.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUnknownUser(t *testing.T) {
	h := newAuthHandler(t)

	c, rec := newJSONContext(http.MethodPost, "/v1/auth/login",
		`{"username":"root","password":"s3cret"}`)
	assert.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
