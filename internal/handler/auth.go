package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinebook/booking-api/internal/utils"
)

// AuthHandler issues access tokens for the single administrative user.
// There is no user registry: credentials come from the environment and
// the token only gates the mutating endpoints, mirroring a
// reads-public / writes-authenticated API.
type AuthHandler struct {
	Username  string // expected admin login
	PassHash  string // bcrypt hash of the admin password
	JWTSecret string
	TTLMin    int
}

// Login handles POST /v1/auth/login. On valid credentials it returns a
// short-lived HS256 bearer token; otherwise 401. The bcrypt comparison
// runs even for an unknown username so both failure modes take the same
// time.
func (h *AuthHandler) Login(c echo.Context) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ok := utils.CheckPassword(h.PassHash, body.Password)
	if body.Username != h.Username || !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	tok, err := utils.NewAccessToken(h.JWTSecret, h.Username, h.TTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": tok.Token,
		"expires_at":   tok.Exp.Format(time.RFC3339),
	})
}
