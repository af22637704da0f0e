package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/filmoteka/movie_catalog/internal/apperr"
	authmw "github.com/filmoteka/movie_catalog/internal/middleware/auth"
	"github.com/filmoteka/movie_catalog/internal/mykafka"
	"github.com/filmoteka/movie_catalog/internal/service/token"
	"github.com/filmoteka/movie_catalog/internal/service/user"
)

type AuthHandler struct {
	Users    *user.Service
	Tokens   *token.Service
	Producer *mykafka.Producer
}

func (h *AuthHandler) Register(c echo.Context) error {
	var in user.RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	u, access, refresh, err := h.Users.Register(in)
	if err != nil {
		return httpError(err)
	}

	publishEvent(c, h.Producer, "user_events", fmt.Sprint(u.ID), map[string]interface{}{
		"type":   "user_registered",
		"userID": u.ID,
		"email":  u.Email,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"user":         u,
		"accessToken":  access,
		"refreshToken": refresh,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	u, access, refresh, err := h.Users.Login(in.Email, in.Password)
	if err != nil {
		return httpError(err)
	}

	publishEvent(c, h.Producer, "user_events", fmt.Sprint(u.ID), map[string]interface{}{
		"type":   "user_logged_in",
		"userID": u.ID,
		"email":  u.Email,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"user":         u,
		"accessToken":  access,
		"refreshToken": refresh,
	})
}

// RefreshToken rotates a refresh token presented as a bearer header
// into a fresh access token.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	raw, ok := authmw.BearerToken(c.Request())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token required")
	}

	access, u, err := h.Tokens.Rotate(raw)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"accessToken": access,
		"user":        u,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	id, ok := authmw.CurrentIdentity(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, apperr.ErrUnauthenticated.Message)
	}

	if err := h.Users.Logout(id.User.ID); err != nil {
		return httpError(err)
	}

	publishEvent(c, h.Producer, "user_events", fmt.Sprint(id.User.ID), map[string]interface{}{
		"type":   "user_logged_out",
		"userID": id.User.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHandler) GetProfile(c echo.Context) error {
	id, ok := authmw.CurrentIdentity(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, apperr.ErrUnauthenticated.Message)
	}

	u, err := h.Users.GetProfile(id.User.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	id, ok := authmw.CurrentIdentity(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, apperr.ErrUnauthenticated.Message)
	}

	var in user.ProfileUpdate
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	u, err := h.Users.UpdateProfile(id.User.ID, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, u)
}
