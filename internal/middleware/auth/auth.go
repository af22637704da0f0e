package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/filmoteka/movie_catalog/internal/apperr"
	"github.com/filmoteka/movie_catalog/internal/authz"
	"github.com/filmoteka/movie_catalog/internal/models"
	"github.com/filmoteka/movie_catalog/internal/service/token"
)

const identityKey = "identity"

// Identity is the authenticated caller attached to the request
// context by RequireAuth.
type Identity struct {
	User        models.User
	Permissions []string
}

type Middleware struct {
	Tokens *token.Service
	Perms  *authz.Permissions
}

func NewMiddleware(tokens *token.Service, perms *authz.Permissions) *Middleware {
	return &Middleware{Tokens: tokens, Perms: perms}
}

// BearerToken extracts the token from an Authorization header. Both
// the REST middleware and the GraphQL context builder use it.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(echo.HeaderAuthorization)
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	raw := strings.TrimPrefix(header, "Bearer ")
	return raw, raw != ""
}

// RequireAuth rejects the request unless it carries a valid access
// token, and attaches the resolved identity for downstream handlers.
func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := BearerToken(c.Request())
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, apperr.ErrUnauthenticated.Message)
		}

		user, err := m.Tokens.Authenticate(raw)
		if err != nil {
			return echo.NewHTTPError(apperr.Status(err), apperr.Message(err))
		}

		c.Set(identityKey, Identity{
			User:        user,
			Permissions: m.Perms.For(user.Role),
		})
		return next(c)
	}
}

// RequirePermission gates a route on a single permission. It must run
// after RequireAuth.
func (m *Middleware) RequirePermission(required string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := CurrentIdentity(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, apperr.ErrUnauthenticated.Message)
			}
			if !authz.HasPermission(id.Permissions, required) {
				return echo.NewHTTPError(http.StatusForbidden, "permission required: "+required)
			}
			return next(c)
		}
	}
}

func CurrentIdentity(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	return id, ok
}
