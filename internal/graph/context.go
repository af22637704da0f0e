package graph

import (
	"context"
	"net/http"

	"github.com/filmoteka/movie_catalog/internal/authz"
	authmw "github.com/filmoteka/movie_catalog/internal/middleware/auth"
	"github.com/filmoteka/movie_catalog/internal/models"
	"github.com/filmoteka/movie_catalog/internal/service/token"
)

type viewerKey struct{}

// Viewer is the per-request authentication state available to every
// resolver. Resolvers check permissions themselves; an anonymous
// request still executes public mutations like login.
type Viewer struct {
	IsAuthenticated bool
	User            *models.User
	Permissions     []string
}

func WithViewer(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, viewerKey{}, v)
}

func ViewerFrom(ctx context.Context) Viewer {
	if v, ok := ctx.Value(viewerKey{}).(Viewer); ok {
		return v
	}
	return Viewer{}
}

// BuildViewer resolves the bearer token through the same routine the
// REST middleware uses. Any failure yields an anonymous viewer rather
// than an error.
func BuildViewer(r *http.Request, tokens *token.Service, perms *authz.Permissions) Viewer {
	raw, ok := authmw.BearerToken(r)
	if !ok {
		return Viewer{}
	}

	user, err := tokens.Authenticate(raw)
	if err != nil {
		return Viewer{}
	}

	return Viewer{
		IsAuthenticated: true,
		User:            &user,
		Permissions:     perms.For(user.Role),
	}
}
