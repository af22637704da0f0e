package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/filmoteka/movie_catalog/internal/authz"
	"github.com/filmoteka/movie_catalog/internal/graph"
	"github.com/filmoteka/movie_catalog/internal/handlers"
	authmw "github.com/filmoteka/movie_catalog/internal/middleware/auth"
	"github.com/filmoteka/movie_catalog/internal/models"
	"github.com/filmoteka/movie_catalog/internal/service/catalog"
	"github.com/filmoteka/movie_catalog/internal/service/token"
	"github.com/filmoteka/movie_catalog/internal/service/user"
	"github.com/filmoteka/movie_catalog/internal/upload"
)

type serverEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB
}

func newServerEnv(t *testing.T) *serverEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.RefreshToken{}, &models.Movie{}, &models.Actor{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	uploads, err := upload.NewStore(t.TempDir())
	require.NoError(t, err)

	perms := authz.Defaults()
	tokens := token.NewService(db, []byte("access-secret"), []byte("refresh-secret"))
	users := user.NewService(db, tokens)
	cat := catalog.NewService(db)

	schema, err := graph.NewSchema(&graph.Resolver{
		Users:   users,
		Tokens:  tokens,
		Catalog: cat,
		Perms:   perms,
	})
	require.NoError(t, err)

	e := echo.New()
	Register(e, &Deps{
		Auth:         authmw.NewMiddleware(tokens, perms),
		AuthHandler:  &handlers.AuthHandler{Users: users, Tokens: tokens},
		MovieHandler: &handlers.MovieHandler{Catalog: cat, Uploads: uploads},
		ActorHandler: &handlers.ActorHandler{Catalog: cat},
		GraphQL:      &graph.Handler{Schema: schema, Tokens: tokens, Perms: perms},
		UploadDir:    uploads.Dir,
	})

	return &serverEnv{T: t, E: e, DB: db}
}

func (env *serverEnv) do(method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

// registerAs creates an account, optionally promotes it, and returns a
// live access token for it.
func (env *serverEnv) registerAs(email, role string) string {
	rec := env.do(http.MethodPost, "/auth/register", "", map[string]string{
		"email":     email,
		"password":  "password",
		"firstName": "Test",
		"lastName":  "User",
	})
	require.Equal(env.T, http.StatusCreated, rec.Code, rec.Body.String())

	if role != authz.RoleUser {
		require.NoError(env.T, env.DB.Model(&models.User{}).
			Where("email = ?", email).Update("role", role).Error)
	}

	// Tokens carry the role, log in again so the promotion shows up.
	recLogin := env.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": "password",
	})
	require.Equal(env.T, http.StatusOK, recLogin.Code, recLogin.Body.String())

	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(env.T, json.Unmarshal(recLogin.Body.Bytes(), &resp))
	return resp.AccessToken
}

func movieBody(title string) map[string]interface{} {
	return map[string]interface{}{
		"title":       title,
		"director":    "Sidney Lumet",
		"releaseYear": 1957,
		"genre":       "drama",
		"rating":      9.0,
		"rentalPrice": 2.5,
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newServerEnv(t)

	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/live", "", nil).Code)
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/ready", "", nil).Code)
}

func TestMoviesRequireAuthentication(t *testing.T) {
	env := newServerEnv(t)

	require.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/movies", "", nil).Code)

	rec := env.do(http.MethodPost, "/api/movies", "", movieBody("Denied"))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.Movie{}).Count(&count).Error)
	require.Zero(t, count, "rejected request must not create a record")
}

func TestMovieWriteRequiresPermission(t *testing.T) {
	env := newServerEnv(t)
	userToken := env.registerAs("user@x.com", authz.RoleUser)

	rec := env.do(http.MethodPost, "/api/movies", userToken, movieBody("Forbidden"))
	require.Equal(t, http.StatusForbidden, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.Movie{}).Count(&count).Error)
	require.Zero(t, count)

	// Reading stays open to the user role.
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/movies", userToken, nil).Code)
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/actors", userToken, nil).Code)
}

func TestAdminMovieLifecycle(t *testing.T) {
	env := newServerEnv(t)
	admin := env.registerAs("admin@x.com", authz.RoleAdmin)

	rec := env.do(http.MethodPost, "/api/movies", admin, movieBody("12 Angry Men"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.Movie
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotZero(t, created.ID)
	require.True(t, created.Available)

	recGet := env.do(http.MethodGet, fmt.Sprintf("/api/movies/%d", created.ID), admin, nil)
	require.Equal(t, http.StatusOK, recGet.Code)

	recUpd := env.do(http.MethodPut, fmt.Sprintf("/api/movies/%d", created.ID), admin,
		map[string]interface{}{"rating": 9.5})
	require.Equal(t, http.StatusOK, recUpd.Code, recUpd.Body.String())

	var updated models.Movie
	require.NoError(t, json.Unmarshal(recUpd.Body.Bytes(), &updated))
	require.Equal(t, 9.5, updated.Rating)
	require.Equal(t, "12 Angry Men", updated.Title)

	recDel := env.do(http.MethodDelete, fmt.Sprintf("/api/movies/%d", created.ID), admin, nil)
	require.Equal(t, http.StatusOK, recDel.Code)

	recMissing := env.do(http.MethodGet, fmt.Sprintf("/api/movies/%d", created.ID), admin, nil)
	require.Equal(t, http.StatusNotFound, recMissing.Code)
}

func TestMovieListPagination(t *testing.T) {
	env := newServerEnv(t)
	admin := env.registerAs("admin@x.com", authz.RoleAdmin)

	for i := 0; i < 12; i++ {
		rec := env.do(http.MethodPost, "/api/movies", admin, movieBody(fmt.Sprintf("Movie %02d", i)))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.do(http.MethodGet, "/api/movies?page=2&limit=10", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Movies     []models.Movie `json:"movies"`
		Pagination struct {
			CurrentPage int   `json:"currentPage"`
			TotalPages  int   `json:"totalPages"`
			TotalItems  int64 `json:"totalItems"`
			HasNextPage bool  `json:"hasNextPage"`
			HasPrevPage bool  `json:"hasPrevPage"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Movies, 2)
	require.Equal(t, 2, resp.Pagination.CurrentPage)
	require.Equal(t, 2, resp.Pagination.TotalPages)
	require.Equal(t, int64(12), resp.Pagination.TotalItems)
	require.False(t, resp.Pagination.HasNextPage)
	require.True(t, resp.Pagination.HasPrevPage)
}

func TestAttachActorToMovie(t *testing.T) {
	env := newServerEnv(t)
	admin := env.registerAs("admin@x.com", authz.RoleAdmin)

	recMovie := env.do(http.MethodPost, "/api/movies", admin, movieBody("Ensemble"))
	require.Equal(t, http.StatusCreated, recMovie.Code)
	var movie models.Movie
	require.NoError(t, json.Unmarshal(recMovie.Body.Bytes(), &movie))

	recActor := env.do(http.MethodPost, "/api/actors", admin, map[string]interface{}{
		"name":        "Henry Fonda",
		"birthDate":   "1905-05-16",
		"nationality": "American",
		"biography":   "Stage and screen actor.",
	})
	require.Equal(t, http.StatusCreated, recActor.Code, recActor.Body.String())
	var actor models.Actor
	require.NoError(t, json.Unmarshal(recActor.Body.Bytes(), &actor))

	recAttach := env.do(http.MethodPost,
		fmt.Sprintf("/api/movies/%d/actors/%d", movie.ID, actor.ID), admin, nil)
	require.Equal(t, http.StatusOK, recAttach.Code, recAttach.Body.String())

	recGet := env.do(http.MethodGet, fmt.Sprintf("/api/movies/%d", movie.ID), admin, nil)
	require.Equal(t, http.StatusOK, recGet.Code)
	var got models.Movie
	require.NoError(t, json.Unmarshal(recGet.Body.Bytes(), &got))
	require.Len(t, got.Actors, 1)
	require.Equal(t, "Henry Fonda", got.Actors[0].Name)

	recDetach := env.do(http.MethodDelete,
		fmt.Sprintf("/api/movies/%d/actors/%d", movie.ID, actor.ID), admin, nil)
	require.Equal(t, http.StatusOK, recDetach.Code)

	recAfter := env.do(http.MethodGet, fmt.Sprintf("/api/movies/%d", movie.ID), admin, nil)
	var after models.Movie
	require.NoError(t, json.Unmarshal(recAfter.Body.Bytes(), &after))
	require.Empty(t, after.Actors)
}

func TestGraphQLEndpointSharesAuth(t *testing.T) {
	env := newServerEnv(t)

	// Anonymous viewer: the query runs but resolves to an error.
	rec := env.do(http.MethodPost, "/graphql", "", map[string]string{
		"query": "{ me { email } }",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "errors")

	admin := env.registerAs("admin@x.com", authz.RoleAdmin)
	recMe := env.do(http.MethodPost, "/graphql", admin, map[string]string{
		"query": "{ me { email role } }",
	})
	require.Equal(t, http.StatusOK, recMe.Code)

	var resp struct {
		Data struct {
			Me struct {
				Email string `json:"email"`
				Role  string `json:"role"`
			} `json:"me"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(recMe.Body.Bytes(), &resp))
	require.Empty(t, resp.Errors)
	require.Equal(t, "admin@x.com", resp.Data.Me.Email)
	require.Equal(t, "admin", resp.Data.Me.Role)
}
