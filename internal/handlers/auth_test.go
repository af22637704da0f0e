package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/filmoteka/movie_catalog/internal/authz"
	authmw "github.com/filmoteka/movie_catalog/internal/middleware/auth"
	"github.com/filmoteka/movie_catalog/internal/models"
	"github.com/filmoteka/movie_catalog/internal/service/token"
	"github.com/filmoteka/movie_catalog/internal/service/user"
)

type authTestEnv struct {
	T      *testing.T
	E      *echo.Echo
	DB     *gorm.DB
	A      *AuthHandler
	MW     *authmw.Middleware
	Tokens *token.Service
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.RefreshToken{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	tokens := token.NewService(db, []byte("access-secret"), []byte("refresh-secret"))
	users := user.NewService(db, tokens)

	return &authTestEnv{
		T:      t,
		E:      echo.New(),
		DB:     db,
		A:      &AuthHandler{Users: users, Tokens: tokens},
		MW:     authmw.NewMiddleware(tokens, authz.Defaults()),
		Tokens: tokens,
	}
}

func (env *authTestEnv) doJSONRequest(method, path string, body interface{}, headers ...[2]string) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, h := range headers {
		req.Header.Set(h[0], h[1])
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func registerPayload(email string) map[string]string {
	return map[string]string{
		"email":     email,
		"password":  "password",
		"firstName": "Ada",
		"lastName":  "Lovelace",
	}
}

func TestRegister(t *testing.T) {
	env := newAuthTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodPost, "/auth/register", registerPayload("a@x.com"))
	require.NoError(t, env.A.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		User         models.User `json:"user"`
		AccessToken  string      `json:"accessToken"`
		RefreshToken string      `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "a@x.com", resp.User.Email)
	require.Equal(t, "user", resp.User.Role)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.NotContains(t, rec.Body.String(), "password")

	_, cDup := env.doJSONRequest(http.MethodPost, "/auth/register", registerPayload("a@x.com"))
	err := env.A.Register(cDup)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusBadRequest, he.Code)
}

func TestLogin(t *testing.T) {
	env := newAuthTestEnv(t)

	_, cReg := env.doJSONRequest(http.MethodPost, "/auth/register", registerPayload("a@x.com"))
	require.NoError(t, env.A.Register(cReg))

	rec, c := env.doJSONRequest(http.MethodPost, "/auth/login",
		map[string]string{"email": "a@x.com", "password": "password"})
	require.NoError(t, env.A.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["accessToken"])
	require.NotEmpty(t, resp["refreshToken"])

	_, cBad := env.doJSONRequest(http.MethodPost, "/auth/login",
		map[string]string{"email": "a@x.com", "password": "wrong"})
	err := env.A.Login(cBad)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)

	_, cUnknown := env.doJSONRequest(http.MethodPost, "/auth/login",
		map[string]string{"email": "nobody@x.com", "password": "wrong"})
	errUnknown := env.A.Login(cUnknown)
	heUnknown, ok := errUnknown.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, he.Message, heUnknown.Message)
}

func loginTokens(t *testing.T, env *authTestEnv, email string) (string, string) {
	rec, c := env.doJSONRequest(http.MethodPost, "/auth/login",
		map[string]string{"email": email, "password": "password"})
	require.NoError(t, env.A.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.AccessToken, resp.RefreshToken
}

func TestRefreshTokenRotation(t *testing.T) {
	env := newAuthTestEnv(t)

	_, cReg := env.doJSONRequest(http.MethodPost, "/auth/register", registerPayload("a@x.com"))
	require.NoError(t, env.A.Register(cReg))
	_, refresh := loginTokens(t, env, "a@x.com")

	rec, c := env.doJSONRequest(http.MethodPost, "/auth/refresh-token", nil,
		[2]string{echo.HeaderAuthorization, "Bearer " + refresh})
	require.NoError(t, env.A.RefreshToken(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["accessToken"])

	_, cMissing := env.doJSONRequest(http.MethodPost, "/auth/refresh-token", nil)
	err := env.A.RefreshToken(cMissing)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestSecondLoginInvalidatesFirstRefreshToken(t *testing.T) {
	env := newAuthTestEnv(t)

	_, cReg := env.doJSONRequest(http.MethodPost, "/auth/register", registerPayload("a@x.com"))
	require.NoError(t, env.A.Register(cReg))

	_, refresh1 := loginTokens(t, env, "a@x.com")
	_, refresh2 := loginTokens(t, env, "a@x.com")

	_, c1 := env.doJSONRequest(http.MethodPost, "/auth/refresh-token", nil,
		[2]string{echo.HeaderAuthorization, "Bearer " + refresh1})
	err := env.A.RefreshToken(c1)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)

	rec2, c2 := env.doJSONRequest(http.MethodPost, "/auth/refresh-token", nil,
		[2]string{echo.HeaderAuthorization, "Bearer " + refresh2})
	require.NoError(t, env.A.RefreshToken(c2))
	require.Equal(t, http.StatusOK, rec2.Code)
}

func TestLogoutRevokesRefreshTokens(t *testing.T) {
	env := newAuthTestEnv(t)

	_, cReg := env.doJSONRequest(http.MethodPost, "/auth/register", registerPayload("a@x.com"))
	require.NoError(t, env.A.Register(cReg))
	access, refresh := loginTokens(t, env, "a@x.com")

	rec, c := env.doJSONRequest(http.MethodPost, "/auth/logout", nil,
		[2]string{echo.HeaderAuthorization, "Bearer " + access})
	require.NoError(t, env.MW.RequireAuth(env.A.Logout)(c))
	require.Equal(t, http.StatusOK, rec.Code)

	_, cRotate := env.doJSONRequest(http.MethodPost, "/auth/refresh-token", nil,
		[2]string{echo.HeaderAuthorization, "Bearer " + refresh})
	err := env.A.RefreshToken(cRotate)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestProfileRoundTrip(t *testing.T) {
	env := newAuthTestEnv(t)

	_, cReg := env.doJSONRequest(http.MethodPost, "/auth/register", registerPayload("a@x.com"))
	require.NoError(t, env.A.Register(cReg))
	access, _ := loginTokens(t, env, "a@x.com")

	rec, c := env.doJSONRequest(http.MethodGet, "/auth/profile", nil,
		[2]string{echo.HeaderAuthorization, "Bearer " + access})
	require.NoError(t, env.MW.RequireAuth(env.A.GetProfile)(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var u models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	require.Equal(t, "Ada", u.FirstName)

	recUpd, cUpd := env.doJSONRequest(http.MethodPut, "/auth/profile",
		map[string]string{"firstName": "Grace"},
		[2]string{echo.HeaderAuthorization, "Bearer " + access})
	require.NoError(t, env.MW.RequireAuth(env.A.UpdateProfile)(cUpd))
	require.Equal(t, http.StatusOK, recUpd.Code)

	var updated models.User
	require.NoError(t, json.Unmarshal(recUpd.Body.Bytes(), &updated))
	require.Equal(t, "Grace", updated.FirstName)
	require.Equal(t, "Lovelace", updated.LastName)
}
