package graph

import (
	"net/http"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/labstack/echo/v4"

	"github.com/filmoteka/movie_catalog/internal/apperr"
	"github.com/filmoteka/movie_catalog/internal/authz"
	"github.com/filmoteka/movie_catalog/internal/service/token"
)

// Handler serves the /graphql endpoint. Authentication is resolved
// per request into the viewer context; authorization happens inside
// the resolvers.
type Handler struct {
	Schema graphql.Schema
	Tokens *token.Service
	Perms  *authz.Permissions
}

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

func (h *Handler) Serve(c echo.Context) error {
	var req request
	if c.Request().Method == http.MethodGet {
		req.Query = c.QueryParam("query")
		req.OperationName = c.QueryParam("operationName")
	} else if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	viewer := BuildViewer(c.Request(), h.Tokens, h.Perms)
	ctx := WithViewer(c.Request().Context(), viewer)

	result := graphql.Do(graphql.Params{
		Schema:         h.Schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        ctx,
	})
	return c.JSON(http.StatusOK, result)
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.New(apperr.Validation, "birthDate must be YYYY-MM-DD or RFC 3339")
}
