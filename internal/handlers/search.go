package handlers

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/filmoteka/movie_catalog/internal/service/search"
	"github.com/filmoteka/movie_catalog/internal/util"
)

type SearchHandler struct {
	ES    *elasticsearch.Client
	Index string
}

func (h *SearchHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}

	page := parseIntDefault(c.QueryParam("page"), util.DefaultPage)
	limit := parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	page, limit = util.Normalize(page, limit)

	total, movies, err := search.Search(c.Request().Context(), h.ES, h.Index, q, util.Offset(page, limit), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"movies":     movies,
		"pagination": util.Paginate(page, limit, total),
	})
}
