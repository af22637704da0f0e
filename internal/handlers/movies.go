package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/filmoteka/movie_catalog/internal/models"
	"github.com/filmoteka/movie_catalog/internal/mykafka"
	"github.com/filmoteka/movie_catalog/internal/service/catalog"
	"github.com/filmoteka/movie_catalog/internal/service/search"
	"github.com/filmoteka/movie_catalog/internal/upload"
	"github.com/filmoteka/movie_catalog/internal/util"
)

type MovieHandler struct {
	Catalog  *catalog.Service
	Uploads  *upload.Store
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	ESIndex  string
}

// coverURL rewrites the stored file name into its public path on a
// response copy.
func coverURL(m models.Movie) models.Movie {
	m.CoverImage = upload.URL(m.CoverImage)
	return m
}

func (h *MovieHandler) indexMovie(c echo.Context, m models.Movie) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.IndexMovie(ctx, h.ES, h.ESIndex, m); err != nil {
		c.Logger().Errorf("elasticsearch index error: %v", err)
	}
}

func (h *MovieHandler) unindexMovie(c echo.Context, id uint) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.DeleteMovie(ctx, h.ES, h.ESIndex, id); err != nil {
		c.Logger().Errorf("elasticsearch delete error: %v", err)
	}
}

func (h *MovieHandler) List(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), util.DefaultPage)
	limit := parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)

	movies, pagination, err := h.Catalog.ListMovies(page, limit)
	if err != nil {
		return httpError(err)
	}

	out := make([]models.Movie, len(movies))
	for i, m := range movies {
		out[i] = coverURL(m)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"movies":     out,
		"pagination": pagination,
	})
}

func (h *MovieHandler) Get(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return httpError(err)
	}

	movie, err := h.Catalog.GetMovie(id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, coverURL(movie))
}

func (h *MovieHandler) Create(c echo.Context) error {
	var in catalog.MovieInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if fh, err := c.FormFile("coverImage"); err == nil {
		name, err := h.Uploads.Save(fh)
		if err != nil {
			return httpError(err)
		}
		in.CoverImage = name
	}

	movie, err := h.Catalog.CreateMovie(in)
	if err != nil {
		// The record never materialized, drop the orphaned upload.
		h.Uploads.Remove(in.CoverImage)
		return httpError(err)
	}

	h.indexMovie(c, movie)
	publishEvent(c, h.Producer, "movie_events", fmt.Sprint(movie.ID), map[string]interface{}{
		"type":    "movie_created",
		"movieID": movie.ID,
		"title":   movie.Title,
	})

	return c.JSON(http.StatusCreated, coverURL(movie))
}

func (h *MovieHandler) Update(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return httpError(err)
	}

	prev, err := h.Catalog.GetMovie(id)
	if err != nil {
		return httpError(err)
	}

	var in catalog.MovieUpdate
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	var newCover string
	if fh, err := c.FormFile("coverImage"); err == nil {
		name, err := h.Uploads.Save(fh)
		if err != nil {
			return httpError(err)
		}
		newCover = name
		in.CoverImage = &newCover
	}

	movie, err := h.Catalog.UpdateMovie(id, in)
	if err != nil {
		h.Uploads.Remove(newCover)
		return httpError(err)
	}

	// Replacing the cover leaves the old file orphaned.
	if newCover != "" && prev.CoverImage != "" && prev.CoverImage != newCover {
		h.Uploads.Remove(prev.CoverImage)
	}

	h.indexMovie(c, movie)
	publishEvent(c, h.Producer, "movie_events", fmt.Sprint(movie.ID), map[string]interface{}{
		"type":    "movie_updated",
		"movieID": movie.ID,
		"title":   movie.Title,
	})

	return c.JSON(http.StatusOK, coverURL(movie))
}

func (h *MovieHandler) Delete(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return httpError(err)
	}

	movie, err := h.Catalog.DeleteMovie(id)
	if err != nil {
		return httpError(err)
	}

	h.Uploads.Remove(movie.CoverImage)
	h.unindexMovie(c, id)
	publishEvent(c, h.Producer, "movie_events", fmt.Sprint(id), map[string]interface{}{
		"type":    "movie_deleted",
		"movieID": id,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "movie deleted"})
}

func (h *MovieHandler) AttachActor(c echo.Context) error {
	movieID, err := parseUintParam(c, "movieID")
	if err != nil {
		return httpError(err)
	}
	actorID, err := parseUintParam(c, "actorID")
	if err != nil {
		return httpError(err)
	}

	if err := h.Catalog.AttachActor(movieID, actorID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "actor added to movie"})
}

func (h *MovieHandler) DetachActor(c echo.Context) error {
	movieID, err := parseUintParam(c, "movieID")
	if err != nil {
		return httpError(err)
	}
	actorID, err := parseUintParam(c, "actorID")
	if err != nil {
		return httpError(err)
	}

	if err := h.Catalog.DetachActor(movieID, actorID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "actor removed from movie"})
}
