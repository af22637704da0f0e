package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/filmoteka/movie_catalog/internal/apperr"
	"github.com/filmoteka/movie_catalog/internal/mykafka"
	"github.com/filmoteka/movie_catalog/internal/service/catalog"
	"github.com/filmoteka/movie_catalog/internal/util"
)

type ActorHandler struct {
	Catalog  *catalog.Service
	Producer *mykafka.Producer
}

type actorRequest struct {
	Name        string `json:"name"`
	BirthDate   string `json:"birthDate"`
	Nationality string `json:"nationality"`
	Biography   string `json:"biography"`
}

func parseBirthDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.New(apperr.Validation, "birthDate must be YYYY-MM-DD or RFC 3339")
}

func (h *ActorHandler) List(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), util.DefaultPage)
	limit := parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)

	actors, pagination, err := h.Catalog.ListActors(page, limit)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"actors":     actors,
		"pagination": pagination,
	})
}

func (h *ActorHandler) Get(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return httpError(err)
	}

	actor, err := h.Catalog.GetActor(id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, actor)
}

func (h *ActorHandler) Create(c echo.Context) error {
	var req actorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		return httpError(err)
	}

	actor, err := h.Catalog.CreateActor(catalog.ActorInput{
		Name:        req.Name,
		BirthDate:   birthDate,
		Nationality: req.Nationality,
		Biography:   req.Biography,
	})
	if err != nil {
		return httpError(err)
	}

	publishEvent(c, h.Producer, "actor_events", fmt.Sprint(actor.ID), map[string]interface{}{
		"type":    "actor_created",
		"actorID": actor.ID,
		"name":    actor.Name,
	})

	return c.JSON(http.StatusCreated, actor)
}

func (h *ActorHandler) Update(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return httpError(err)
	}

	var req struct {
		Name        *string `json:"name"`
		BirthDate   *string `json:"birthDate"`
		Nationality *string `json:"nationality"`
		Biography   *string `json:"biography"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	in := catalog.ActorUpdate{
		Name:        req.Name,
		Nationality: req.Nationality,
		Biography:   req.Biography,
	}
	if req.BirthDate != nil {
		birthDate, err := parseBirthDate(*req.BirthDate)
		if err != nil {
			return httpError(err)
		}
		in.BirthDate = &birthDate
	}

	actor, err := h.Catalog.UpdateActor(id, in)
	if err != nil {
		return httpError(err)
	}

	publishEvent(c, h.Producer, "actor_events", fmt.Sprint(actor.ID), map[string]interface{}{
		"type":    "actor_updated",
		"actorID": actor.ID,
		"name":    actor.Name,
	})

	return c.JSON(http.StatusOK, actor)
}

func (h *ActorHandler) Delete(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return httpError(err)
	}

	actor, err := h.Catalog.DeleteActor(id)
	if err != nil {
		return httpError(err)
	}

	publishEvent(c, h.Producer, "actor_events", fmt.Sprint(actor.ID), map[string]interface{}{
		"type":    "actor_deleted",
		"actorID": actor.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "actor deleted"})
}

// AttachMovie and DetachMovie mirror the movie-side association
// endpoints from the actor side.
func (h *ActorHandler) AttachMovie(c echo.Context) error {
	actorID, err := parseUintParam(c, "actorID")
	if err != nil {
		return httpError(err)
	}
	movieID, err := parseUintParam(c, "movieID")
	if err != nil {
		return httpError(err)
	}

	if err := h.Catalog.AttachActor(movieID, actorID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "movie added to actor"})
}

func (h *ActorHandler) DetachMovie(c echo.Context) error {
	actorID, err := parseUintParam(c, "actorID")
	if err != nil {
		return httpError(err)
	}
	movieID, err := parseUintParam(c, "movieID")
	if err != nil {
		return httpError(err)
	}

	if err := h.Catalog.DetachActor(movieID, actorID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "movie removed from actor"})
}
