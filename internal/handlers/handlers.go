package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/filmoteka/movie_catalog/internal/apperr"
	"github.com/filmoteka/movie_catalog/internal/mykafka"
)

func httpError(err error) *echo.HTTPError {
	return echo.NewHTTPError(apperr.Status(err), apperr.Message(err))
}

func parseUintParam(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, apperr.New(apperr.Validation, "invalid "+name)
	}
	return uint(v), nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// publishEvent sends a domain event without failing the request.
func publishEvent(c echo.Context, p *mykafka.Producer, topic, key string, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		c.Logger().Errorf("kafka publish error: %v", err)
	}
}
