package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/filmoteka/movie_catalog/internal/authz"
	"github.com/filmoteka/movie_catalog/internal/graph"
	"github.com/filmoteka/movie_catalog/internal/handlers"
	authmw "github.com/filmoteka/movie_catalog/internal/middleware/auth"
)

type Deps struct {
	Auth          *authmw.Middleware
	AuthHandler   *handlers.AuthHandler
	MovieHandler  *handlers.MovieHandler
	ActorHandler  *handlers.ActorHandler
	SearchHandler *handlers.SearchHandler
	GraphQL       *graph.Handler
	UploadDir     string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh-token", d.AuthHandler.RefreshToken)
	auth.POST("/logout", d.AuthHandler.Logout, d.Auth.RequireAuth)
	auth.GET("/profile", d.AuthHandler.GetProfile, d.Auth.RequireAuth)
	auth.PUT("/profile", d.AuthHandler.UpdateProfile, d.Auth.RequireAuth)

	movies := e.Group("/api/movies", d.Auth.RequireAuth)
	if d.SearchHandler != nil {
		movies.GET("/search", d.SearchHandler.Search)
	}
	movies.GET("", d.MovieHandler.List)
	movies.GET("/:id", d.MovieHandler.Get)
	movies.POST("", d.MovieHandler.Create, d.Auth.RequirePermission(authz.PermCreateMovies))
	movies.PUT("/:id", d.MovieHandler.Update, d.Auth.RequirePermission(authz.PermUpdateMovies))
	movies.DELETE("/:id", d.MovieHandler.Delete, d.Auth.RequirePermission(authz.PermDeleteMovies))
	movies.POST("/:movieID/actors/:actorID", d.MovieHandler.AttachActor, d.Auth.RequirePermission(authz.PermUpdateMovies))
	movies.DELETE("/:movieID/actors/:actorID", d.MovieHandler.DetachActor, d.Auth.RequirePermission(authz.PermUpdateMovies))

	actors := e.Group("/api/actors", d.Auth.RequireAuth)
	actors.GET("", d.ActorHandler.List)
	actors.GET("/:id", d.ActorHandler.Get)
	actors.POST("", d.ActorHandler.Create, d.Auth.RequirePermission(authz.PermCreateActors))
	actors.PUT("/:id", d.ActorHandler.Update, d.Auth.RequirePermission(authz.PermUpdateActors))
	actors.DELETE("/:id", d.ActorHandler.Delete, d.Auth.RequirePermission(authz.PermDeleteActors))
	actors.POST("/:actorID/movies/:movieID", d.ActorHandler.AttachMovie, d.Auth.RequirePermission(authz.PermUpdateActors))
	actors.DELETE("/:actorID/movies/:movieID", d.ActorHandler.DetachMovie, d.Auth.RequirePermission(authz.PermUpdateActors))

	e.POST("/graphql", d.GraphQL.Serve)
	e.GET("/graphql", d.GraphQL.Serve)

	e.Static("/uploads", d.UploadDir)
}
