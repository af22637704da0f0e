package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/filmoteka/movie_catalog/internal/authz"
	"github.com/filmoteka/movie_catalog/internal/config"
	"github.com/filmoteka/movie_catalog/internal/es"
	"github.com/filmoteka/movie_catalog/internal/graph"
	"github.com/filmoteka/movie_catalog/internal/handlers"
	"github.com/filmoteka/movie_catalog/internal/logging"
	authmw "github.com/filmoteka/movie_catalog/internal/middleware/auth"
	loggingmw "github.com/filmoteka/movie_catalog/internal/middleware/logging"
	"github.com/filmoteka/movie_catalog/internal/mykafka"
	"github.com/filmoteka/movie_catalog/internal/service/catalog"
	"github.com/filmoteka/movie_catalog/internal/service/token"
	"github.com/filmoteka/movie_catalog/internal/service/user"
	httpserver "github.com/filmoteka/movie_catalog/internal/transport/http"
	"github.com/filmoteka/movie_catalog/internal/upload"
	"github.com/filmoteka/movie_catalog/pkg/db"
)

const movieIndex = "movies"

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	ctx := context.Background()
	database, err := db.Open(ctx, configuration.DSN())
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		log.Fatalf("database migration error: %v", err)
	}

	uploads, err := upload.NewStore(configuration.UPLOAD_DIR)
	if err != nil {
		log.Fatal(err)
	}

	var producer *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	}

	perms := authz.Defaults()
	tokens := token.NewService(database, []byte(configuration.JWT_SECRET), []byte(configuration.REFRESH_SECRET))
	users := user.NewService(database, tokens)
	catalogSvc := catalog.NewService(database)

	schema, err := graph.NewSchema(&graph.Resolver{
		Users:   users,
		Tokens:  tokens,
		Catalog: catalogSvc,
		Perms:   perms,
	})
	if err != nil {
		log.Fatalf("graphql schema error: %v", err)
	}

	deps := httpserver.Deps{
		Auth:         authmw.NewMiddleware(tokens, perms),
		AuthHandler:  &handlers.AuthHandler{Users: users, Tokens: tokens, Producer: producer},
		MovieHandler: &handlers.MovieHandler{Catalog: catalogSvc, Uploads: uploads, Producer: producer, ESIndex: movieIndex},
		ActorHandler: &handlers.ActorHandler{Catalog: catalogSvc, Producer: producer},
		GraphQL:      &graph.Handler{Schema: schema, Tokens: tokens, Perms: perms},
		UploadDir:    configuration.UPLOAD_DIR,
	}

	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
		deps.MovieHandler.ES = esClient
		deps.SearchHandler = &handlers.SearchHandler{ES: esClient, Index: movieIndex}
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	logger.Info("shutdown complete")
}
