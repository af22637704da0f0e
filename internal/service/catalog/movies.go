package catalog

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/filmoteka/movie_catalog/internal/apperr"
	"github.com/filmoteka/movie_catalog/internal/models"
	"github.com/filmoteka/movie_catalog/internal/util"
)

// Earliest year a movie can carry; the year the first film was made.
const minReleaseYear = 1888

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

type MovieInput struct {
	Title       string  `json:"title" form:"title"`
	Director    string  `json:"director" form:"director"`
	ReleaseYear int     `json:"releaseYear" form:"releaseYear"`
	Genre       string  `json:"genre" form:"genre"`
	Rating      float64 `json:"rating" form:"rating"`
	RentalPrice float64 `json:"rentalPrice" form:"rentalPrice"`
	Available   *bool   `json:"available" form:"available"`
	CoverImage  string  `json:"-" form:"-"`
}

type MovieUpdate struct {
	Title       *string  `json:"title" form:"title"`
	Director    *string  `json:"director" form:"director"`
	ReleaseYear *int     `json:"releaseYear" form:"releaseYear"`
	Genre       *string  `json:"genre" form:"genre"`
	Rating      *float64 `json:"rating" form:"rating"`
	RentalPrice *float64 `json:"rentalPrice" form:"rentalPrice"`
	Available   *bool    `json:"available" form:"available"`
	CoverImage  *string  `json:"-" form:"-"`
}

func validateMovieFields(year int, rating, rentalPrice float64) error {
	if year < minReleaseYear || year > time.Now().Year() {
		return apperr.New(apperr.Validation,
			fmt.Sprintf("releaseYear must be between %d and %d", minReleaseYear, time.Now().Year()))
	}
	if rating < 0 || rating > 10 {
		return apperr.New(apperr.Validation, "rating must be between 0 and 10")
	}
	if rentalPrice < 0 {
		return apperr.New(apperr.Validation, "rentalPrice must not be negative")
	}
	return nil
}

func (in MovieInput) validate() error {
	if in.Title == "" || in.Director == "" || in.Genre == "" {
		return apperr.New(apperr.Validation, "title, director and genre are required")
	}
	return validateMovieFields(in.ReleaseYear, in.Rating, in.RentalPrice)
}

func (s *Service) ListMovies(page, limit int) ([]models.Movie, util.Pagination, error) {
	page, limit = util.Normalize(page, limit)

	var total int64
	if err := s.DB.Model(&models.Movie{}).Count(&total).Error; err != nil {
		return nil, util.Pagination{}, apperr.Wrap(apperr.Internal, "count movies", err)
	}

	var movies []models.Movie
	err := s.DB.Preload("Actors").
		Order("created_at DESC").
		Offset(util.Offset(page, limit)).
		Limit(limit).
		Find(&movies).Error
	if err != nil {
		return nil, util.Pagination{}, apperr.Wrap(apperr.Internal, "list movies", err)
	}

	return movies, util.Paginate(page, limit, total), nil
}

func (s *Service) GetMovie(id uint) (models.Movie, error) {
	var movie models.Movie
	if err := s.DB.Preload("Actors").First(&movie, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Movie{}, apperr.ErrMovieNotFound
		}
		return models.Movie{}, apperr.Wrap(apperr.Internal, "load movie", err)
	}
	return movie, nil
}

func (s *Service) CreateMovie(in MovieInput) (models.Movie, error) {
	if err := in.validate(); err != nil {
		return models.Movie{}, err
	}

	movie := models.Movie{
		Title:       in.Title,
		Director:    in.Director,
		ReleaseYear: in.ReleaseYear,
		Genre:       in.Genre,
		Rating:      in.Rating,
		RentalPrice: in.RentalPrice,
		Available:   true,
		CoverImage:  in.CoverImage,
	}
	if in.Available != nil {
		movie.Available = *in.Available
	}

	if err := s.DB.Create(&movie).Error; err != nil {
		return models.Movie{}, apperr.Wrap(apperr.Internal, "create movie", err)
	}
	return movie, nil
}

func (s *Service) UpdateMovie(id uint, in MovieUpdate) (models.Movie, error) {
	movie, err := s.GetMovie(id)
	if err != nil {
		return models.Movie{}, err
	}

	if in.Title != nil {
		movie.Title = *in.Title
	}
	if in.Director != nil {
		movie.Director = *in.Director
	}
	if in.ReleaseYear != nil {
		movie.ReleaseYear = *in.ReleaseYear
	}
	if in.Genre != nil {
		movie.Genre = *in.Genre
	}
	if in.Rating != nil {
		movie.Rating = *in.Rating
	}
	if in.RentalPrice != nil {
		movie.RentalPrice = *in.RentalPrice
	}
	if in.Available != nil {
		movie.Available = *in.Available
	}
	if in.CoverImage != nil {
		movie.CoverImage = *in.CoverImage
	}

	if err := validateMovieFields(movie.ReleaseYear, movie.Rating, movie.RentalPrice); err != nil {
		return models.Movie{}, err
	}

	if err := s.DB.Save(&movie).Error; err != nil {
		return models.Movie{}, apperr.Wrap(apperr.Internal, "update movie", err)
	}
	return movie, nil
}

// DeleteMovie removes the movie and its actor associations. The
// deleted record is returned so callers can clean up the cover image.
func (s *Service) DeleteMovie(id uint) (models.Movie, error) {
	movie, err := s.GetMovie(id)
	if err != nil {
		return models.Movie{}, err
	}

	if err := s.DB.Model(&movie).Association("Actors").Clear(); err != nil {
		return models.Movie{}, apperr.Wrap(apperr.Internal, "clear movie actors", err)
	}
	if err := s.DB.Delete(&models.Movie{}, id).Error; err != nil {
		return models.Movie{}, apperr.Wrap(apperr.Internal, "delete movie", err)
	}
	return movie, nil
}

func (s *Service) AttachActor(movieID, actorID uint) error {
	movie, actor, err := s.moviePair(movieID, actorID)
	if err != nil {
		return err
	}
	if err := s.DB.Model(&movie).Association("Actors").Append(&actor); err != nil {
		return apperr.Wrap(apperr.Internal, "attach actor", err)
	}
	return nil
}

func (s *Service) DetachActor(movieID, actorID uint) error {
	movie, actor, err := s.moviePair(movieID, actorID)
	if err != nil {
		return err
	}
	if err := s.DB.Model(&movie).Association("Actors").Delete(&actor); err != nil {
		return apperr.Wrap(apperr.Internal, "detach actor", err)
	}
	return nil
}

func (s *Service) moviePair(movieID, actorID uint) (models.Movie, models.Actor, error) {
	var movie models.Movie
	if err := s.DB.First(&movie, movieID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Movie{}, models.Actor{}, apperr.ErrMovieNotFound
		}
		return models.Movie{}, models.Actor{}, apperr.Wrap(apperr.Internal, "load movie", err)
	}
	var actor models.Actor
	if err := s.DB.First(&actor, actorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Movie{}, models.Actor{}, apperr.ErrActorNotFound
		}
		return models.Movie{}, models.Actor{}, apperr.Wrap(apperr.Internal, "load actor", err)
	}
	return movie, actor, nil
}
