package catalog

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/filmoteka/movie_catalog/internal/apperr"
	"github.com/filmoteka/movie_catalog/internal/models"
	"github.com/filmoteka/movie_catalog/internal/util"
)

type ActorInput struct {
	Name        string
	BirthDate   time.Time
	Nationality string
	Biography   string
}

type ActorUpdate struct {
	Name        *string
	BirthDate   *time.Time
	Nationality *string
	Biography   *string
}

func (in ActorInput) validate() error {
	if in.Name == "" || in.Nationality == "" || in.Biography == "" {
		return apperr.New(apperr.Validation, "name, nationality and biography are required")
	}
	if in.BirthDate.IsZero() {
		return apperr.New(apperr.Validation, "birthDate is required")
	}
	return nil
}

func (s *Service) ListActors(page, limit int) ([]models.Actor, util.Pagination, error) {
	page, limit = util.Normalize(page, limit)

	var total int64
	if err := s.DB.Model(&models.Actor{}).Count(&total).Error; err != nil {
		return nil, util.Pagination{}, apperr.Wrap(apperr.Internal, "count actors", err)
	}

	var actors []models.Actor
	err := s.DB.Preload("Movies").
		Order("name ASC").
		Offset(util.Offset(page, limit)).
		Limit(limit).
		Find(&actors).Error
	if err != nil {
		return nil, util.Pagination{}, apperr.Wrap(apperr.Internal, "list actors", err)
	}

	return actors, util.Paginate(page, limit, total), nil
}

func (s *Service) GetActor(id uint) (models.Actor, error) {
	var actor models.Actor
	if err := s.DB.Preload("Movies").First(&actor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Actor{}, apperr.ErrActorNotFound
		}
		return models.Actor{}, apperr.Wrap(apperr.Internal, "load actor", err)
	}
	return actor, nil
}

func (s *Service) CreateActor(in ActorInput) (models.Actor, error) {
	if err := in.validate(); err != nil {
		return models.Actor{}, err
	}

	actor := models.Actor{
		Name:        in.Name,
		BirthDate:   in.BirthDate,
		Nationality: in.Nationality,
		Biography:   in.Biography,
	}
	if err := s.DB.Create(&actor).Error; err != nil {
		return models.Actor{}, apperr.Wrap(apperr.Internal, "create actor", err)
	}
	return actor, nil
}

func (s *Service) UpdateActor(id uint, in ActorUpdate) (models.Actor, error) {
	actor, err := s.GetActor(id)
	if err != nil {
		return models.Actor{}, err
	}

	if in.Name != nil {
		actor.Name = *in.Name
	}
	if in.BirthDate != nil {
		actor.BirthDate = *in.BirthDate
	}
	if in.Nationality != nil {
		actor.Nationality = *in.Nationality
	}
	if in.Biography != nil {
		actor.Biography = *in.Biography
	}

	if err := s.DB.Save(&actor).Error; err != nil {
		return models.Actor{}, apperr.Wrap(apperr.Internal, "update actor", err)
	}
	return actor, nil
}

func (s *Service) DeleteActor(id uint) (models.Actor, error) {
	actor, err := s.GetActor(id)
	if err != nil {
		return models.Actor{}, err
	}

	if err := s.DB.Model(&actor).Association("Movies").Clear(); err != nil {
		return models.Actor{}, apperr.Wrap(apperr.Internal, "clear actor movies", err)
	}
	if err := s.DB.Delete(&models.Actor{}, id).Error; err != nil {
		return models.Actor{}, apperr.Wrap(apperr.Internal, "delete actor", err)
	}
	return actor, nil
}
