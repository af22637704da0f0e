package user

import (
	"errors"
	"net/mail"

	"gorm.io/gorm"

	"github.com/filmoteka/movie_catalog/internal/apperr"
	"github.com/filmoteka/movie_catalog/internal/authz"
	"github.com/filmoteka/movie_catalog/internal/hash"
	"github.com/filmoteka/movie_catalog/internal/models"
	"github.com/filmoteka/movie_catalog/internal/service/token"
)

// Service implements registration, login and profile management. The
// REST handlers and the GraphQL resolvers both consume it, so the
// account rules are written once.
type Service struct {
	DB     *gorm.DB
	Tokens *token.Service
}

func NewService(db *gorm.DB, tokens *token.Service) *Service {
	return &Service{DB: db, Tokens: tokens}
}

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type ProfileUpdate struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Password  *string `json:"password"`
}

func (in RegisterInput) validate() error {
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return apperr.New(apperr.Validation, "a valid email is required")
	}
	if in.Password == "" {
		return apperr.New(apperr.Validation, "password is required")
	}
	if in.FirstName == "" || in.LastName == "" {
		return apperr.New(apperr.Validation, "firstName and lastName are required")
	}
	return nil
}

// Register creates an account with the fixed role "user" and returns
// it together with a fresh token pair.
func (s *Service) Register(in RegisterInput) (models.User, string, string, error) {
	if err := in.validate(); err != nil {
		return models.User{}, "", "", err
	}

	var existing models.User
	err := s.DB.Where("email = ?", in.Email).First(&existing).Error
	if err == nil {
		return models.User{}, "", "", apperr.ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, "", "", apperr.Wrap(apperr.Internal, "look up user", err)
	}

	passwordHash, err := hash.HashPassword(in.Password)
	if err != nil {
		return models.User{}, "", "", apperr.Wrap(apperr.Internal, "hash password", err)
	}

	u := models.User{
		Email:        in.Email,
		PasswordHash: passwordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         authz.RoleUser,
	}
	if err := s.DB.Create(&u).Error; err != nil {
		return models.User{}, "", "", apperr.Wrap(apperr.Internal, "create user", err)
	}

	access, refresh, err := s.Tokens.IssuePair(u)
	if err != nil {
		return models.User{}, "", "", err
	}
	return u, access, refresh, nil
}

// Login verifies the credentials, revokes every outstanding refresh
// token for the user and issues a new pair. The failure never reveals
// whether the email exists.
func (s *Service) Login(email, password string) (models.User, string, string, error) {
	var u models.User
	if err := s.DB.Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, "", "", apperr.ErrInvalidCredentials
		}
		return models.User{}, "", "", apperr.Wrap(apperr.Internal, "look up user", err)
	}

	if !hash.CheckPassword(u.PasswordHash, password) {
		return models.User{}, "", "", apperr.ErrInvalidCredentials
	}

	if err := s.Tokens.RevokeAll(u.ID); err != nil {
		return models.User{}, "", "", err
	}

	access, refresh, err := s.Tokens.IssuePair(u)
	if err != nil {
		return models.User{}, "", "", err
	}
	return u, access, refresh, nil
}

func (s *Service) Logout(userID uint) error {
	return s.Tokens.RevokeAll(userID)
}

func (s *Service) GetProfile(userID uint) (models.User, error) {
	var u models.User
	if err := s.DB.First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, apperr.ErrUserNotFound
		}
		return models.User{}, apperr.Wrap(apperr.Internal, "load user", err)
	}
	return u, nil
}

func (s *Service) UpdateProfile(userID uint, in ProfileUpdate) (models.User, error) {
	u, err := s.GetProfile(userID)
	if err != nil {
		return models.User{}, err
	}

	if in.FirstName != nil && *in.FirstName != "" {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil && *in.LastName != "" {
		u.LastName = *in.LastName
	}
	if in.Password != nil && *in.Password != "" {
		passwordHash, err := hash.HashPassword(*in.Password)
		if err != nil {
			return models.User{}, apperr.Wrap(apperr.Internal, "hash password", err)
		}
		u.PasswordHash = passwordHash
	}

	if err := s.DB.Save(&u).Error; err != nil {
		return models.User{}, apperr.Wrap(apperr.Internal, "update user", err)
	}
	return u, nil
}
