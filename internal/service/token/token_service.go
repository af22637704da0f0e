package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/filmoteka/movie_catalog/internal/apperr"
	"github.com/filmoteka/movie_catalog/internal/models"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Service issues, verifies and rotates the access/refresh token pair.
// Both the REST middleware and the GraphQL context builder resolve
// identities through it, so verification lives in exactly one place.
type Service struct {
	DB            *gorm.DB
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func NewService(db *gorm.DB, accessSecret, refreshSecret []byte) *Service {
	return &Service{
		DB:            db,
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		AccessTTL:     DefaultAccessTTL,
		RefreshTTL:    DefaultRefreshTTL,
	}
}

type AccessClaims struct {
	jwt.RegisteredClaims
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type refreshClaims struct {
	jwt.RegisteredClaims
	UserID uint   `json:"user_id"`
	Type   string `json:"typ"`
}

// IssuePair mints an access/refresh token pair for the user and
// persists the refresh token. Multiple live refresh tokens per user
// are allowed; login revokes the previous ones explicitly.
func (s *Service) IssuePair(user models.User) (string, string, error) {
	access, err := s.signAccess(user)
	if err != nil {
		return "", "", apperr.Wrap(apperr.Internal, "sign access token", err)
	}

	now := time.Now()
	expiresAt := now.Add(s.RefreshTTL)
	claims := refreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: user.ID,
		Type:   "refresh",
	}
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.RefreshSecret)
	if err != nil {
		return "", "", apperr.Wrap(apperr.Internal, "sign refresh token", err)
	}

	row := models.RefreshToken{
		Token:     refresh,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
		Revoked:   false,
	}
	if err := s.DB.Create(&row).Error; err != nil {
		return "", "", apperr.Wrap(apperr.Internal, "persist refresh token", err)
	}

	return access, refresh, nil
}

// VerifyAccess checks the access token signature and expiry and
// returns its claims. Expired tokens are reported distinctly from
// otherwise invalid ones.
func (s *Service) VerifyAccess(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	t, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.AccessSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.ErrTokenExpired
		}
		return nil, apperr.ErrInvalidToken
	}
	if !t.Valid {
		return nil, apperr.ErrInvalidToken
	}
	return claims, nil
}

// Authenticate resolves an access token to its current user record.
func (s *Service) Authenticate(raw string) (models.User, error) {
	claims, err := s.VerifyAccess(raw)
	if err != nil {
		return models.User{}, err
	}

	var user models.User
	if err := s.DB.First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, apperr.ErrInvalidToken
		}
		return models.User{}, apperr.Wrap(apperr.Internal, "load user", err)
	}
	return user, nil
}

// Rotate exchanges a live refresh token for a fresh access token. The
// user record is re-read, so a role change takes effect without a new
// login. Every failure surfaces as the same generic error to avoid
// leaking which check rejected the token.
func (s *Service) Rotate(raw string) (string, models.User, error) {
	claims := &refreshClaims{}
	t, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.RefreshSecret, nil
	})
	if err != nil || !t.Valid || claims.Type != "refresh" {
		return "", models.User{}, apperr.ErrInvalidRefresh
	}

	var stored models.RefreshToken
	err = s.DB.
		Where("token = ? AND revoked = ? AND expires_at > ?", raw, false, time.Now()).
		First(&stored).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", models.User{}, apperr.ErrInvalidRefresh
		}
		return "", models.User{}, apperr.Wrap(apperr.Internal, "look up refresh token", err)
	}

	var user models.User
	if err := s.DB.First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", models.User{}, apperr.ErrInvalidRefresh
		}
		return "", models.User{}, apperr.Wrap(apperr.Internal, "load user", err)
	}

	access, err := s.signAccess(user)
	if err != nil {
		return "", models.User{}, apperr.Wrap(apperr.Internal, "sign access token", err)
	}
	return access, user, nil
}

// RevokeAll marks every live refresh token of the user as revoked.
// Called on logout and on every login, so a fresh login supersedes
// all prior sessions.
func (s *Service) RevokeAll(userID uint) error {
	err := s.DB.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
	if err != nil {
		return apperr.Wrap(apperr.Internal, "revoke refresh tokens", err)
	}
	return nil
}

func (s *Service) signAccess(user models.User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.AccessSecret)
}
