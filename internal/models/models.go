package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"unique;not null"          json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	FirstName    string    `gorm:"not null"                 json:"firstName"`
	LastName     string    `gorm:"not null"                 json:"lastName"`
	Role         string    `gorm:"not null;default:user"    json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"          json:"id"`
	Token     string    `gorm:"unique;not null"     json:"token"`
	UserID    uint      `gorm:"index;not null"      json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"            json:"expires_at"`
	Revoked   bool      `gorm:"default:false"       json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

type Movie struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"not null"                 json:"title"`
	Director    string    `gorm:"not null"                 json:"director"`
	ReleaseYear int       `gorm:"not null"                 json:"releaseYear"`
	Genre       string    `gorm:"not null"                 json:"genre"`
	Rating      float64   `gorm:"not null"                 json:"rating"`
	Available   bool      `gorm:"default:true"             json:"available"`
	RentalPrice float64   `gorm:"not null"                 json:"rentalPrice"`
	CoverImage  string    `json:"coverImage,omitempty"`
	Actors      []Actor   `gorm:"many2many:movie_actors;constraint:OnDelete:CASCADE" json:"actors,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Actor struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"not null"                 json:"name"`
	BirthDate   time.Time `gorm:"not null"                 json:"birthDate"`
	Nationality string    `gorm:"not null"                 json:"nationality"`
	Biography   string    `gorm:"not null;type:text"       json:"biography"`
	Movies      []Movie   `gorm:"many2many:movie_actors;constraint:OnDelete:CASCADE" json:"movies,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
