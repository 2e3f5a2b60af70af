package store

import "time"

type Genre struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Artist struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Album struct {
	ID          int       `json:"id"`
	GenreID     int       `json:"genre_id"`
	ArtistID    int       `json:"artist_id"`
	Title       string    `json:"title"`
	Price       float64   `json:"price"`
	AlbumArtURL string    `json:"album_art_url"`
	Created     time.Time `json:"created"`
}

// AlbumFilter narrows Albums().List. Zero values match everything.
type AlbumFilter struct {
	GenreID int
	Limit   int
}

// User is an application account.
type User struct {
	ID                   string    `json:"id"`
	UserName             string    `json:"user_name"`
	NormalizedUserName   string    `json:"-"`
	Email                string    `json:"email"`
	NormalizedEmail      string    `json:"-"`
	EmailConfirmed       bool      `json:"email_confirmed"`
	PhoneNumber          string    `json:"phone_number,omitempty"`
	PhoneNumberConfirmed bool      `json:"phone_number_confirmed"`
	PasswordHash         string    `json:"-"`
	SecurityStamp        string    `json:"-"`
	Created              time.Time `json:"created"`
}

type Role struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	NormalizedName string `json:"-"`
}

type UserClaim struct {
	ID     int    `json:"id"`
	UserID string `json:"user_id"`
	Type   string `json:"type"`
	Value  string `json:"value"`
}

// UserLogin links a user to an external identity provider account.
type UserLogin struct {
	LoginProvider string `json:"login_provider"`
	ProviderKey   string `json:"provider_key"`
	DisplayName   string `json:"display_name"`
	UserID        string `json:"user_id"`
}
