package controllers

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/musicstore/internal"
	"github.com/dmitrymomot/musicstore/pkg/mvc"
	"github.com/dmitrymomot/musicstore/pkg/store"
)

// lastViewedKey remembers the last album a visitor opened.
const lastViewedKey = "LastViewedAlbum"

// Store lets visitors browse genres and albums.
type Store struct {
	db store.Context
}

func NewStore(db store.Context) *Store {
	return &Store{db: db}
}

func (s *Store) Register(c *mvc.Controllers) {
	c.Register("", "Store",
		mvc.GET("Index", s.index),
		mvc.GET("Browse", s.browse),
		mvc.GET("Details", s.details),
	)
}

type storeIndex struct {
	Genres     []store.Genre
	LastViewed *store.Album
}

func (s *Store) index(c internal.Context) error {
	genres, err := s.db.Genres().List(c)
	if err != nil {
		return err
	}
	model := storeIndex{Genres: genres}

	if sess, err := c.Session(); err == nil {
		if id, ok := sess.GetInt(lastViewedKey); ok {
			if a, err := s.db.Albums().Get(c, id); err == nil {
				model.LastViewed = a
			}
		}
	}
	return render(c, http.StatusOK, "store/index", "Store", model)
}

type storeBrowse struct {
	Genre  *store.Genre
	Albums []store.Album
}

func (s *Store) browse(c internal.Context) error {
	name := c.Query("genre")
	if name == "" {
		return internal.ErrBadRequest("genre is required")
	}
	g, err := s.db.Genres().GetByName(c, name)
	if errors.Is(err, store.ErrNotFound) {
		return internal.ErrNotFound("genre not found")
	}
	if err != nil {
		return err
	}
	albums, err := s.db.Albums().List(c, store.AlbumFilter{GenreID: g.ID})
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, "store/browse", "Browse Albums", storeBrowse{Genre: g, Albums: albums})
}

type storeDetails struct {
	Album  *store.Album
	Genre  *store.Genre
	Artist *store.Artist
}

func (s *Store) details(c internal.Context) error {
	id, ok := internal.ParamOK[int](c, "id")
	if !ok {
		return internal.ErrNotFound("album not found")
	}
	a, err := s.db.Albums().Get(c, id)
	if errors.Is(err, store.ErrNotFound) {
		return internal.ErrNotFound("album not found")
	}
	if err != nil {
		return err
	}

	m := storeDetails{Album: a}
	if m.Genre, err = s.db.Genres().Get(c, a.GenreID); err != nil {
		return err
	}
	if m.Artist, err = s.db.Artists().Get(c, a.ArtistID); err != nil {
		return err
	}

	if sess, err := c.Session(); err == nil {
		sess.SetInt(lastViewedKey, a.ID)
	}
	return render(c, http.StatusOK, "store/details", "Album - "+a.Title, m)
}
