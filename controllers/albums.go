package controllers

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/musicstore/internal"
	"github.com/dmitrymomot/musicstore/pkg/mvc"
	"github.com/dmitrymomot/musicstore/pkg/store"
)

// Albums is the JSON API reached through the {controller}/{id?} route.
// The action is chosen by HTTP method.
type Albums struct {
	db store.Context
}

func NewAlbums(db store.Context) *Albums {
	return &Albums{db: db}
}

func (a *Albums) Register(c *mvc.Controllers) {
	c.Register("", "Albums", mvc.GET("Get", a.get))
}

func (a *Albums) get(c internal.Context) error {
	if c.Param("id") != "" {
		id, ok := internal.ParamOK[int](c, "id")
		if !ok {
			return internal.ErrNotFound("album not found")
		}
		album, err := a.db.Albums().Get(c, id)
		if errors.Is(err, store.ErrNotFound) {
			return internal.ErrNotFound("album not found")
		}
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, album)
	}

	genreID := internal.QueryDefault(c, "genreId", 0)
	albums, err := a.db.Albums().List(c, store.AlbumFilter{GenreID: genreID})
	if err != nil {
		return err
	}
	if albums == nil {
		albums = []store.Album{}
	}
	return c.JSON(http.StatusOK, albums)
}
