package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/musicstore/internal"
	"github.com/dmitrymomot/musicstore/pkg/cache"
	"github.com/dmitrymomot/musicstore/pkg/mvc"
	"github.com/dmitrymomot/musicstore/pkg/realtime"
	"github.com/dmitrymomot/musicstore/pkg/sanitizer"
	"github.com/dmitrymomot/musicstore/pkg/store"
	"github.com/dmitrymomot/musicstore/pkg/validator"
)

// AdminArea is the area the store manager lives in.
const AdminArea = "Admin"

const (
	maxAlbumPrice  = 100.0
	maxTitleLength = 160
)

// StoreManager lists and creates albums. Every action runs behind guard.
type StoreManager struct {
	db        store.Context
	cache     cache.Cache[[]store.Album]
	announcer *realtime.Announcer
	guard     internal.Middleware
	now       func() time.Time
}

func NewStoreManager(db store.Context, c cache.Cache[[]store.Album], announcer *realtime.Announcer, guard internal.Middleware) *StoreManager {
	return &StoreManager{db: db, cache: c, announcer: announcer, guard: guard, now: time.Now}
}

func (m *StoreManager) Register(c *mvc.Controllers) {
	c.Register(AdminArea, "StoreManager",
		mvc.GET("Index", m.index, m.guard),
		mvc.POST("Create", m.create, m.guard),
	)
}

type storeManagerModel struct {
	Albums  []store.Album
	Genres  []store.Genre
	Artists []store.Artist
}

func (m *StoreManager) index(c internal.Context) error {
	var model storeManagerModel
	var err error
	if model.Albums, err = m.db.Albums().List(c, store.AlbumFilter{}); err != nil {
		return err
	}
	if model.Genres, err = m.db.Genres().List(c); err != nil {
		return err
	}
	if model.Artists, err = m.db.Artists().List(c); err != nil {
		return err
	}
	return render(c, http.StatusOK, "admin/storemanager", "Store Manager", model)
}

// create stores a new album, drops the top selling cache and announces the
// album to connected browsers.
func (m *StoreManager) create(c internal.Context) error {
	album, err := m.parseAlbum(c)
	if err != nil {
		return err
	}
	if err := m.db.Albums().Create(c, album); err != nil {
		return err
	}
	c.LogInfo("album created", slog.Int("album_id", album.ID), slog.String("title", album.Title))

	if err := m.cache.Delete(c, TopSellingKey); err != nil {
		c.LogWarn("top selling cache not cleared", slog.Any("error", err))
	}
	if err := m.announcer.Announce(*album); err != nil {
		c.LogWarn("album announcement failed", slog.Any("error", err))
	}
	return c.Redirect(http.StatusSeeOther, "/Admin/StoreManager")
}

func (m *StoreManager) parseAlbum(c internal.Context) (*store.Album, error) {
	title := sanitizer.Line(c.Form("Title"))
	price, priceErr := strconv.ParseFloat(strings.TrimSpace(c.Form("Price")), 64)
	genreID, genreErr := strconv.Atoi(c.Form("GenreId"))
	artistID, artistErr := strconv.Atoi(c.Form("ArtistId"))

	err := validator.Apply(
		validator.RequiredString("Title", title),
		validator.MaxLenString("Title", title, maxTitleLength),
		validator.Custom("Price", priceErr == nil, "must be a number"),
		validator.MinNum("Price", price, 0.01),
		validator.MaxNum("Price", price, maxAlbumPrice),
		validator.Custom("GenreId", genreErr == nil, "is required"),
		validator.Custom("ArtistId", artistErr == nil, "is required"),
	)
	if err != nil {
		return nil, internal.ErrBadRequest(err.Error(), internal.WithError(err))
	}

	if _, err := m.db.Genres().Get(c, genreID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, internal.ErrBadRequest("unknown genre")
		}
		return nil, err
	}
	if _, err := m.db.Artists().Get(c, artistID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, internal.ErrBadRequest("unknown artist")
		}
		return nil, err
	}

	return &store.Album{
		GenreID:     genreID,
		ArtistID:    artistID,
		Title:       title,
		Price:       price,
		AlbumArtURL: "/Images/placeholder.svg",
		Created:     m.now().UTC(),
	}, nil
}
