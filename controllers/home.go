package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrymomot/musicstore/internal"
	"github.com/dmitrymomot/musicstore/pkg/cache"
	"github.com/dmitrymomot/musicstore/pkg/mvc"
	"github.com/dmitrymomot/musicstore/pkg/store"
)

// Top selling albums are cached under this key.
const (
	TopSellingKey   = "topselling"
	topSellingCount = 6
	topSellingTTL   = 10 * time.Minute
)

// Home serves the landing page and the error pages.
type Home struct {
	db    store.Context
	cache cache.Cache[[]store.Album]
}

func NewHome(db store.Context, c cache.Cache[[]store.Album]) *Home {
	return &Home{db: db, cache: c}
}

func (h *Home) Register(c *mvc.Controllers) {
	c.Register("", "Home",
		mvc.GET("Index", h.index),
		mvc.Any("StatusCodePage", h.statusCodePage),
		mvc.Any("Error", h.error),
	)
}

func (h *Home) index(c internal.Context) error {
	albums, err := cache.GetOrSet(c, h.cache, TopSellingKey, func(ctx context.Context) ([]store.Album, time.Duration, error) {
		albums, err := h.db.Albums().List(ctx, store.AlbumFilter{Limit: topSellingCount})
		return albums, topSellingTTL, err
	})
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, "home/index", "Home Page", albums)
}

// statusCodePage is the target of status code page redirects. An optional
// ?code= names the original status.
func (h *Home) statusCodePage(c internal.Context) error {
	code := internal.Query[int](c, "code")
	var model any
	if code >= http.StatusBadRequest {
		model = code
	}
	return render(c, http.StatusOK, "home/statuscodepage", "Status Code Page", model)
}

func (h *Home) error(c internal.Context) error {
	return render(c, http.StatusOK, "home/error", "Error", nil)
}
