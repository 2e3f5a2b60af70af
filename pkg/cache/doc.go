// Package cache stores values behind one generic Cache interface with an
// in-memory backend and a Redis backend.
//
// New picks the backend from Config: Redis when a client is available,
// memory otherwise.
//
//	albums := cache.New[[]store.Album](cfg, client, "albums")
//	top, err := cache.GetOrSet(ctx, albums, "top-selling", func(ctx context.Context) ([]store.Album, time.Duration, error) {
//		list, err := db.Albums().List(ctx, store.AlbumFilter{Limit: 6})
//		return list, 10 * time.Minute, err
//	})
//
// Memory expiry is lazy. Expired entries vanish on access or when Purge
// runs, either from a scheduler or from the goroutine started by
// WithCleanupInterval.
package cache
