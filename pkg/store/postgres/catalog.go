package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/musicstore/pkg/store"
)

type genres struct{ pool *pgxpool.Pool }

func (r genres) List(ctx context.Context) ([]store.Genre, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description FROM genres ORDER BY id`)
	if err != nil {
		return nil, mapError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[store.Genre])
	return out, mapError(err)
}

func (r genres) Get(ctx context.Context, id int) (*store.Genre, error) {
	var g store.Genre
	err := r.pool.QueryRow(ctx, `SELECT id, name, description FROM genres WHERE id = $1`, id).
		Scan(&g.ID, &g.Name, &g.Description)
	if err != nil {
		return nil, mapError(err)
	}
	return &g, nil
}

func (r genres) GetByName(ctx context.Context, name string) (*store.Genre, error) {
	var g store.Genre
	err := r.pool.QueryRow(ctx, `SELECT id, name, description FROM genres WHERE lower(name) = lower($1)`, name).
		Scan(&g.ID, &g.Name, &g.Description)
	if err != nil {
		return nil, mapError(err)
	}
	return &g, nil
}

func (r genres) Create(ctx context.Context, g *store.Genre) error {
	return mapError(r.pool.QueryRow(ctx,
		`INSERT INTO genres (name, description) VALUES ($1, $2) RETURNING id`,
		g.Name, g.Description,
	).Scan(&g.ID))
}

func (r genres) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM genres`).Scan(&n)
	return n, mapError(err)
}

type artists struct{ pool *pgxpool.Pool }

func (r artists) List(ctx context.Context) ([]store.Artist, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM artists ORDER BY id`)
	if err != nil {
		return nil, mapError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[store.Artist])
	return out, mapError(err)
}

func (r artists) Get(ctx context.Context, id int) (*store.Artist, error) {
	var a store.Artist
	if err := r.pool.QueryRow(ctx, `SELECT id, name FROM artists WHERE id = $1`, id).Scan(&a.ID, &a.Name); err != nil {
		return nil, mapError(err)
	}
	return &a, nil
}

func (r artists) GetByName(ctx context.Context, name string) (*store.Artist, error) {
	var a store.Artist
	if err := r.pool.QueryRow(ctx, `SELECT id, name FROM artists WHERE lower(name) = lower($1)`, name).Scan(&a.ID, &a.Name); err != nil {
		return nil, mapError(err)
	}
	return &a, nil
}

func (r artists) Create(ctx context.Context, a *store.Artist) error {
	return mapError(r.pool.QueryRow(ctx, `INSERT INTO artists (name) VALUES ($1) RETURNING id`, a.Name).Scan(&a.ID))
}

type albums struct{ pool *pgxpool.Pool }

const albumColumns = `id, genre_id, artist_id, title, price, album_art_url, created`

func (r albums) List(ctx context.Context, f store.AlbumFilter) ([]store.Album, error) {
	limit := any(nil)
	if f.Limit > 0 {
		limit = f.Limit
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+albumColumns+` FROM albums
		 WHERE ($1 = 0 OR genre_id = $1)
		 ORDER BY id
		 LIMIT $2`,
		f.GenreID, limit,
	)
	if err != nil {
		return nil, mapError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[store.Album])
	return out, mapError(err)
}

func (r albums) Get(ctx context.Context, id int) (*store.Album, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+albumColumns+` FROM albums WHERE id = $1`, id)
	if err != nil {
		return nil, mapError(err)
	}
	a, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByPos[store.Album])
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

func (r albums) Create(ctx context.Context, a *store.Album) error {
	return mapError(r.pool.QueryRow(ctx,
		`INSERT INTO albums (genre_id, artist_id, title, price, album_art_url)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created`,
		a.GenreID, a.ArtistID, a.Title, a.Price, a.AlbumArtURL,
	).Scan(&a.ID, &a.Created))
}

func (r albums) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM albums`).Scan(&n)
	return n, mapError(err)
}
