package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/musicstore/pkg/store"
)

type users struct{ pool *pgxpool.Pool }

const userColumns = `id, user_name, normalized_user_name, email, normalized_email, email_confirmed,
	phone_number, phone_number_confirmed, password_hash, security_stamp, created`

func (r users) one(ctx context.Context, where string, arg any) (*store.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE `+where+` = $1 LIMIT 1`, arg)
	if err != nil {
		return nil, mapError(err)
	}
	u, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByPos[store.User])
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r users) Create(ctx context.Context, u *store.User) error {
	return mapError(r.pool.QueryRow(ctx,
		`INSERT INTO users (id, user_name, normalized_user_name, email, normalized_email, email_confirmed,
			phone_number, phone_number_confirmed, password_hash, security_stamp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created`,
		u.ID, u.UserName, u.NormalizedUserName, u.Email, u.NormalizedEmail, u.EmailConfirmed,
		u.PhoneNumber, u.PhoneNumberConfirmed, u.PasswordHash, u.SecurityStamp,
	).Scan(&u.Created))
}

func (r users) Update(ctx context.Context, u *store.User) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET user_name = $2, normalized_user_name = $3, email = $4, normalized_email = $5,
			email_confirmed = $6, phone_number = $7, phone_number_confirmed = $8,
			password_hash = $9, security_stamp = $10
		 WHERE id = $1`,
		u.ID, u.UserName, u.NormalizedUserName, u.Email, u.NormalizedEmail,
		u.EmailConfirmed, u.PhoneNumber, u.PhoneNumberConfirmed, u.PasswordHash, u.SecurityStamp,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r users) Get(ctx context.Context, id string) (*store.User, error) {
	return r.one(ctx, "id", id)
}

func (r users) GetByNormalizedName(ctx context.Context, name string) (*store.User, error) {
	return r.one(ctx, "normalized_user_name", name)
}

func (r users) GetByNormalizedEmail(ctx context.Context, email string) (*store.User, error) {
	if email == "" {
		return nil, store.ErrNotFound
	}
	return r.one(ctx, "normalized_email", email)
}

func (r users) AddClaim(ctx context.Context, c *store.UserClaim) error {
	return mapError(r.pool.QueryRow(ctx,
		`INSERT INTO user_claims (user_id, type, value) VALUES ($1, $2, $3) RETURNING id`,
		c.UserID, c.Type, c.Value,
	).Scan(&c.ID))
}

func (r users) Claims(ctx context.Context, userID string) ([]store.UserClaim, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, user_id, type, value FROM user_claims WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[store.UserClaim])
	return out, mapError(err)
}

func (r users) AddLogin(ctx context.Context, l store.UserLogin) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_logins (login_provider, provider_key, display_name, user_id) VALUES ($1, $2, $3, $4)`,
		l.LoginProvider, l.ProviderKey, l.DisplayName, l.UserID,
	)
	return mapError(err)
}

func (r users) FindByLogin(ctx context.Context, provider, key string) (*store.User, error) {
	var userID string
	err := r.pool.QueryRow(ctx,
		`SELECT user_id FROM user_logins WHERE login_provider = $1 AND provider_key = $2`,
		provider, key,
	).Scan(&userID)
	if err != nil {
		return nil, mapError(err)
	}
	return r.Get(ctx, userID)
}

func (r users) Logins(ctx context.Context, userID string) ([]store.UserLogin, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT login_provider, provider_key, display_name, user_id FROM user_logins WHERE user_id = $1`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[store.UserLogin])
	return out, mapError(err)
}

func (r users) AddToRole(ctx context.Context, userID, roleID string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`, userID, roleID)
	return mapError(err)
}

func (r users) Roles(ctx context.Context, userID string) ([]store.Role, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.name, r.normalized_name
		 FROM roles r JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = $1
		 ORDER BY r.name`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[store.Role])
	return out, mapError(err)
}

type roles struct{ pool *pgxpool.Pool }

func (r roles) Create(ctx context.Context, role *store.Role) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO roles (id, name, normalized_name) VALUES ($1, $2, $3)`,
		role.ID, role.Name, role.NormalizedName,
	)
	return mapError(err)
}

func (r roles) GetByNormalizedName(ctx context.Context, name string) (*store.Role, error) {
	var role store.Role
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, normalized_name FROM roles WHERE normalized_name = $1`, name,
	).Scan(&role.ID, &role.Name, &role.NormalizedName)
	if err != nil {
		return nil, mapError(err)
	}
	return &role, nil
}
