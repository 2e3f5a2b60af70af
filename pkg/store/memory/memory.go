// Package memory is an in-process store.Context backed by maps.
// Data lives only as long as the process.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/musicstore/pkg/store"
)

// Store implements store.Context.
type Store struct {
	mu sync.RWMutex

	genres  map[int]store.Genre
	artists map[int]store.Artist
	albums  map[int]store.Album
	users   map[string]store.User
	roles   map[string]store.Role
	claims  []store.UserClaim
	logins  []store.UserLogin
	members map[string]map[string]struct{} // userID -> roleIDs

	seq    int
	closed bool
}

var _ store.Context = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		genres:  make(map[int]store.Genre),
		artists: make(map[int]store.Artist),
		albums:  make(map[int]store.Album),
		users:   make(map[string]store.User),
		roles:   make(map[string]store.Role),
		members: make(map[string]map[string]struct{}),
	}
}

func (s *Store) Genres() store.GenreRepository   { return genres{s} }
func (s *Store) Artists() store.ArtistRepository { return artists{s} }
func (s *Store) Albums() store.AlbumRepository   { return albums{s} }
func (s *Store) Users() store.UserRepository     { return users{s} }
func (s *Store) Roles() store.RoleRepository     { return roles{s} }

func (s *Store) Provider() store.Provider { return store.ProviderMemory }

// Migrate is a no-op: maps need no schema.
func (s *Store) Migrate(context.Context) error { return nil }

func (s *Store) PendingMigrations(context.Context) ([]string, error) { return nil, nil }

func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return store.ErrClosed
	}
	return ctx.Err()
}

func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *Store) next() int {
	s.seq++
	return s.seq
}

func sortedValues[K comparable, V any](m map[K]V, key func(V) int) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b V) int { return cmp.Compare(key(a), key(b)) })
	return out
}

type genres struct{ s *Store }

func (r genres) List(context.Context) ([]store.Genre, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.genres, func(g store.Genre) int { return g.ID }), nil
}

func (r genres) Get(_ context.Context, id int) (*store.Genre, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	g, ok := r.s.genres[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &g, nil
}

func (r genres) GetByName(_ context.Context, name string) (*store.Genre, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, g := range r.s.genres {
		if strings.EqualFold(g.Name, name) {
			return &g, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r genres) Create(_ context.Context, g *store.Genre) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.genres {
		if strings.EqualFold(existing.Name, g.Name) {
			return store.ErrDuplicate
		}
	}
	g.ID = r.s.next()
	r.s.genres[g.ID] = *g
	return nil
}

func (r genres) Count(context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.genres), nil
}

type artists struct{ s *Store }

func (r artists) List(context.Context) ([]store.Artist, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.artists, func(a store.Artist) int { return a.ID }), nil
}

func (r artists) Get(_ context.Context, id int) (*store.Artist, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.artists[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (r artists) GetByName(_ context.Context, name string) (*store.Artist, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.artists {
		if strings.EqualFold(a.Name, name) {
			return &a, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r artists) Create(_ context.Context, a *store.Artist) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.artists {
		if strings.EqualFold(existing.Name, a.Name) {
			return store.ErrDuplicate
		}
	}
	a.ID = r.s.next()
	r.s.artists[a.ID] = *a
	return nil
}

type albums struct{ s *Store }

func (r albums) List(_ context.Context, f store.AlbumFilter) ([]store.Album, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := sortedValues(r.s.albums, func(a store.Album) int { return a.ID })
	out := all[:0]
	for _, a := range all {
		if f.GenreID != 0 && a.GenreID != f.GenreID {
			continue
		}
		out = append(out, a)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (r albums) Get(_ context.Context, id int) (*store.Album, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.albums[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (r albums) Create(_ context.Context, a *store.Album) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.genres[a.GenreID]; !ok {
		return store.ErrNotFound
	}
	if _, ok := r.s.artists[a.ArtistID]; !ok {
		return store.ErrNotFound
	}
	a.ID = r.s.next()
	if a.Created.IsZero() {
		a.Created = time.Now().UTC()
	}
	r.s.albums[a.ID] = *a
	return nil
}

func (r albums) Count(context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.albums), nil
}

type users struct{ s *Store }

func (r users) Create(_ context.Context, u *store.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; ok {
		return store.ErrDuplicate
	}
	for _, existing := range r.s.users {
		if existing.NormalizedUserName == u.NormalizedUserName {
			return store.ErrDuplicate
		}
	}
	if u.Created.IsZero() {
		u.Created = time.Now().UTC()
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r users) Update(_ context.Context, u *store.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return store.ErrNotFound
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r users) Get(_ context.Context, id string) (*store.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (r users) find(match func(store.User) bool) (*store.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r users) GetByNormalizedName(_ context.Context, name string) (*store.User, error) {
	return r.find(func(u store.User) bool { return u.NormalizedUserName == name })
}

func (r users) GetByNormalizedEmail(_ context.Context, email string) (*store.User, error) {
	return r.find(func(u store.User) bool { return email != "" && u.NormalizedEmail == email })
}

func (r users) AddClaim(_ context.Context, c *store.UserClaim) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[c.UserID]; !ok {
		return store.ErrNotFound
	}
	c.ID = r.s.next()
	r.s.claims = append(r.s.claims, *c)
	return nil
}

func (r users) Claims(_ context.Context, userID string) ([]store.UserClaim, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []store.UserClaim
	for _, c := range r.s.claims {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r users) AddLogin(_ context.Context, l store.UserLogin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[l.UserID]; !ok {
		return store.ErrNotFound
	}
	for _, existing := range r.s.logins {
		if existing.LoginProvider == l.LoginProvider && existing.ProviderKey == l.ProviderKey {
			return store.ErrDuplicate
		}
	}
	r.s.logins = append(r.s.logins, l)
	return nil
}

func (r users) FindByLogin(_ context.Context, provider, key string) (*store.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, l := range r.s.logins {
		if l.LoginProvider == provider && l.ProviderKey == key {
			if u, ok := r.s.users[l.UserID]; ok {
				return &u, nil
			}
		}
	}
	return nil, store.ErrNotFound
}

func (r users) Logins(_ context.Context, userID string) ([]store.UserLogin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []store.UserLogin
	for _, l := range r.s.logins {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r users) AddToRole(_ context.Context, userID, roleID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return store.ErrNotFound
	}
	if _, ok := r.s.roles[roleID]; !ok {
		return store.ErrNotFound
	}
	set, ok := r.s.members[userID]
	if !ok {
		set = make(map[string]struct{})
		r.s.members[userID] = set
	}
	if _, ok := set[roleID]; ok {
		return store.ErrDuplicate
	}
	set[roleID] = struct{}{}
	return nil
}

func (r users) Roles(_ context.Context, userID string) ([]store.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]store.Role, 0, len(r.s.members[userID]))
	for id := range r.s.members[userID] {
		out = append(out, r.s.roles[id])
	}
	slices.SortFunc(out, func(a, b store.Role) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

type roles struct{ s *Store }

func (r roles) Create(_ context.Context, role *store.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.roles {
		if existing.NormalizedName == role.NormalizedName {
			return store.ErrDuplicate
		}
	}
	r.s.roles[role.ID] = *role
	return nil
}

func (r roles) GetByNormalizedName(_ context.Context, name string) (*store.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, role := range r.s.roles {
		if role.NormalizedName == name {
			return &role, nil
		}
	}
	return nil, store.ErrNotFound
}
