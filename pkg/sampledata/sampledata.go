// Package sampledata seeds the catalog and the administrator account.
package sampledata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/musicstore/pkg/config"
	"github.com/dmitrymomot/musicstore/pkg/identity"
	"github.com/dmitrymomot/musicstore/pkg/store"
)

// Claim granted to the administrator.
const (
	ManageStoreClaim = "ManageStore"
	ManageStoreValue = "Allowed"
	AdminRole        = "Administrator"
)

// Options name the administrator account.
type Options struct {
	AdminUserName string `env:"DEFAULTADMINUSERNAME" envDefault:"Administrator@test.com"`
	AdminPassword string `env:"DEFAULTADMINPASSWORD" envDefault:"YouShouldChangeThisPassword1!"`
}

func LoadOptions(cfg *config.Configuration) (Options, error) {
	var opts Options
	if err := cfg.Bind(&opts); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Seeder fills an empty store.
type Seeder struct {
	db    store.Context
	users *identity.UserManager
	roles *identity.RoleManager
	opts  Options
	log   *slog.Logger
}

func New(db store.Context, users *identity.UserManager, roles *identity.RoleManager, opts Options, log *slog.Logger) *Seeder {
	return &Seeder{db: db, users: users, roles: roles, opts: opts, log: log.With(slog.String("component", "sampledata"))}
}

// Initialize migrates the schema, seeds the catalog when it has no genres
// and ensures the administrator exists with the ManageStore claim. Running
// it again changes nothing.
func (s *Seeder) Initialize(ctx context.Context) error {
	if err := s.db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := s.seedCatalog(ctx); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	if err := s.seedAdmin(ctx); err != nil {
		return fmt.Errorf("seed administrator: %w", err)
	}
	return nil
}

func (s *Seeder) seedCatalog(ctx context.Context) error {
	n, err := s.db.Genres().Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.DebugContext(ctx, "catalog already seeded", slog.Int("genres", n))
		return nil
	}

	genres := make(map[string]int, len(Genres))
	artists := make(map[string]int)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for _, name := range Genres {
			genre := &store.Genre{Name: name}
			if err := s.db.Genres().Create(gctx, genre); err != nil {
				return err
			}
			genres[name] = genre.ID
		}
		return nil
	})
	g.Go(func() error {
		for _, name := range artistNames() {
			artist := &store.Artist{Name: name}
			if err := s.db.Artists().Create(gctx, artist); err != nil {
				return err
			}
			artists[name] = artist.ID
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	for _, a := range Albums {
		album := &store.Album{
			GenreID:     genres[a.Genre],
			ArtistID:    artists[a.Artist],
			Title:       a.Title,
			Price:       a.Price,
			AlbumArtURL: "/Images/placeholder.svg",
		}
		if err := s.db.Albums().Create(ctx, album); err != nil {
			return err
		}
	}
	s.log.InfoContext(ctx, "catalog seeded",
		slog.Int("genres", len(genres)),
		slog.Int("artists", len(artists)),
		slog.Int("albums", len(Albums)),
	)
	return nil
}

func (s *Seeder) seedAdmin(ctx context.Context) error {
	exists, err := s.roles.Exists(ctx, AdminRole)
	if err != nil {
		return err
	}
	if !exists {
		if _, err := s.roles.Create(ctx, AdminRole); err != nil && !errors.Is(err, identity.ErrDuplicateRole) {
			return err
		}
	}

	user, err := s.users.FindByName(ctx, s.opts.AdminUserName)
	if errors.Is(err, identity.ErrUserNotFound) {
		user = &store.User{UserName: s.opts.AdminUserName, Email: s.opts.AdminUserName, EmailConfirmed: true}
		if err := s.users.Create(ctx, user, s.opts.AdminPassword); err != nil {
			return err
		}
		s.log.InfoContext(ctx, "administrator created", slog.String("user_name", user.UserName))
	} else if err != nil {
		return err
	}

	if err := s.users.AddToRole(ctx, user, AdminRole); err != nil {
		return err
	}
	claims, err := s.users.Claims(ctx, user)
	if err != nil {
		return err
	}
	if slices.ContainsFunc(claims, func(c identity.Claim) bool {
		return c.Type == ManageStoreClaim && c.Value == ManageStoreValue
	}) {
		return nil
	}
	return s.users.AddClaim(ctx, user, identity.Claim{Type: ManageStoreClaim, Value: ManageStoreValue})
}
