package sampledata_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/musicstore/pkg/identity"
	"github.com/dmitrymomot/musicstore/pkg/logger"
	"github.com/dmitrymomot/musicstore/pkg/sampledata"
	"github.com/dmitrymomot/musicstore/pkg/store"
	"github.com/dmitrymomot/musicstore/pkg/store/memory"
)

func TestSeeder_Initialize(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := memory.New()
	users := identity.NewUserManager(db, identity.DefaultOptions(),
		identity.WithPasswordHasher(identity.BcryptHasher{Cost: bcrypt.MinCost}),
		identity.WithLogger(logger.NewNope()),
	)
	opts := sampledata.Options{AdminUserName: "Administrator@test.com", AdminPassword: "YouShouldChangeThisPassword1!"}
	s := sampledata.New(db, users, identity.NewRoleManager(db), opts, logger.NewNope())

	require.NoError(t, s.Initialize(ctx))
	// A second run must not duplicate anything.
	require.NoError(t, s.Initialize(ctx))

	genres, err := db.Genres().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(sampledata.Genres), genres)

	albums, err := db.Albums().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(sampledata.Albums), albums)

	rock, err := db.Genres().GetByName(ctx, "rock")
	require.NoError(t, err)
	list, err := db.Albums().List(ctx, store.AlbumFilter{GenreID: rock.ID})
	require.NoError(t, err)
	assert.Len(t, list, 3)

	admin, err := users.FindByName(ctx, opts.AdminUserName)
	require.NoError(t, err)
	assert.True(t, users.CheckPassword(admin, opts.AdminPassword))

	inRole, err := users.IsInRole(ctx, admin, sampledata.AdminRole)
	require.NoError(t, err)
	assert.True(t, inRole)

	claims, err := users.Claims(ctx, admin)
	require.NoError(t, err)
	n := 0
	for _, c := range claims {
		if c.Type == sampledata.ManageStoreClaim && c.Value == sampledata.ManageStoreValue {
			n++
		}
	}
	assert.Equal(t, 1, n)
}
