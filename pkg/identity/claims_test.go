package identity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/musicstore/pkg/identity"
)

func TestPrincipal(t *testing.T) {
	t.Parallel()

	p := identity.NewPrincipal(identity.ApplicationScheme,
		identity.Claim{Type: identity.ClaimNameIdentifier, Value: "42"},
		identity.Claim{Type: identity.ClaimName, Value: "Administrator@test.com"},
		identity.Claim{Type: identity.ClaimRole, Value: "Administrator"},
	)
	p.AddClaim(identity.Claim{Type: "ManageStore", Value: "Allowed"})

	assert.True(t, p.IsAuthenticated())
	assert.Equal(t, "42", p.ID())
	assert.Equal(t, "Administrator@test.com", p.Name())
	assert.True(t, p.IsInRole("Administrator"))
	assert.True(t, p.HasClaim("ManageStore", "Allowed"))
	assert.False(t, p.HasClaim("ManageStore", "Denied"))
	assert.Len(t, p.FindAll(identity.ClaimRole), 1)

	_, ok := p.FindFirst("missing")
	assert.False(t, ok)
}

func TestPrincipal_Anonymous(t *testing.T) {
	t.Parallel()

	var nilPrincipal *identity.Principal
	assert.False(t, nilPrincipal.IsAuthenticated())
	assert.Empty(t, nilPrincipal.ID())

	p := identity.PrincipalFromContext(context.Background())
	assert.False(t, p.IsAuthenticated())

	ctx := identity.WithPrincipal(context.Background(), identity.NewPrincipal("test", identity.Claim{Type: identity.ClaimNameIdentifier, Value: "1"}))
	assert.Equal(t, "1", identity.PrincipalFromContext(ctx).ID())
}
