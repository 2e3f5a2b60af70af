package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/musicstore/pkg/authz"
	"github.com/dmitrymomot/musicstore/pkg/identity"
)

func manageStoreOptions() *authz.Options {
	opts := authz.NewOptions()
	opts.AddPolicy("ManageStore", authz.NewPolicyBuilder().RequireClaim("ManageStore", "Allowed").Build())
	return opts
}

func TestAuthorize_ManageStore(t *testing.T) {
	t.Parallel()

	a := authz.New(manageStoreOptions())

	tests := []struct {
		name      string
		principal *identity.Principal
		want      authz.Decision
	}{
		{
			name:      "anonymous is challenged",
			principal: identity.NewPrincipal(""),
			want:      authz.Challenge,
		},
		{
			name:      "signed in without claim is forbidden",
			principal: identity.NewPrincipal(identity.ApplicationScheme),
			want:      authz.Forbid,
		},
		{
			name: "wrong claim value is forbidden",
			principal: identity.NewPrincipal(identity.ApplicationScheme,
				identity.Claim{Type: "ManageStore", Value: "Denied"}),
			want: authz.Forbid,
		},
		{
			name: "allowed claim passes",
			principal: identity.NewPrincipal(identity.ApplicationScheme,
				identity.Claim{Type: "ManageStore", Value: "Denied"},
				identity.Claim{Type: "ManageStore", Value: "Allowed"}),
			want: authz.Allowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := a.Authorize(tt.principal, "ManageStore")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, got.String())
		})
	}
}

func TestAuthorize_UnknownPolicy(t *testing.T) {
	t.Parallel()

	got, err := authz.New(authz.NewOptions()).Authorize(identity.NewPrincipal("x"), "Missing")
	require.ErrorIs(t, err, authz.ErrPolicyNotFound)
	assert.Equal(t, authz.Forbid, got)
}

func TestPolicyBuilder(t *testing.T) {
	t.Parallel()

	pol := authz.NewPolicyBuilder().
		RequireAuthenticatedUser().
		RequireRole("Administrator", "Manager").
		RequireClaim("email").
		Build()
	require.Len(t, pol.Requirements, 3)

	p := identity.NewPrincipal(identity.ApplicationScheme,
		identity.Claim{Type: identity.ClaimRole, Value: "Manager"},
		identity.Claim{Type: identity.ClaimEmail, Value: "m@test.com"},
	)
	assert.Equal(t, authz.Allowed, authz.Evaluate(p, pol))

	p = identity.NewPrincipal(identity.ApplicationScheme, identity.Claim{Type: identity.ClaimRole, Value: "Manager"})
	assert.Equal(t, authz.Forbid, authz.Evaluate(p, pol))

	custom := authz.NewPolicyBuilder().Require(authz.RequirementFunc(func(p *identity.Principal) bool {
		return p.Name() == "root"
	})).Build()
	assert.Equal(t, authz.Challenge, authz.Evaluate(identity.NewPrincipal(""), custom))
}
