package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/musicstore/pkg/config"
	"github.com/dmitrymomot/musicstore/pkg/store"
)

func testUser() *store.User {
	return &store.User{
		ID:            "user-1",
		UserName:      "Administrator@test.com",
		Email:         "Administrator@test.com",
		PhoneNumber:   "+15550100",
		SecurityStamp: "stamp-1",
	}
}

func TestDataProtectorTokenProvider(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	p := NewDataProtectorTokenProvider([]byte("0123456789abcdef0123456789abcdef"), 24*time.Hour)
	p.now = func() time.Time { return now }

	user := testUser()
	token, err := p.Generate(ctx, "ResetPassword", user)
	require.NoError(t, err)

	assert.True(t, p.Validate(ctx, "ResetPassword", token, user))
	assert.False(t, p.Validate(ctx, "Confirmation", token, user), "purpose is bound")

	other := testUser()
	other.ID = "user-2"
	assert.False(t, p.Validate(ctx, "ResetPassword", token, other), "subject is bound")

	restamped := testUser()
	restamped.SecurityStamp = "stamp-2"
	assert.False(t, p.Validate(ctx, "ResetPassword", token, restamped), "security stamp is bound")

	p.now = func() time.Time { return now.Add(25 * time.Hour) }
	assert.False(t, p.Validate(ctx, "ResetPassword", token, user), "expired")

	assert.False(t, p.Validate(ctx, "ResetPassword", "not-a-token", user))
}

func TestCodeTokenProvider(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	for _, p := range []*CodeTokenProvider{NewEmailTokenProvider(3 * time.Minute), NewPhoneNumberTokenProvider(3 * time.Minute)} {
		t.Run(p.Name(), func(t *testing.T) {
			t.Parallel()

			p.now = func() time.Time { return now }
			user := testUser()

			code, err := p.Generate(ctx, "TwoFactor", user)
			require.NoError(t, err)
			assert.Len(t, code, 6)

			assert.True(t, p.Validate(ctx, "TwoFactor", code, user))
			assert.False(t, p.Validate(ctx, "Other", code, user))

			p.now = func() time.Time { return now.Add(3 * time.Minute) }
			assert.True(t, p.Validate(ctx, "TwoFactor", code, user), "previous step still accepted")

			p.now = func() time.Time { return now.Add(7 * time.Minute) }
			assert.False(t, p.Validate(ctx, "TwoFactor", code, user), "two steps later")
		})
	}
}

func TestCodeTokenProvider_NoDestination(t *testing.T) {
	t.Parallel()

	p := NewPhoneNumberTokenProvider(3 * time.Minute)
	user := testUser()
	user.PhoneNumber = ""

	_, err := p.Generate(context.Background(), "TwoFactor", user)
	require.ErrorIs(t, err, ErrNoDestination)
	assert.False(t, p.Validate(context.Background(), "TwoFactor", "000000", user))
}

func TestCodeTokenProvider_SubSecondStep(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	p := NewEmailTokenProvider(500 * time.Millisecond)
	p.now = func() time.Time { return now }
	user := testUser()

	code, err := p.Generate(ctx, "TwoFactor", user)
	require.NoError(t, err)
	assert.True(t, p.Validate(ctx, "TwoFactor", code, user))

	p.now = func() time.Time { return now.Add(time.Second) }
	assert.False(t, p.Validate(ctx, "TwoFactor", code, user))
}

func TestLoadOptions_CodeStep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		step    string
		wantErr bool
	}{
		{"3m", false},
		{"1s", false},
		{"500ms", true},
		{"0s", true},
	}
	for _, tt := range tests {
		t.Run(tt.step, func(t *testing.T) {
			t.Parallel()

			cfg, err := config.NewBuilder().AddMap(map[string]string{"Identity:Tokens:CodeStep": tt.step}).Build()
			require.NoError(t, err)

			opts, err := LoadOptions(cfg)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidOptions)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, opts.Tokens.CodeStep)
		})
	}
}
