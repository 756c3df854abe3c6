package auth

import (
	"context"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tasknest/internal/apperrors"
	"github.com/nhle/tasknest/internal/credential"
	"github.com/nhle/tasknest/internal/logger"
	"github.com/nhle/tasknest/internal/testutil"
)

func newService(t *testing.T) *Service {
	t.Helper()
	s := testutil.NewTestStore(t)
	vault := credential.NewVaultWithKeyring(keyring.NewArrayKeyring(nil))
	return New(s, vault, logger.Nop())
}

func TestSignInAndOut(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	u, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)
	id, err := svc.CurrentUserID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)

	signed, err := svc.SignIn(ctx, " Ann@Example.com ", "Ann")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", signed.Email)
	require.NotNil(t, signed.DisplayName)
	assert.Equal(t, "Ann", *signed.DisplayName)

	current, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, signed.ID, current.ID)

	again, err := svc.SignIn(ctx, "ann@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, signed.ID, again.ID, "signing in twice reuses the profile")
	assert.Equal(t, "Ann", *again.DisplayName)

	require.NoError(t, svc.SignOut(ctx))
	id, err = svc.CurrentUserID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestSignIn_InvalidEmail(t *testing.T) {
	svc := newService(t)
	_, err := svc.SignIn(context.Background(), "nope", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidEmail)
}

func TestCurrentUser_StaleSession(t *testing.T) {
	s := testutil.NewTestStore(t)
	vault := credential.NewVaultWithKeyring(keyring.NewArrayKeyring(nil))
	require.NoError(t, vault.SetToken("deleted-user"))
	svc := New(s, vault, logger.Nop())

	_, err := svc.CurrentUser(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)

	id, err := svc.CurrentUserID(context.Background())
	require.NoError(t, err)
	assert.Empty(t, id)
}
