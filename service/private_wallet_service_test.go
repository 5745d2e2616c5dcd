package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/walletgate/adapters/store"
	"github.com/layer-3/walletgate/core"
)

const grantee = "0x52908400098527886E0F7030069857D2E4169EE7"

func TestPrivateWalletGrantLifecycle(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewPrivateWalletService(store.NewMemoryGrantStore(), pub, nil)
	ctx := context.Background()
	admin := &core.Session{AccountID: "admin-1", Role: core.RoleAdmin}

	ok, err := svc.HasAccess(ctx, grantee)
	require.NoError(t, err)
	assert.False(t, ok)

	g, err := svc.Grant(ctx, admin, grantee)
	require.NoError(t, err)
	assert.Equal(t, "0x52908400098527886e0f7030069857d2e4169ee7", g.WalletAddress)
	assert.Equal(t, "admin-1", g.GrantedBy)

	_, err = svc.Grant(ctx, admin, g.WalletAddress)
	assert.ErrorIs(t, err, core.ErrGrantExists)

	ok, err = svc.HasAccess(ctx, grantee)
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Revoke(ctx, grantee))
	assert.ErrorIs(t, svc.Revoke(ctx, grantee), core.ErrGrantNotFound)

	ok, err = svc.HasAccess(ctx, grantee)
	require.NoError(t, err)
	assert.False(t, ok)

	require.Len(t, pub.events, 2)
	assert.True(t, pub.events[0].granted)
	assert.False(t, pub.events[1].granted)
	assert.Equal(t, g.WalletAddress, pub.events[1].address)
}

func TestPrivateWalletGrantRequiresAdmin(t *testing.T) {
	svc := NewPrivateWalletService(store.NewMemoryGrantStore(), &recordingPublisher{}, nil)

	_, err := svc.Grant(context.Background(), &core.Session{AccountID: "u1", Role: core.RoleUser}, grantee)
	assert.ErrorIs(t, err, core.ErrForbidden)
}
