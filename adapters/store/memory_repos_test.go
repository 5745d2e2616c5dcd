package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/walletgate/core"
)

const testAddr = "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd"

func TestMemoryAccountStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore()

	_, err := s.FindByAddress(ctx, testAddr)
	assert.ErrorIs(t, err, core.ErrAccountNotFound)
	assert.ErrorIs(t, s.UpdateNonce(ctx, testAddr, "n"), core.ErrAccountNotFound)

	require.NoError(t, s.Create(ctx, &core.Account{ID: "a1", WalletAddress: "0xABCDEFabcdefabcdefabcdefabcdefabcdefABCD", PendingNonce: "n1", Role: core.RoleUser}))
	assert.ErrorIs(t, s.Create(ctx, &core.Account{ID: "a2", WalletAddress: testAddr}), core.ErrAccountExists)

	acc, err := s.FindByAddress(ctx, "0xABCDEFABCDEFABCDEFABCDEFABCDEFABCDEFABCD")
	require.NoError(t, err)
	assert.Equal(t, "a1", acc.ID)
	assert.Equal(t, testAddr, acc.WalletAddress)

	// returned records are copies
	acc.PendingNonce = "mutated"
	acc, err = s.FindByAddress(ctx, testAddr)
	require.NoError(t, err)
	assert.Equal(t, "n1", acc.PendingNonce)

	require.NoError(t, s.UpdateNonce(ctx, testAddr, "n2"))
	login := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.RecordLogin(ctx, testAddr, login, ""))
	require.NoError(t, s.UpdateRole(ctx, testAddr, core.RoleAdmin))

	acc, err = s.FindByAddress(ctx, testAddr)
	require.NoError(t, err)
	assert.Equal(t, "n2", acc.PendingNonce)
	require.NotNil(t, acc.LastLogin)
	assert.True(t, login.Equal(*acc.LastLogin))
	assert.Equal(t, core.RoleAdmin, acc.Role)

	later := login.Add(time.Hour)
	require.NoError(t, s.RecordLogin(ctx, testAddr, later, "n3"))
	acc, err = s.FindByAddress(ctx, testAddr)
	require.NoError(t, err)
	assert.Equal(t, "n3", acc.PendingNonce)
	assert.True(t, later.Equal(*acc.LastLogin))

	assert.ErrorIs(t, s.RecordLogin(ctx, "0x0000000000000000000000000000000000000000", later, ""), core.ErrAccountNotFound)
}

func TestMemoryNoteStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryNoteStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateNote(ctx, &core.Note{ID: "n1", OwnerID: "alice", Title: "first", CreatedAt: base}))
	require.NoError(t, s.CreateNote(ctx, &core.Note{ID: "n2", OwnerID: "alice", Title: "second", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, s.CreateNote(ctx, &core.Note{ID: "n3", OwnerID: "bob", Title: "bob's", CreatedAt: base}))

	notes, err := s.ListNotes(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "n2", notes[0].ID)
	assert.Equal(t, "n1", notes[1].ID)

	_, err = s.GetNote(ctx, "bob", "n1")
	assert.ErrorIs(t, err, core.ErrNoteNotFound)

	assert.ErrorIs(t, s.UpdateNote(ctx, &core.Note{ID: "n1", OwnerID: "bob"}), core.ErrNoteNotFound)
	require.NoError(t, s.UpdateNote(ctx, &core.Note{ID: "n1", OwnerID: "alice", Title: "renamed"}))

	n, err := s.GetNote(ctx, "alice", "n1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", n.Title)

	assert.ErrorIs(t, s.DeleteNote(ctx, "bob", "n1"), core.ErrNoteNotFound)
	require.NoError(t, s.DeleteNote(ctx, "alice", "n1"))
	_, err = s.GetNote(ctx, "alice", "n1")
	assert.ErrorIs(t, err, core.ErrNoteNotFound)

	empty, err := s.ListNotes(ctx, "carol")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMemoryGrantStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryGrantStore()

	require.NoError(t, s.CreateGrant(ctx, &core.PrivateWallet{ID: "g1", WalletAddress: "0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB"}))
	require.NoError(t, s.CreateGrant(ctx, &core.PrivateWallet{ID: "g2", WalletAddress: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}))
	assert.ErrorIs(t, s.CreateGrant(ctx, &core.PrivateWallet{ID: "g3", WalletAddress: "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"}), core.ErrGrantExists)

	grants, err := s.ListGrants(ctx)
	require.NoError(t, err)
	require.Len(t, grants, 2)
	assert.Equal(t, "g2", grants[0].ID)
	assert.Equal(t, "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", grants[1].WalletAddress)

	g, err := s.FindGrant(ctx, "0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB")
	require.NoError(t, err)
	assert.Equal(t, "g1", g.ID)

	require.NoError(t, s.DeleteGrant(ctx, "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"))
	assert.ErrorIs(t, s.DeleteGrant(ctx, "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"), core.ErrGrantNotFound)
	_, err = s.FindGrant(ctx, "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	assert.ErrorIs(t, err, core.ErrGrantNotFound)
}
