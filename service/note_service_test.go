package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/walletgate/adapters/cache"
	"github.com/layer-3/walletgate/adapters/store"
	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/ports"
)

// countingNotes counts ListNotes calls to observe cache hits
type countingNotes struct {
	ports.NoteStore
	lists int
}

func (c *countingNotes) ListNotes(ctx context.Context, ownerID string) ([]core.Note, error) {
	c.lists++
	return c.NoteStore.ListNotes(ctx, ownerID)
}

type brokenCache struct{}

func (brokenCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, errors.New("cache unavailable")
}

func (brokenCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("cache unavailable")
}

func (brokenCache) Delete(ctx context.Context, key string) error {
	return errors.New("cache unavailable")
}

func newNoteFixture(t *testing.T, c ports.Cache) (*NoteService, *countingNotes) {
	t.Helper()
	notes := &countingNotes{NoteStore: store.NewMemoryNoteStore()}
	svc := NewNoteService(notes, c, time.Minute, nil)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return svc, notes
}

func TestNoteCRUD(t *testing.T) {
	svc, _ := newNoteFixture(t, cache.NewMemoryCache())
	ctx := context.Background()

	n, err := svc.Create(ctx, "owner-1", "groceries", "milk")
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)

	got, err := svc.Get(ctx, "owner-1", n.ID)
	require.NoError(t, err)
	assert.Equal(t, "milk", got.Content)

	title := "shopping"
	updated, err := svc.Update(ctx, "owner-1", n.ID, core.NoteUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "shopping", updated.Title)
	assert.Equal(t, "milk", updated.Content)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	require.NoError(t, svc.Delete(ctx, "owner-1", n.ID))
	_, err = svc.Get(ctx, "owner-1", n.ID)
	assert.ErrorIs(t, err, core.ErrNoteNotFound)
}

func TestNoteOwnerScoping(t *testing.T) {
	svc, _ := newNoteFixture(t, cache.NewMemoryCache())
	ctx := context.Background()

	n, err := svc.Create(ctx, "owner-1", "private", "")
	require.NoError(t, err)

	_, err = svc.Get(ctx, "owner-2", n.ID)
	assert.ErrorIs(t, err, core.ErrNoteNotFound)

	title := "stolen"
	_, err = svc.Update(ctx, "owner-2", n.ID, core.NoteUpdate{Title: &title})
	assert.ErrorIs(t, err, core.ErrNoteNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "owner-2", n.ID), core.ErrNoteNotFound)

	list, err := svc.List(ctx, "owner-2")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNoteListReadThrough(t *testing.T) {
	svc, notes := newNoteFixture(t, cache.NewMemoryCache())
	ctx := context.Background()

	_, err := svc.Create(ctx, "owner-1", "first", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "owner-1", "second", "")
	require.NoError(t, err)

	list, err := svc.List(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Title)

	_, err = svc.List(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 1, notes.lists, "second list should be served from cache")

	_, err = svc.Create(ctx, "owner-1", "third", "")
	require.NoError(t, err)

	list, err = svc.List(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Equal(t, 2, notes.lists, "write should drop the cached list")
}

func TestNoteListCacheFailureFallsThrough(t *testing.T) {
	svc, notes := newNoteFixture(t, brokenCache{})
	ctx := context.Background()

	_, err := svc.Create(ctx, "owner-1", "first", "")
	require.NoError(t, err)

	list, err := svc.List(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, notes.lists)
}
