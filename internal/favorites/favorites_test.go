package favorites

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"recipehub/internal/kvstore"
)

func TestToggleAddRemove(t *testing.T) {
	ctx := context.Background()
	set := NewService(kvstore.NewMemoryStore()).For("alice")

	ids, err := set.List(ctx)
	require.NoError(t, err)
	require.Empty(t, ids)

	now, err := set.Toggle(ctx, "1")
	require.NoError(t, err)
	require.True(t, now)
	require.NoError(t, set.Add(ctx, "2"))
	require.NoError(t, set.Add(ctx, "1"))

	ids, err = set.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, ids)

	now, err = set.Toggle(ctx, "1")
	require.NoError(t, err)
	require.False(t, now)

	ok, err := set.Contains(ctx, "1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, set.Remove(ctx, "2"))
	require.NoError(t, set.Remove(ctx, "missing"))
	ids, err = set.List(ctx)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestFavoritesDoNotTouchCartLedgers(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	require.NoError(t, NewService(store).For("alice").Add(ctx, "1"))

	raw, ok, err := store.Get(ctx, "alice:favorites")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `["1"]`, raw)
	require.Equal(t, 1, store.Len())
}
