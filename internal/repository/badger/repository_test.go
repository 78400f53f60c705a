package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/steelrolls/internal/domain/models"
	"github.com/mamadbah2/steelrolls/internal/repository"
	"github.com/mamadbah2/steelrolls/internal/repository/repotest"
)

func TestRollRepository_Contract(t *testing.T) {
	repotest.RunRollRepository(t, func(t *testing.T) repository.RollRepository {
		store, err := NewRollRepository(Config{InMemory: true}, nil)
		require.NoError(t, err)
		t.Cleanup(func() { store.Close(context.Background()) })
		return store
	})
}

func TestRollRepository_Persistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	added := time.Date(2024, 2, 10, 7, 0, 0, 0, time.UTC)

	var stored models.Roll
	{
		store, err := NewRollRepository(Config{Path: dir}, nil)
		require.NoError(t, err)

		stored, err = store.Add(ctx, models.Roll{Length: 9, Weight: 90, AddedDate: added})
		require.NoError(t, err)
		require.NoError(t, stored.MarkDeleted(added.Add(48*time.Hour)))
		stored, err = store.Update(ctx, stored)
		require.NoError(t, err)
		require.NoError(t, store.Close(ctx))
	}

	store, err := NewRollRepository(Config{Path: dir}, nil)
	require.NoError(t, err)
	defer store.Close(ctx)

	got, err := store.GetByID(ctx, stored.ID)
	require.NoError(t, err)
	repotest.AssertSameRoll(t, stored, got)

	next, err := store.Add(ctx, models.Roll{Length: 1, Weight: 1, AddedDate: added})
	require.NoError(t, err)
	require.Greater(t, next.ID, stored.ID)
}

func TestRollRepository_CancelledContext(t *testing.T) {
	store, err := NewRollRepository(Config{InMemory: true}, nil)
	require.NoError(t, err)
	defer store.Close(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Snapshot(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
