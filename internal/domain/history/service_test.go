package history

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/metricz"

	"github.com/ganot/laptrack/internal/domain/session"
	"github.com/ganot/laptrack/internal/domain/stopwatch"
	"github.com/ganot/laptrack/internal/localstore"
	"github.com/ganot/laptrack/internal/repository"
	"github.com/ganot/laptrack/internal/repository/mocks"
)

func newSession(id int64) session.Session {
	return session.Session{
		ID:        id,
		Date:      "14/11/2023, 22:13:20",
		TotalTime: stopwatch.Millis(id % 100000),
		Laps:      []stopwatch.Lap{},
	}
}

func newTestStore(t *testing.T) (*Store, *localstore.Store, *mocks.SessionRepository, *metricz.Registry) {
	t.Helper()
	local := localstore.New(t.TempDir())
	cloud := &mocks.SessionRepository{}
	registry := metricz.New()
	return NewStore(local, cloud, registry, nil), local, cloud, registry
}

func TestStore_AppendAnonymous(t *testing.T) {
	store, local, _, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, newSession(1)))
	require.NoError(t, store.Append(ctx, newSession(2)))

	got := store.Sessions()
	require.Len(t, got, 2)
	require.Equal(t, int64(2), got[0].ID, "newest session first")
	require.Equal(t, int64(1), got[1].ID)

	// The write went through to the device store
	var persisted []session.Session
	found, err := local.Get("stopwatch-history", &persisted)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, persisted, 2)
	require.Equal(t, int64(2), persisted[0].ID)
}

func TestStore_AppendEvictsBeyondLimit(t *testing.T) {
	store, _, _, registry := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= Limit+1; i++ {
		require.NoError(t, store.Append(ctx, newSession(int64(i))))
	}

	got := store.Sessions()
	require.Len(t, got, Limit)
	require.Equal(t, int64(Limit+1), got[0].ID, "newest kept")
	require.Equal(t, int64(2), got[Limit-1].ID, "oldest evicted")
	require.Equal(t, float64(1), registry.Counter(EvictedKey).Value())
}

func TestStore_LoadLocalMissingKey(t *testing.T) {
	store, _, _, _ := newTestStore(t)

	require.NoError(t, store.Load(context.Background()))
	require.Empty(t, store.Sessions())
	require.NotNil(t, store.Sessions())
}

func TestStore_LoadCloudSortsAndTruncates(t *testing.T) {
	store, _, cloud, _ := newTestStore(t)
	ctx := context.Background()

	var unordered []session.Session
	for i := Limit + 5; i >= 1; i -= 2 {
		unordered = append(unordered, newSession(int64(i)))
	}
	for i := 2; i <= Limit+4; i += 2 {
		unordered = append(unordered, newSession(int64(i)))
	}
	cloud.On("FetchAll", mock.Anything, "u1").Return(unordered, nil)

	store.userID = "u1"
	require.NoError(t, store.Load(ctx))

	got := store.Sessions()
	require.Len(t, got, Limit)
	require.Equal(t, int64(Limit+5), got[0].ID)
	for i := 1; i < len(got); i++ {
		require.Greater(t, got[i-1].ID, got[i].ID, "newest first")
	}
}

func TestStore_Get(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, newSession(7)))

	sess, err := store.Get(7)
	require.NoError(t, err)
	require.Equal(t, int64(7), sess.ID)

	_, err = store.Get(8)
	require.Equal(t, ErrNotFound, err)
}

func TestStore_SignInMigratesLocalHistory(t *testing.T) {
	store, local, cloud, registry := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, newSession(1)))
	require.NoError(t, store.Append(ctx, newSession(2)))
	require.NoError(t, store.Append(ctx, newSession(3)))

	// Oldest first, so a partial migration loses only the newest
	var order []int64
	cloud.On("Insert", mock.Anything, "u1", mock.Anything).Run(func(args mock.Arguments) {
		order = append(order, args.Get(2).(session.Session).ID)
	}).Return(nil)
	cloud.On("FetchAll", mock.Anything, "u1").Return([]session.Session{newSession(3), newSession(1), newSession(2)}, nil)

	store.OnIdentityChange(ctx, "u1")

	require.Equal(t, []int64{1, 2, 3}, order)
	require.Equal(t, float64(3), registry.Counter(MigratedKey).Value())

	// Local copy removed once migrated
	var leftover []session.Session
	found, err := local.Get("stopwatch-history", &leftover)
	require.NoError(t, err)
	require.False(t, found)

	// History now reflects the cloud, newest first
	got := store.Sessions()
	require.Len(t, got, 3)
	require.Equal(t, int64(3), got[0].ID)
}

func TestStore_MigrationSkipsDuplicates(t *testing.T) {
	store, local, cloud, registry := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, newSession(1)))
	require.NoError(t, store.Append(ctx, newSession(2)))

	cloud.On("Insert", mock.Anything, "u1", newSession(1)).Return(repository.ErrDuplicate)
	cloud.On("Insert", mock.Anything, "u1", newSession(2)).Return(nil)
	cloud.On("FetchAll", mock.Anything, "u1").Return([]session.Session{newSession(1), newSession(2)}, nil)

	store.OnIdentityChange(ctx, "u1")

	require.Equal(t, float64(1), registry.Counter(MigratedKey).Value())
	var leftover []session.Session
	found, err := local.Get("stopwatch-history", &leftover)
	require.NoError(t, err)
	require.False(t, found, "local copy removed even when some sessions already existed")
}

func TestStore_InterruptedMigrationKeepsLocal(t *testing.T) {
	store, local, cloud, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, newSession(1)))
	require.NoError(t, store.Append(ctx, newSession(2)))

	cloud.On("Insert", mock.Anything, "u1", newSession(1)).Return(nil).Once()
	cloud.On("Insert", mock.Anything, "u1", newSession(2)).Return(fmt.Errorf("network down")).Once()
	cloud.On("FetchAll", mock.Anything, "u1").Return([]session.Session{newSession(1)}, nil).Once()

	store.OnIdentityChange(ctx, "u1")

	// The local copy survives, so the next sign-in retries
	var leftover []session.Session
	found, err := local.Get("stopwatch-history", &leftover)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, leftover, 2)

	// Retry: session 1 is already in the cloud and gets skipped
	cloud.On("Insert", mock.Anything, "u1", newSession(1)).Return(repository.ErrDuplicate).Once()
	cloud.On("Insert", mock.Anything, "u1", newSession(2)).Return(nil).Once()
	cloud.On("FetchAll", mock.Anything, "u1").Return([]session.Session{newSession(1), newSession(2)}, nil).Once()

	store.OnIdentityChange(ctx, "u1")

	found, err = local.Get("stopwatch-history", &leftover)
	require.NoError(t, err)
	require.False(t, found)
	require.Len(t, store.Sessions(), 2)
}

func TestStore_SignOutRevertsToLocal(t *testing.T) {
	store, _, cloud, _ := newTestStore(t)
	ctx := context.Background()

	cloud.On("FetchAll", mock.Anything, "u1").Return([]session.Session{newSession(9)}, nil)
	store.OnIdentityChange(ctx, "u1")
	require.Len(t, store.Sessions(), 1)

	store.OnIdentityChange(ctx, "")
	require.Empty(t, store.Sessions(), "device store is empty after migration")
}

func TestStore_AppendCloud(t *testing.T) {
	store, _, cloud, _ := newTestStore(t)
	ctx := context.Background()

	cloud.On("FetchAll", mock.Anything, "u1").Return(nil, nil)
	store.OnIdentityChange(ctx, "u1")

	cloud.On("Insert", mock.Anything, "u1", newSession(5)).Return(nil)
	require.NoError(t, store.Append(ctx, newSession(5)))
	cloud.AssertCalled(t, "Insert", mock.Anything, "u1", newSession(5))
}

func TestStore_AppendKeepsMemoryOnBackendFailure(t *testing.T) {
	store, _, cloud, registry := newTestStore(t)
	ctx := context.Background()

	cloud.On("FetchAll", mock.Anything, "u1").Return(nil, nil)
	store.OnIdentityChange(ctx, "u1")

	cloud.On("Insert", mock.Anything, "u1", mock.Anything).Return(errors.New("offline"))
	err := store.Append(ctx, newSession(5))
	require.Error(t, err)
	require.Len(t, store.Sessions(), 1, "session visible despite failed write")
	require.Equal(t, float64(1), registry.Counter(FaultsKey).Value())
}

func TestStore_Clear(t *testing.T) {
	store, local, cloud, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, newSession(1)))
	require.NoError(t, store.Clear(ctx))
	require.Empty(t, store.Sessions())

	var leftover []session.Session
	found, err := local.Get("stopwatch-history", &leftover)
	require.NoError(t, err)
	require.False(t, found)

	// Clear never touches the cloud
	cloud.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
}
