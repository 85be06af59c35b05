package sweep

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, time.Hour)
}

func TestStoreLatestRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Latest(ctx)
	require.ErrorIs(t, err, ErrNoReport)

	report := Report{
		ID:           "run-1",
		Today:        time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC),
		TotalKept:    12,
		TotalRemoved: 3,
		Products: []ProductSummary{
			{ProductID: 66, Title: "Badminton", Courses: 4, AcceptedCourses: 2, Kept: 12, Removed: 3},
		},
		RemovedByReason: map[string]int{"too_early": 2, "expired": 1},
	}
	require.NoError(t, store.Save(ctx, report))

	got, err := store.Latest(ctx)
	require.NoError(t, err)
	require.Equal(t, report.ID, got.ID)
	require.Equal(t, report.RemovedByReason, got.RemovedByReason)
	require.True(t, got.Today.Equal(report.Today))
}

func TestStoreHistoryIsBoundedAndNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < historyDepth+5; i++ {
		require.NoError(t, store.Save(ctx, Report{ID: string(rune('a' + i%26))}))
	}
	history, err := store.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, historyDepth)

	require.NoError(t, store.Save(ctx, Report{ID: "newest"}))
	history, err = store.History(ctx, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, "newest", history[0].ID)
}
