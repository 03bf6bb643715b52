// Package dbtest holds the behaviour every db.Client backend must share.
package dbtest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamwavecut/hrbots/internal/db"
	hrerrors "github.com/iamwavecut/hrbots/internal/errors"
)

// RunClientContract exercises a fresh client produced by newClient for each
// subtest.
func RunClientContract(t *testing.T, newClient func(t *testing.T) db.Client) {
	t.Helper()

	t.Run("increments-sum", func(t *testing.T) {
		client := newClient(t)
		ctx := context.Background()
		alice := db.UserRef{ID: "u-alice", Username: "Alice"}

		deltas := []int64{2, 0, 5, 11}
		var want int64
		for _, d := range deltas {
			require.NoError(t, client.AddUserMetric(ctx, alice, db.MetricChatMessageChars, d))
			want += d
		}
		require.NoError(t, client.AddUserMetric(ctx, alice, db.MetricDistanceTravelled, 5))
		require.NoError(t, client.AddUserMetric(ctx, alice, db.MetricTimeSpent, 10))

		got, err := client.GetUserStats(ctx, alice.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, "u-alice", got.UserID)
		require.Equal(t, "Alice", got.Username)
		require.Equal(t, want, got.ChatMessageChars)
		require.Equal(t, int64(5), got.DistanceTravelled)
		require.Equal(t, int64(10), got.TimeSpent)
	})

	t.Run("first-write-initializes-other-metrics", func(t *testing.T) {
		client := newClient(t)
		ctx := context.Background()
		bob := db.UserRef{ID: "u-bob", Username: "Bob"}

		require.NoError(t, client.AddUserMetric(ctx, bob, db.MetricTimeSpent, 3))
		got, err := client.GetUserStats(ctx, bob.ID)
		require.NoError(t, err)
		require.Equal(t, db.UserStats{UserID: "u-bob", Username: "Bob", TimeSpent: 3}, *got)
	})

	t.Run("every-metric-is-tracked-separately", func(t *testing.T) {
		client := newClient(t)
		ctx := context.Background()
		carol := db.UserRef{ID: "u-carol", Username: "Carol"}

		for i, m := range db.Metrics {
			require.NoError(t, client.AddUserMetric(ctx, carol, m, int64(i+1)))
		}
		got, err := client.GetUserStats(ctx, carol.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		for i, m := range db.Metrics {
			require.Equal(t, int64(i+1), got.Get(m), "metric %s", m)
		}
	})

	t.Run("username-fixed-at-first-write", func(t *testing.T) {
		client := newClient(t)
		ctx := context.Background()

		require.NoError(t, client.AddUserMetric(ctx, db.UserRef{ID: "u1", Username: "first"}, db.MetricTimeSpent, 1))
		require.NoError(t, client.AddUserMetric(ctx, db.UserRef{ID: "u1", Username: "renamed"}, db.MetricTimeSpent, 1))

		got, err := client.GetUserStats(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, "first", got.Username)

		byName, err := client.GetUserStatsByUsername(ctx, "first")
		require.NoError(t, err)
		require.NotNil(t, byName)
		require.Equal(t, int64(2), byName.TimeSpent)

		missing, err := client.GetUserStatsByUsername(ctx, "renamed")
		require.NoError(t, err)
		require.Nil(t, missing)
	})

	t.Run("username-lookup-is-case-sensitive", func(t *testing.T) {
		client := newClient(t)
		ctx := context.Background()

		require.NoError(t, client.AddUserMetric(ctx, db.UserRef{ID: "u1", Username: "Alice"}, db.MetricTimeSpent, 1))
		got, err := client.GetUserStatsByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("unknown-user", func(t *testing.T) {
		client := newClient(t)
		got, err := client.GetUserStats(context.Background(), "nobody")
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("rejects-negative-increment", func(t *testing.T) {
		client := newClient(t)
		ctx := context.Background()
		err := client.AddUserMetric(ctx, db.UserRef{ID: "u1", Username: "x"}, db.MetricTimeSpent, -4)
		require.True(t, errors.Is(err, hrerrors.ErrInvalidInput), "got %v", err)

		got, err := client.GetUserStats(ctx, "u1")
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("list", func(t *testing.T) {
		client := newClient(t)
		ctx := context.Background()

		empty, err := client.ListUserStats(ctx)
		require.NoError(t, err)
		require.Empty(t, empty)

		for _, u := range []db.UserRef{{ID: "u1", Username: "a"}, {ID: "u2", Username: "b"}, {ID: "u3", Username: "c"}} {
			require.NoError(t, client.AddUserMetric(ctx, u, db.MetricChatMessageChars, 1))
		}
		all, err := client.ListUserStats(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		names := map[string]bool{}
		for _, s := range all {
			names[s.Username] = true
		}
		require.Equal(t, map[string]bool{"a": true, "b": true, "c": true}, names)
	})

	t.Run("concurrent-increments-are-not-lost", func(t *testing.T) {
		client := newClient(t)
		ctx := context.Background()

		const (
			writers    = 8
			iterations = 25
		)
		users := []db.UserRef{{ID: "u1", Username: "one"}, {ID: "u2", Username: "two"}}

		var wg sync.WaitGroup
		errs := make(chan error, writers*iterations)
		for w := 0; w < writers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				user := users[w%len(users)]
				for i := 0; i < iterations; i++ {
					if err := client.AddUserMetric(ctx, user, db.MetricDistanceTravelled, 1); err != nil {
						errs <- err
					}
				}
			}(w)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		for _, u := range users {
			got, err := client.GetUserStats(ctx, u.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			require.Equal(t, int64(writers/len(users)*iterations), got.DistanceTravelled, "user %s", u.ID)
		}
	})
}
