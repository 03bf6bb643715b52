package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamwavecut/hrbots/internal/db"
	"github.com/iamwavecut/hrbots/internal/db/dbtest"
	hrerrors "github.com/iamwavecut/hrbots/internal/errors"
)

func newDataFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestClientContract(t *testing.T) {
	dbtest.RunClientContract(t, func(t *testing.T) db.Client {
		client, err := NewJSONClient(newDataFile(t, "{}"))
		require.NoError(t, err)
		return client
	})
}

func TestMissingFileIsFatal(t *testing.T) {
	_, err := NewJSONClient(filepath.Join(t.TempDir(), "absent.json"))
	require.True(t, errors.Is(err, hrerrors.ErrStoreUnavailable), "got %v", err)
}

func TestCorruptFileIsFatal(t *testing.T) {
	for _, content := range []string{"{not json", `{"u1": null}`, "null", "[]", `"x"`} {
		_, err := NewJSONClient(newDataFile(t, content))
		require.True(t, errors.Is(err, hrerrors.ErrStoreUnavailable), "%q: got %v", content, err)
	}
}

func TestDocumentLayout(t *testing.T) {
	path := newDataFile(t, "{}")
	client, err := NewJSONClient(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, client.AddUserMetric(ctx, db.UserRef{ID: "abc", Username: "Alice"}, db.MetricChatMessageChars, 12))
	require.NoError(t, client.AddUserMetric(ctx, db.UserRef{ID: "abc", Username: "Alice"}, db.MetricDistanceTravelled, 3))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Equal(t, map[string]map[string]any{
		"abc": {
			"username":           "Alice",
			"time_spent":         float64(0),
			"chat_message_chars": float64(12),
			"distance_travelled": float64(3),
		},
	}, doc)
}

func TestReadsExistingDocument(t *testing.T) {
	path := newDataFile(t, `{
		"b2": {"username": "Bob", "time_spent": 40, "chat_message_chars": 2, "distance_travelled": 9},
		"a1": {"username": "Bob", "time_spent": 1, "chat_message_chars": 0, "distance_travelled": 0}
	}`)
	client, err := NewJSONClient(path)
	require.NoError(t, err)

	ctx := context.Background()
	got, err := client.GetUserStatsByUsername(ctx, "Bob")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "a1", got.UserID)

	all, err := client.ListUserStats(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "a1", all[0].UserID)
	require.Equal(t, int64(40), all[1].TimeSpent)
}
