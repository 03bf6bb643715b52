// Package jsonfile keeps user stats in a single JSON object on disk, keyed by
// user id. The whole document is rewritten on every increment.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/iamwavecut/hrbots/internal/db"
	hrerrors "github.com/iamwavecut/hrbots/internal/errors"
)

type (
	jsonClient struct {
		path  string
		mutex sync.RWMutex
	}

	document map[string]*db.UserStats
)

var _ db.Client = (*jsonClient)(nil)

// NewJSONClient validates that path holds a JSON object and returns a client
// for it. The file must already exist, even if it is just "{}".
func NewJSONClient(path string) (*jsonClient, error) {
	c := &jsonClient{path: path}
	if _, err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *jsonClient) Close() error {
	return nil
}

func (c *jsonClient) AddUserMetric(ctx context.Context, user db.UserRef, metric db.Metric, delta int64) error {
	if err := db.ValidateIncrement(user, metric, delta); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	doc, err := c.load()
	if err != nil {
		return err
	}
	stats, ok := doc[user.ID]
	if !ok {
		stats = &db.UserStats{Username: user.Username}
		doc[user.ID] = stats
	}
	stats.Add(metric, delta)
	return c.save(doc)
}

func (c *jsonClient) GetUserStats(ctx context.Context, userID string) (*db.UserStats, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	doc, err := c.load()
	if err != nil {
		return nil, err
	}
	stats, ok := doc[userID]
	if !ok {
		return nil, nil
	}
	stats.UserID = userID
	return stats, nil
}

// GetUserStatsByUsername scans records in user id order; with duplicate
// usernames the lowest id wins.
func (c *jsonClient) GetUserStatsByUsername(ctx context.Context, username string) (*db.UserStats, error) {
	all, err := c.ListUserStats(ctx)
	if err != nil {
		return nil, err
	}
	for _, stats := range all {
		if stats.Username == username {
			return stats, nil
		}
	}
	return nil, nil
}

func (c *jsonClient) ListUserStats(ctx context.Context) ([]*db.UserStats, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	doc, err := c.load()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(doc))
	for id := range doc {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := make([]*db.UserStats, 0, len(ids))
	for _, id := range ids {
		stats := doc[id]
		stats.UserID = id
		result = append(result, stats)
	}
	return result, nil
}

func (c *jsonClient) load() (document, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", hrerrors.ErrStoreUnavailable, c.path, err)
	}
	doc := document{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", hrerrors.ErrStoreUnavailable, c.path, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s is not an object", hrerrors.ErrStoreUnavailable, c.path)
	}
	for id, stats := range doc {
		if stats == nil {
			return nil, fmt.Errorf("%w: null record for %s in %s", hrerrors.ErrStoreUnavailable, id, c.path)
		}
	}
	return doc, nil
}

func (c *jsonClient) save(doc document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.path, err)
	}
	if err := atomic.WriteFile(c.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", c.path, err)
	}
	return nil
}
