// Package redis keeps user stats in Redis hashes, one per user, plus a set of
// known user ids and a username index.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iamwavecut/hrbots/internal/db"
	hrerrors "github.com/iamwavecut/hrbots/internal/errors"
)

// Client is a Redis-backed db.Client.
type Client struct {
	client *redis.Client
	cfg    Config
}

var _ db.Client = (*Client)(nil)

// New connects to cfg.URL and verifies the connection.
func New(ctx context.Context, cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse redis url: %v", hrerrors.ErrStoreUnavailable, err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: ping redis: %v", hrerrors.ErrStoreUnavailable, err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient wraps an existing connection.
func NewWithClient(client *redis.Client, cfg Config) *Client {
	return &Client{
		client: client,
		cfg:    cfg,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// addMetricScript creates the record, claims the username index for the
// write that created it and increments the metric in one atomic step.
//
// KEYS: user hash, users set, username index.
// ARGV: username, metric, delta, user id.
var addMetricScript = redis.NewScript(`
if redis.call('HSETNX', KEYS[1], 'username', ARGV[1]) == 1 then
	redis.call('SET', KEYS[3], ARGV[4], 'NX')
end
redis.call('HINCRBY', KEYS[1], ARGV[2], ARGV[3])
redis.call('SADD', KEYS[2], ARGV[4])
return 1
`)

// AddUserMetric increments the metric atomically so concurrent writers never
// lose an update. The username index is claimed only by the write that
// created the record.
func (c *Client) AddUserMetric(ctx context.Context, user db.UserRef, metric db.Metric, delta int64) error {
	if err := db.ValidateIncrement(user, metric, delta); err != nil {
		return err
	}

	keys := []string{userKey(user.ID), usersKey(), usernameIndexKey(user.Username)}
	if err := addMetricScript.Run(ctx, c.client, keys, user.Username, string(metric), delta, user.ID).Err(); err != nil {
		return fmt.Errorf("failed to add %s for user %s: %w", metric, user.ID, err)
	}
	return nil
}

func (c *Client) GetUserStats(ctx context.Context, userID string) (*db.UserStats, error) {
	cmd := c.client.HGetAll(ctx, userKey(userID))
	return scanStats(userID, cmd)
}

// GetUserStatsByUsername follows the username index. With duplicate
// usernames the user who first claimed the name wins.
func (c *Client) GetUserStatsByUsername(ctx context.Context, username string) (*db.UserStats, error) {
	userID, err := c.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve username %s: %w", username, err)
	}

	stats, err := c.GetUserStats(ctx, userID)
	if err != nil || stats == nil {
		return stats, err
	}
	if stats.Username != username {
		return nil, nil
	}
	return stats, nil
}

// ListUserStats returns every record ordered by user id.
func (c *Client) ListUserStats(ctx context.Context) ([]*db.UserStats, error) {
	ids, err := c.client.SMembers(ctx, usersKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	sort.Strings(ids)

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, userKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load user stats: %w", err)
	}

	result := make([]*db.UserStats, 0, len(ids))
	for i, id := range ids {
		stats, err := scanStats(id, cmds[i])
		if err != nil {
			return nil, err
		}
		if stats != nil {
			result = append(result, stats)
		}
	}
	return result, nil
}

func scanStats(userID string, cmd *redis.MapStringStringCmd) (*db.UserStats, error) {
	if err := cmd.Err(); err != nil {
		return nil, fmt.Errorf("failed to get stats for user %s: %w", userID, err)
	}
	if len(cmd.Val()) == 0 {
		return nil, nil
	}
	stats := &db.UserStats{UserID: userID}
	if err := cmd.Scan(stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats for user %s: %w", userID, err)
	}
	return stats, nil
}
