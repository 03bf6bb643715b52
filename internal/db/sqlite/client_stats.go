package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iamwavecut/tool"

	"github.com/iamwavecut/hrbots/internal/db"
)

const userStatsColumns = `user_id, username, time_spent, chat_message_chars, distance_travelled`

func (c *sqliteClient) AddUserMetric(ctx context.Context, user db.UserRef, metric db.Metric, delta int64) error {
	if err := db.ValidateIncrement(user, metric, delta); err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	// metric is validated above, so interpolating the column name is safe.
	query := fmt.Sprintf(`
		INSERT INTO user_stats (user_id, username, %[1]s, created_at, updated_at)
		VALUES (?, ?, ?, datetime('now'), datetime('now'))
		ON CONFLICT(user_id) DO UPDATE SET
		%[1]s = user_stats.%[1]s + excluded.%[1]s,
		updated_at = excluded.updated_at
	`, metric)
	if err := tool.Err(c.db.ExecContext(ctx, query, user.ID, user.Username, delta)); err != nil {
		return fmt.Errorf("failed to add %s for user %s: %w", metric, user.ID, err)
	}
	return nil
}

func (c *sqliteClient) GetUserStats(ctx context.Context, userID string) (*db.UserStats, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var stats db.UserStats
	err := c.db.GetContext(ctx, &stats, `SELECT `+userStatsColumns+` FROM user_stats WHERE user_id = ?`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get stats for user %s: %w", userID, err)
	}
	return &stats, nil
}

func (c *sqliteClient) GetUserStatsByUsername(ctx context.Context, username string) (*db.UserStats, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var stats db.UserStats
	err := c.db.GetContext(ctx, &stats, `
		SELECT `+userStatsColumns+`
		FROM user_stats
		WHERE username = ?
		ORDER BY rowid
		LIMIT 1
	`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get stats for username %s: %w", username, err)
	}
	return &stats, nil
}

func (c *sqliteClient) ListUserStats(ctx context.Context) ([]*db.UserStats, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var stats []*db.UserStats
	if err := c.db.SelectContext(ctx, &stats, `SELECT `+userStatsColumns+` FROM user_stats ORDER BY rowid`); err != nil {
		return nil, fmt.Errorf("failed to list user stats: %w", err)
	}
	return stats, nil
}
