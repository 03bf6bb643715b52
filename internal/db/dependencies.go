package db

import "context"

// Client is the activity store. AddUserMetric must be atomic with respect to
// concurrent callers: no increment may be lost.
type Client interface {
	Close() error
	AddUserMetric(ctx context.Context, user UserRef, metric Metric, delta int64) error
	GetUserStats(ctx context.Context, userID string) (*UserStats, error)
	// GetUserStatsByUsername returns nil, nil when nobody has that username.
	GetUserStatsByUsername(ctx context.Context, username string) (*UserStats, error)
	ListUserStats(ctx context.Context) ([]*UserStats, error)
}
