package db

import (
	"fmt"
	"sort"

	"github.com/iamwavecut/tool"

	hrerrors "github.com/iamwavecut/hrbots/internal/errors"
)

type (
	// UserStats is the persisted activity record of one user. Metrics only
	// ever grow; Username is fixed by the first write.
	UserStats struct {
		UserID            string `db:"user_id" json:"-" redis:"-"`
		Username          string `db:"username" json:"username" redis:"username"`
		TimeSpent         int64  `db:"time_spent" json:"time_spent" redis:"time_spent"`
		ChatMessageChars  int64  `db:"chat_message_chars" json:"chat_message_chars" redis:"chat_message_chars"`
		DistanceTravelled int64  `db:"distance_travelled" json:"distance_travelled" redis:"distance_travelled"`
	}

	// UserRef identifies the user a metric increment belongs to.
	UserRef struct {
		ID       string
		Username string
	}

	Metric string
)

const (
	MetricTimeSpent         Metric = "time_spent"
	MetricChatMessageChars  Metric = "chat_message_chars"
	MetricDistanceTravelled Metric = "distance_travelled"
)

var Metrics = []Metric{MetricTimeSpent, MetricChatMessageChars, MetricDistanceTravelled}

func (m Metric) Valid() bool {
	return tool.In(m, Metrics...)
}

// Score is the leaderboard score: the sum of all three metrics.
func (s *UserStats) Score() int64 {
	return s.TimeSpent + s.ChatMessageChars + s.DistanceTravelled
}

// Get returns the value of a single metric.
func (s *UserStats) Get(m Metric) int64 {
	switch m {
	case MetricTimeSpent:
		return s.TimeSpent
	case MetricChatMessageChars:
		return s.ChatMessageChars
	case MetricDistanceTravelled:
		return s.DistanceTravelled
	}
	return 0
}

// Add increments a single metric in place.
func (s *UserStats) Add(m Metric, delta int64) {
	switch m {
	case MetricTimeSpent:
		s.TimeSpent += delta
	case MetricChatMessageChars:
		s.ChatMessageChars += delta
	case MetricDistanceTravelled:
		s.DistanceTravelled += delta
	}
}

// ValidateIncrement rejects increments that would break the monotonic
// metric invariant or target an unknown metric.
func ValidateIncrement(user UserRef, metric Metric, delta int64) error {
	if user.ID == "" {
		return fmt.Errorf("%w: empty user id", hrerrors.ErrInvalidInput)
	}
	if !metric.Valid() {
		return fmt.Errorf("%w: unknown metric %q", hrerrors.ErrInvalidInput, metric)
	}
	if delta < 0 {
		return fmt.Errorf("%w: negative increment %d for %s", hrerrors.ErrInvalidInput, delta, metric)
	}
	return nil
}

// TopByScore returns at most n records ordered by descending score. Records
// with equal scores keep their input order.
func TopByScore(stats []*UserStats, n int) []*UserStats {
	ranked := make([]*UserStats, len(stats))
	copy(ranked, stats)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score() > ranked[j].Score()
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
