// Package stats tracks how long users stay, how far they walk and how much
// they type, and answers leaderboard and lookup commands.
package stats

import (
	"context"
	stderrors "errors"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/iamwavecut/hrbots/internal/bot"
	"github.com/iamwavecut/hrbots/internal/db"
	"github.com/iamwavecut/hrbots/internal/handlers/base"
	"github.com/iamwavecut/hrbots/internal/highrise"
	"github.com/iamwavecut/hrbots/internal/observability"
)

const (
	DefaultPrefix          = "/s"
	DefaultLeaderboardSize = 5
)

type (
	Config struct {
		Prefix          string
		LeaderboardSize int
		// Now is the clock used by the lobby; nil means time.Now.
		Now func() time.Time
	}

	Stats struct {
		*base.BaseHandler
		cfg   Config
		lobby *Lobby
	}
)

var (
	_ bot.ChatHandler  = (*Stats)(nil)
	_ bot.JoinHandler  = (*Stats)(nil)
	_ bot.LeaveHandler = (*Stats)(nil)
	_ bot.MoveHandler  = (*Stats)(nil)
)

func NewStats(s bot.Service, cfg Config) *Stats {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.LeaderboardSize <= 0 {
		cfg.LeaderboardSize = DefaultLeaderboardSize
	}
	return &Stats{
		BaseHandler: base.NewBaseHandler(s, "stats"),
		cfg:         cfg,
		lobby:       NewLobby(cfg.Now),
	}
}

func (h *Stats) store() db.Client {
	return h.GetService().GetDB()
}

// Lobby exposes the in-memory presence tracker.
func (h *Stats) Lobby() *Lobby {
	return h.lobby
}

func (h *Stats) OnChat(ctx context.Context, user highrise.User, message string) error {
	writeErr := h.write(ctx, user, db.MetricChatMessageChars, int64(utf8.RuneCountInString(message)))

	command, ok := base.ParseCommand(h.cfg.Prefix, message)
	if !ok {
		return writeErr
	}
	return stderrors.Join(writeErr, h.handleCommand(ctx, user, command))
}

func (h *Stats) OnUserJoin(_ context.Context, user highrise.User, _ highrise.Location) error {
	h.lobby.Join(user.ID)
	return nil
}

func (h *Stats) OnUserLeave(ctx context.Context, user highrise.User) error {
	seconds, ok := h.lobby.Leave(user.ID)
	if !ok {
		return nil
	}
	return h.write(ctx, user, db.MetricTimeSpent, seconds)
}

func (h *Stats) OnUserMove(ctx context.Context, user highrise.User, location highrise.Location) error {
	pos, ok := location.(highrise.Position)
	if !ok {
		return nil
	}
	return h.write(ctx, user, db.MetricDistanceTravelled, h.lobby.Move(user.ID, pos))
}

func (h *Stats) write(ctx context.Context, user highrise.User, metric db.Metric, delta int64) error {
	if h.store() == nil {
		return errors.New("no stats store configured")
	}
	err := h.store().AddUserMetric(ctx, db.UserRef{ID: user.ID, Username: user.Username}, metric, delta)
	observability.RecordStoreWrite(string(metric), err)
	if err != nil {
		return errors.Wrapf(err, "write %s", metric)
	}
	h.GetLogger().WithField("user", user.Username).Tracef("updated %s by %d", metric, delta)
	return nil
}
