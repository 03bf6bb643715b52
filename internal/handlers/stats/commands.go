package stats

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/iamwavecut/hrbots/internal/db"
	"github.com/iamwavecut/hrbots/internal/highrise"
	"github.com/iamwavecut/hrbots/internal/i18n"
)

func (h *Stats) handleCommand(ctx context.Context, user highrise.User, command string) error {
	lang := h.GetLanguage()

	switch {
	case command == "leaderboard" || command == "Leaderboard":
		names, err := Leaderboard(ctx, h.store(), h.cfg.LeaderboardSize)
		if err != nil {
			return err
		}
		return h.Reply(ctx, i18n.Get("Leaderboard:", lang)+"\n"+strings.Join(names, "\n"))

	case command == "help":
		return h.Whisper(ctx, user.ID, fmt.Sprintf(i18n.Get("Commands:\n%[1]s leaderboard - most active users\n%[1]s @<username> - stats of a user\n%[1]s help - this list", lang), h.cfg.Prefix))

	case strings.HasPrefix(command, "@") && len(command) > 1:
		username := command[1:]
		stats, err := h.store().GetUserStatsByUsername(ctx, username)
		if err != nil {
			return errors.Wrap(err, "lookup user stats")
		}
		if stats == nil {
			return h.Reply(ctx, fmt.Sprintf(i18n.Get("%s does not exist or has not joined this room before", lang), username))
		}
		return h.Reply(ctx, fmt.Sprintf(
			i18n.Get("%s:\nDistance Walked: %d\nTime Spent: %d\nCharacters Messaged: %d", lang),
			username, stats.DistanceTravelled, stats.TimeSpent, stats.ChatMessageChars,
		))

	default:
		return h.Whisper(ctx, user.ID, fmt.Sprintf(i18n.Get("Not a valid command. Use %s help to see the list of commands", lang), h.cfg.Prefix))
	}
}

// Leaderboard returns the usernames of the top n users by score.
func Leaderboard(ctx context.Context, store db.Client, n int) ([]string, error) {
	all, err := store.ListUserStats(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list user stats")
	}
	top := db.TopByScore(all, n)
	names := make([]string, 0, len(top))
	for _, s := range top {
		names = append(names, s.Username)
	}
	return names, nil
}
