package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/iamwavecut/hrbots/internal/config"
	"github.com/iamwavecut/hrbots/internal/db"
)

func newLeaderboardCmd(cfg *config.Config) *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the most active users from the stats store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n := size
			if n <= 0 {
				n = cfg.Stats.LeaderboardSize
			}
			store, err := openStore(cmd.Context(), *cfg)
			if err != nil {
				return errors.Wrap(err, "open stats store")
			}
			defer store.Close()

			all, err := store.ListUserStats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, s := range db.TopByScore(all, n) {
				fmt.Fprintf(out, "%d. %s %d\n", i+1, s.Username, s.Score())
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&size, "size", "n", 0, "Number of users to show (env: HR_STATS_LEADERBOARD_SIZE)")
	return cmd
}
