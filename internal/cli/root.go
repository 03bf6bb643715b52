package cli

import (
	"os"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	"github.com/iamwavecut/hrbots/internal/config"
)

// NewRootCmd builds the hrbots command tree. A nil lookuper reads the
// process environment.
func NewRootCmd(lookuper envconfig.Lookuper) *cobra.Command {
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "hrbots",
		Short: "Example bots for Highrise rooms",
		Long: `hrbots runs one of the example room bots: a transcript echo bot, an
activity statistics tracker or a weather lookup bot.

Configuration is read from HR_* environment variables.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cmd.Context(), lookuper)
			if err != nil {
				return err
			}
			*cfg = loaded
			config.SetupLogging(cfg.LogLevel)
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newBotCmd(cfg, botEcho, "Log every room event to stdout"))
	rootCmd.AddCommand(newBotCmd(cfg, botStats, "Track user activity and answer /s commands"))
	rootCmd.AddCommand(newBotCmd(cfg, botWeather, "Answer /w <location> with the current temperature"))
	rootCmd.AddCommand(newLeaderboardCmd(cfg))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd(nil).Execute(); err != nil {
		os.Exit(1)
	}
}
