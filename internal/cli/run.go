package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iamwavecut/hrbots/internal/adapters/weatherapi"
	"github.com/iamwavecut/hrbots/internal/bot"
	"github.com/iamwavecut/hrbots/internal/config"
	"github.com/iamwavecut/hrbots/internal/db"
	"github.com/iamwavecut/hrbots/internal/handlers/echo"
	"github.com/iamwavecut/hrbots/internal/handlers/stats"
	"github.com/iamwavecut/hrbots/internal/handlers/weather"
	"github.com/iamwavecut/hrbots/internal/highrise"
	"github.com/iamwavecut/hrbots/internal/infra"
	"github.com/iamwavecut/hrbots/internal/lifecycle"
	"github.com/iamwavecut/hrbots/internal/observability"
)

const (
	botEcho    = "echo"
	botStats   = "stats"
	botWeather = "weather"

	stopTimeout = 5 * time.Second
)

func newBotCmd(cfg *config.Config, kind, short string) *cobra.Command {
	return &cobra.Command{
		Use:   kind,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBot(ctx, *cfg, kind)
		},
	}
}

func runBot(ctx context.Context, cfg config.Config, kind string) error {
	if err := cfg.RequireSession(); err != nil {
		return err
	}
	logger := log.WithFields(log.Fields{"bot": kind, "room": cfg.RoomID})

	shutdownTracing := observability.Init(ctx)
	defer func() { _ = shutdownTracing(context.WithoutCancel(ctx)) }()

	runtime := lifecycle.NewRuntime()

	var store db.Client
	if kind == botStats {
		var err error
		if store, err = openStore(ctx, cfg); err != nil {
			return errors.Wrap(err, "open stats store")
		}
		runtime.Register(storeComponent{store})
	}
	if cfg.MetricsAddr != "" {
		runtime.Register(observability.NewServer(cfg.MetricsAddr))
	}

	client, err := highrise.Dial(ctx, cfg.BotAPIURL, cfg.RoomID, cfg.APIToken)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return errors.Wrap(err, "connect to room")
	}
	service := bot.NewService(client, store, cfg.Language)

	var handler bot.Handler
	switch kind {
	case botEcho:
		handler = echo.NewEcho(service, observability.NewTranscript(os.Stdout))
	case botStats:
		handler = stats.NewStats(service, stats.Config{
			Prefix:          cfg.Stats.Prefix,
			LeaderboardSize: cfg.Stats.LeaderboardSize,
		})
	case botWeather:
		api := weatherapi.NewWeatherAPI(cfg.Weather.APIKey, cfg.Weather.BaseURL, nil)
		handler = weather.NewWeather(service, api, weather.Config{
			Prefix:    cfg.Weather.Prefix,
			ErrorMode: weather.ErrorMode(cfg.Weather.ErrorMode),
		})
	default:
		_ = client.Close()
		return errors.Errorf("unknown bot %q", kind)
	}

	session := bot.NewSession(client, bot.NewEventProcessor(handler), bot.SessionOptions{
		EventTTL:  cfg.EventTTL,
		QueueSize: cfg.EventQueueSize,
	})
	runtime.Register(session)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if _, changed := <-infra.MonitorExecutable(runCtx); changed {
			logger.Warn("executable file was modified, stopping")
			cancel()
		}
	}()

	logger.Info("bot is running")
	if err := runtime.Run(runCtx, session.Done(), stopTimeout); err != nil {
		return err
	}
	select {
	case <-session.Done():
		if err := session.Err(); err != nil {
			return errors.Wrap(err, "room session ended")
		}
	default:
	}
	logger.Info("bot stopped")
	return nil
}
