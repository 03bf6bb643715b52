package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/hrbots/internal/i18n"
)

const EnvPrefix = "HR_"

type (
	Config struct {
		RoomID         string        `env:"ROOM_ID"`
		APIToken       string        `env:"API_TOKEN"`
		BotAPIURL      string        `env:"BOT_API_URL,default=wss://highrise.game/web/botapi"`
		Language       string        `env:"LANG,default=en"`
		LogLevel       int           `env:"LOG_LEVEL,default=4"`
		DotPath        string        `env:"DOT_PATH,default=~/.hrbots"`
		EventTTL       time.Duration `env:"EVENT_TTL,default=0s"`
		EventQueueSize int           `env:"EVENT_QUEUE_SIZE,default=1024"`
		MetricsAddr    string        `env:"METRICS_ADDR"`
		Stats          Stats
		Weather        Weather
	}

	Stats struct {
		Prefix          string `env:"STATS_PREFIX,default=/s"`
		Store           string `env:"STATS_STORE,default=json"`
		DataFile        string `env:"STATS_DATA_FILE,default=data.json"`
		SQLiteFile      string `env:"STATS_SQLITE_FILE,default=stats.db"`
		RedisURL        string `env:"STATS_REDIS_URL,default=redis://localhost:6379/0"`
		LeaderboardSize int    `env:"STATS_LEADERBOARD_SIZE,default=5"`
	}

	Weather struct {
		Prefix    string `env:"WEATHER_PREFIX,default=/w"`
		APIKey    string `env:"WEATHER_API_KEY"`
		BaseURL   string `env:"WEATHER_API_URL,default=http://api.weatherapi.com"`
		ErrorMode string `env:"WEATHER_ERROR_MODE,default=detailed"`
	}
)

const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"

	WeatherErrorsDetailed = "detailed"
	WeatherErrorsHint     = "hint"
	WeatherErrorsGeneric  = "generic"
)

// Load reads the configuration from lookuper, or from the process environment
// when lookuper is nil. Every key carries the HR_ prefix.
func Load(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}
	cfg := Config{}
	envcfg := envconfig.Config{
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, lookuper),
		Target:   &cfg,
	}
	if err := envconfig.ProcessWith(ctx, &envcfg); err != nil {
		return Config{}, fmt.Errorf("process env config: %w", err)
	}

	dotPath, err := homedir.Expand(cfg.DotPath)
	if err != nil {
		return Config{}, fmt.Errorf("expand dot path: %w", err)
	}
	cfg.DotPath = dotPath
	cfg.Language = strings.ToLower(cfg.Language)
	// Commands are matched as prefix plus one space.
	cfg.Stats.Prefix = strings.TrimRight(cfg.Stats.Prefix, " ")
	cfg.Weather.Prefix = strings.TrimRight(cfg.Weather.Prefix, " ")

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	log.Traceln("loaded config")
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Stats.Store {
	case StoreJSON, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("unknown stats store %q", c.Stats.Store)
	}
	switch c.Weather.ErrorMode {
	case WeatherErrorsDetailed, WeatherErrorsHint, WeatherErrorsGeneric:
	default:
		return fmt.Errorf("unknown weather error mode %q", c.Weather.ErrorMode)
	}
	if c.Stats.Prefix == "" || c.Weather.Prefix == "" {
		return fmt.Errorf("command prefixes must not be blank")
	}
	if !i18n.IsSupported(c.Language) {
		return fmt.Errorf("unsupported language %q", c.Language)
	}
	if c.Stats.LeaderboardSize <= 0 {
		return fmt.Errorf("leaderboard size must be positive, got %d", c.Stats.LeaderboardSize)
	}
	if c.EventQueueSize <= 0 {
		return fmt.Errorf("event queue size must be positive, got %d", c.EventQueueSize)
	}
	return nil
}

// RequireSession reports whether the room credentials needed to open a
// session are present.
func (c Config) RequireSession() error {
	if c.RoomID == "" {
		return fmt.Errorf("%sROOM_ID is required", EnvPrefix)
	}
	if c.APIToken == "" {
		return fmt.Errorf("%sAPI_TOKEN is required", EnvPrefix)
	}
	return nil
}
