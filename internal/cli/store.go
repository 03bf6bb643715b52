package cli

import (
	"context"
	"fmt"

	"github.com/mitchellh/go-homedir"

	"github.com/iamwavecut/hrbots/internal/config"
	"github.com/iamwavecut/hrbots/internal/db"
	"github.com/iamwavecut/hrbots/internal/db/jsonfile"
	redisstore "github.com/iamwavecut/hrbots/internal/db/redis"
	"github.com/iamwavecut/hrbots/internal/db/sqlite"
	"github.com/iamwavecut/hrbots/internal/infra"
)

// openStore opens the stats backend selected by HR_STATS_STORE.
func openStore(ctx context.Context, cfg config.Config) (db.Client, error) {
	switch cfg.Stats.Store {
	case config.StoreJSON:
		path, err := homedir.Expand(cfg.Stats.DataFile)
		if err != nil {
			return nil, err
		}
		client, err := jsonfile.NewJSONClient(path)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.StoreSQLite:
		dir, err := infra.GetWorkDir(cfg.DotPath)
		if err != nil {
			return nil, err
		}
		client, err := sqlite.NewSQLiteClient(ctx, dir, cfg.Stats.SQLiteFile)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.StoreRedis:
		redisCfg := redisstore.DefaultConfig()
		redisCfg.URL = cfg.Stats.RedisURL
		client, err := redisstore.New(ctx, redisCfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	return nil, fmt.Errorf("unknown stats store %q", cfg.Stats.Store)
}

// storeComponent closes the store when the runtime stops.
type storeComponent struct {
	db.Client
}

func (storeComponent) Start(context.Context) error {
	return nil
}

func (s storeComponent) Stop(context.Context) error {
	return s.Close()
}
