package session

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/telematch/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("session",
	fx.Provide(NewFromConfig),
)

// NewFromConfig opens the configured backend and closes it when the app stops.
func NewFromConfig(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (Store, error) {
	store, err := Open(cfg.Session)
	if err != nil {
		return nil, err
	}

	log = log.Named("session")
	log.Info("session store ready", zap.String("backend", cfg.Session.Store))

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return store.Close()
		},
	})
	return store, nil
}

// Open builds the store named by cfg.Store.
func Open(cfg config.SessionConfig) (Store, error) {
	switch cfg.Store {
	case config.SessionStoreMemory:
		return NewMemoryStore(), nil
	case config.SessionStoreSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case config.SessionStoreRedis:
		addr := strings.TrimSpace(cfg.RedisAddr)
		if addr == "" {
			return nil, fmt.Errorf("session redis addr is required")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: strings.TrimSpace(cfg.RedisPassword),
			DB:       cfg.RedisDB,
		})
		return NewRedisStore(client, cfg.KeyPrefix, cfg.TTL)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Store)
	}
}
