// Package app wires configuration into a ready-to-run Rotator.
package app

import (
	"context"
	"fmt"

	"player_rotation/ingestion/internal/client"
	"player_rotation/ingestion/internal/config"
	"player_rotation/ingestion/internal/lock"
	"player_rotation/ingestion/internal/repository"
	"player_rotation/ingestion/internal/rotation"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// StoreOpener returns an OpenFunc that opens the configured store for one invocation
func StoreOpener(location string) rotation.OpenFunc {
	return func(ctx context.Context) (rotation.Store, error) {
		db, err := repository.Open(ctx, location)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
}

// NewRotator builds the rotator and returns a cleanup func for the
// resources it holds (the Redis client, when locking is enabled).
func NewRotator(ctx context.Context, cfg *config.Config) (*rotation.Rotator, func(), error) {
	apiClient := client.NewClient(cfg.APIURL, cfg.APIKey, cfg.APITimeout)

	cleanup := func() {}
	var locker lock.Locker = lock.Nop{}

	if cfg.LockEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info().Str("addr", cfg.RedisAddr()).Str("key", cfg.LockKey).Msg("Invocation lock enabled")

		locker = lock.NewRedisLock(rdb, cfg.LockKey, cfg.LockTTL)
		cleanup = func() {
			if err := rdb.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close redis client")
			}
		}
	}

	log.Info().
		Str("storage", string(repository.DialectFor(cfg.DatabaseName))).
		Msg("Rotator initialized")

	return rotation.NewRotator(apiClient, StoreOpener(cfg.DatabaseName), locker), cleanup, nil
}
