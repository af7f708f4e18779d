// Package app wires the configured backends for the binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/harentsoaR/medisync-api/internal/cache"
	"github.com/harentsoaR/medisync-api/internal/config"
	"github.com/harentsoaR/medisync-api/internal/repository"
	"github.com/harentsoaR/medisync-api/internal/repository/memory"
	"github.com/harentsoaR/medisync-api/internal/repository/mongodb"
)

// Store bundles the repositories of one backend.
type Store struct {
	Users         repository.UserRepository
	Appointments  repository.AppointmentRepository
	Notifications repository.NotificationRepository

	Ping  func(ctx context.Context) error
	Close func(ctx context.Context) error
}

// OpenStore connects the backend selected by STORE_DRIVER.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	if cfg.StoreDriver == "memory" {
		log.Warn().Msg("using in-memory store, data is lost on restart")
		return &Store{
			Users:         memory.NewUserRepository(),
			Appointments:  memory.NewAppointmentRepository(),
			Notifications: memory.NewNotificationRepository(),
			Ping:          func(context.Context) error { return nil },
			Close:         func(context.Context) error { return nil },
		}, nil
	}

	client, err := mongodb.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.MongoDatabase)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	log.Info().Str("database", cfg.MongoDatabase).Msg("connected to MongoDB")

	return &Store{
		Users:         mongodb.NewUserRepository(db),
		Appointments:  mongodb.NewAppointmentRepository(db),
		Notifications: mongodb.NewNotificationRepository(db),
		Ping:          func(ctx context.Context) error { return client.Ping(ctx, nil) },
		Close:         client.Disconnect,
	}, nil
}

// OpenCache returns Redis when REDIS_URL is set and an in-process cache
// otherwise. The returned func releases the backend.
func OpenCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) (cache.Cache, func() error, error) {
	if cfg.RedisURL == "" {
		return cache.NewMemory(cache.TTLAllAppointments, 2*cache.TTLAllAppointments), func() error { return nil }, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Msg("using Redis cache")
	return cache.NewRedis(client, "medisync:"), client.Close, nil
}

// CloseTimeout bounds how long shutdown waits for the store to disconnect.
const CloseTimeout = 5 * time.Second
