// Package persistence opens the repository backend selected by configuration.
package persistence

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"example.com/exercisetracker/internal/config"
	"example.com/exercisetracker/internal/domain"
	"example.com/exercisetracker/internal/persistence/memory"
	"example.com/exercisetracker/internal/persistence/mongodb"
	"example.com/exercisetracker/internal/persistence/postgres"
)

// Store is an open repository plus the function that releases its connection.
type Store struct {
	Repository domain.Repository
	Close      func(context.Context) error
}

// Open connects to the configured backend, bounded by cfg.StoreConnectTimeout, and prepares
// its indexes or tables.
func Open(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (*Store, error) {
	log := logger.WithField("driver", cfg.StoreDriver)

	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.StoreConnectTimeout)
		if err != nil {
			return nil, fmt.Errorf("connect to mongodb: %w", err)
		}
		repo := mongodb.NewRepository(client.Database(cfg.MongoDatabase))
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ensure mongodb indexes: %w", err)
		}
		log.WithField("database", cfg.MongoDatabase).Info("connected to mongodb")
		return &Store{Repository: repo, Close: client.Disconnect}, nil

	case config.DriverPostgres:
		pool, err := postgres.Connect(ctx, cfg.PostgresURL, cfg.StoreConnectTimeout)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		repo := postgres.NewRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensure postgres schema: %w", err)
		}
		log.Info("connected to postgres")
		return &Store{Repository: repo, Close: func(context.Context) error {
			pool.Close()
			return nil
		}}, nil

	case config.DriverMemory:
		log.Warn("using in-memory store; data is lost on restart")
		return &Store{Repository: memory.NewRepository(), Close: func(context.Context) error { return nil }}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
