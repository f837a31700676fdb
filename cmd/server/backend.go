package main

import (
	"context"
	"fmt"
	"log/slog"

	"synergy/internal/config"
	"synergy/internal/db"
	"synergy/internal/store"
	"synergy/internal/store/memstore"
	"synergy/internal/store/mongostore"
	"synergy/internal/store/sqlstore"
)

// backend is the open document store every collection lives in.
type backend struct {
	driver string
	log    *slog.Logger
	mongo  *db.Mongo
	sql    *sqlstore.Store
}

func openBackend(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*backend, error) {
	b := &backend{driver: cfg.Driver, log: logger}
	switch cfg.Driver {
	case config.DriverMongo:
		logger.Info("connecting to MongoDB", "uri", cfg.MongoURI, "database", cfg.MongoDatabase)
		m, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		b.mongo = m
		logger.Info("connected to MongoDB")
	case config.DriverSQLite, config.DriverPostgres:
		logger.Info("opening SQL store", "driver", cfg.Driver)
		s, err := sqlstore.Open(ctx, cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		b.sql = s
	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on exit")
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	return b, nil
}

func (b *backend) Close(ctx context.Context) error {
	switch {
	case b.mongo != nil:
		return b.mongo.Close(ctx)
	case b.sql != nil:
		return b.sql.Close()
	}
	return nil
}

// openCollection returns the named collection of b, creating its table or
// indexes as needed.
func openCollection[T any](ctx context.Context, b *backend, name string) (store.Collection[T], error) {
	switch {
	case b.mongo != nil:
		c := mongostore.New[T](b.mongo.Database, name, b.log)
		if err := c.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return c, nil
	case b.sql != nil:
		c, err := sqlstore.NewCollection[T](ctx, b.sql, name)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return memstore.New[T](name), nil
}
