package queryservice

import (
	"context"
	"fmt"
	"time"

	"vehicle-search/internal/common/config"
	"vehicle-search/internal/common/database"
	"vehicle-search/internal/common/errors"
	"vehicle-search/internal/common/logger"
)

// Backend is a configured store plus what must be released with it.
type Backend struct {
	Store   Store
	SQL     *SQLStore
	closers []func() error
}

func (b *Backend) Close() error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open builds the store selected by query_server.backend, checks that
// it answers, and wraps it with the Redis cache when enabled.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (*Backend, error) {
	b := &Backend{}
	maxRows := cfg.QueryServer.MaxRows

	switch cfg.QueryServer.Backend {
	case config.BackendElasticsearch:
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return nil, errors.NewDatabaseConnectionFailedError(err)
		}
		if err := es.Ping(ctx); err != nil {
			return nil, errors.NewDatabaseConnectionFailedError(err)
		}
		b.Store = NewElasticStore(es.Client, es.Index, maxRows)
	default:
		db, err := database.NewSQL(cfg.Database)
		if err != nil {
			return nil, errors.NewDatabaseConnectionFailedError(err)
		}
		b.closers = append(b.closers, db.Close)
		if err := db.Ping(ctx); err != nil {
			_ = b.Close()
			return nil, errors.NewDatabaseConnectionFailedError(err)
		}
		b.SQL = NewSQLStore(db.GetDB(), maxRows)
		b.Store = b.SQL
	}

	if cfg.Database.Redis.Enabled {
		rc := database.NewRedis(cfg.Database.Redis)
		b.closers = append(b.closers, rc.Close)
		if err := rc.Ping(ctx); err != nil {
			// the cache is optional; serve uncached
			log.Warn("redis unavailable, result cache disabled", map[string]interface{}{"error": err.Error()})
		} else {
			ttl := time.Duration(cfg.Database.Redis.CacheTTL) * time.Second
			b.Store = NewCachedStore(b.Store, rc.GetClient(), ttl, log)
		}
	}

	log.Info("vehicle store ready", map[string]interface{}{
		"backend": cfg.QueryServer.Backend,
		"driver":  cfg.Database.Driver,
		"cached":  cfg.Database.Redis.Enabled,
		"maxRows": maxRows,
	})
	return b, nil
}

// RequireSQL returns the SQL store or explains why there is none.
func (b *Backend) RequireSQL() (*SQLStore, error) {
	if b.SQL == nil {
		return nil, fmt.Errorf("operation needs the sql backend")
	}
	return b.SQL, nil
}
