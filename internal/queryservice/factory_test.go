package queryservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-search/internal/common/config"
	"vehicle-search/internal/common/errors"
	"vehicle-search/internal/common/logger"
	"vehicle-search/internal/models"
)

func TestOpen_SQLiteWithCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cfg := config.Default()
	cfg.Database.SQLite.Path = filepath.Join(t.TempDir(), "cars.db")
	cfg.Database.Redis.Enabled = true
	cfg.Database.Redis.Address = mr.Addr()

	b, err := Open(context.Background(), cfg, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer b.Close()

	sqlStore, err := b.RequireSQL()
	require.NoError(t, err)
	require.NoError(t, sqlStore.EnsureSchema(context.Background()))
	_, err = sqlStore.Insert(context.Background(), fixtureVehicles())
	require.NoError(t, err)

	_, ok := b.Store.(*CachedStore)
	assert.True(t, ok)

	rows, err := b.Store.Query(context.Background(), models.VehicleQuery{})
	require.NoError(t, err)
	assert.Len(t, rows, len(fixtureVehicles()))
	assert.Len(t, mr.Keys(), 1)
}

func TestOpen_RedisDownServesUncached(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Default()
	cfg.Database.SQLite.Path = filepath.Join(t.TempDir(), "cars.db")
	cfg.Database.Redis.Enabled = true
	cfg.Database.Redis.Address = addr

	b, err := Open(context.Background(), cfg, logger.NewNoOpLogger())
	require.NoError(t, err)
	defer b.Close()
	_, ok := b.Store.(*SQLStore)
	assert.True(t, ok)
}

func TestOpen_Elasticsearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.QueryServer.Backend = config.BackendElasticsearch
	cfg.Database.Elasticsearch.URL = srv.URL

	b, err := Open(context.Background(), cfg, logger.NewNoOpLogger())
	require.NoError(t, err)
	defer b.Close()

	_, ok := b.Store.(*ElasticStore)
	assert.True(t, ok)
	_, err = b.RequireSQL()
	assert.Error(t, err)
}

func TestOpen_ElasticsearchDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	cfg := config.Default()
	cfg.QueryServer.Backend = config.BackendElasticsearch
	cfg.Database.Elasticsearch.URL = url

	_, err := Open(context.Background(), cfg, logger.NewNoOpLogger())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDatabaseConnectionFailed))
}
