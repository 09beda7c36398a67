package database

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
)

func TestNewSQL_SQLite(t *testing.T) {
	c, err := NewSQL(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "cars.db")},
	})
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, config.DriverSQLite, c.Driver)
	require.NoError(t, c.Ping(context.Background()))

	var one int
	require.NoError(t, c.GetDB().Get(&one, "SELECT 1"))
	assert.Equal(t, 1, one)
}

func TestNewSQL_UnknownDriver(t *testing.T) {
	_, err := NewSQL(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestNewPostgres_LazyOpen(t *testing.T) {
	c, err := NewPostgres(config.PostgresConfig{Host: "127.0.0.1", Port: 1, Database: "x", User: "x", SSLMode: "disable"})
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, config.DriverPostgres, c.Driver)
}

func TestNewRedis_Ping(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	c := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer c.Close()
	assert.NoError(t, c.Ping(context.Background()))

	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}

func TestNewElasticsearch_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL, Index: "vehicles"})
	require.NoError(t, err)
	assert.Equal(t, "vehicles", c.Index)
	assert.NoError(t, c.Ping(context.Background()))
}
