//go:build integration

package repository

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests for database operations
// Run with: go test -v -tags=integration ./internal/repository/...

func testConfig() Config {
	cfg := Config{
		Host:     "localhost",
		Port:     "5432",
		Database: "sportrate_test",
		User:     "sportrate",
		Password: "sportrate",
		SSLMode:  "disable",
	}
	if host := os.Getenv("TEST_DATABASE_HOST"); host != "" {
		cfg.Host = host
	}
	return cfg
}

// setupTestDB connects and rebuilds the schema from migrations/
func setupTestDB(t *testing.T) (*Database, context.Context) {
	t.Helper()
	ctx := context.Background()

	db, err := NewDatabase(ctx, testConfig())
	require.NoError(t, err, "Failed to connect to test database")

	_, err = db.Pool.Exec(ctx, `DROP TABLE IF EXISTS matches; DROP TYPE IF EXISTS sport_type;`)
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join("..", "..", "migrations", "*.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files, "migrations not found")
	sort.Strings(files)

	for _, f := range files {
		sql, err := os.ReadFile(f)
		require.NoError(t, err)
		_, err = db.Pool.Exec(ctx, string(sql))
		require.NoError(t, err, "apply %s", f)
	}

	return db, ctx
}

func teardownTestDB(t *testing.T, db *Database) {
	db.Close()
}

func TestDatabaseConnection(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	err := db.Health(ctx)
	assert.NoError(t, err, "Database health check should pass")

	stats := db.PoolStats()
	assert.NotNil(t, stats, "Should return connection pool stats")
	assert.GreaterOrEqual(t, stats["max_conns"].(int32), int32(1), "Should have at least 1 max connection")
}

func TestDatabasePing(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := db.Pool.Ping(ctx)
	assert.NoError(t, err, "Should successfully ping database")
}
