// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"context"
	"testing"

	"warbler/internal/cache"
	"warbler/internal/config"
	"warbler/internal/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewTestDB returns a migrated in-memory SQLite database that lives until the test ends.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		Env:      "test",
		DBDriver: config.DriverSQLite,
		DBDSN:    ":memory:",
		LogLevel: "error",
	}
	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, database.ApplySchema(context.Background(), db))
	return db
}

// NewTestCache returns a cache backed by a miniredis server that stops when the test ends.
func NewTestCache(t testing.TB) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c := cache.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

// CountRows returns the number of rows in model's table.
func CountRows(t testing.TB, db *gorm.DB, model interface{}) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
