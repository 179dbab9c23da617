package migrate

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/ecomagent-backend/pkg/config"
	"github.com/angelmondragon/ecomagent-backend/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func newSQLiteClient(t *testing.T) *db.Client {
	t.Helper()
	conn, err := db.Open(sqlite.Open("file:" + t.Name() + "?mode=memory&cache=shared"))
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db.Wrap(conn, config.DriverSQLite)
}

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	for _, dialect := range []string{config.DriverSQLite, config.DriverPostgres} {
		fsys, err := EmbeddedFS(dialect)
		require.NoError(t, err)
		assert.NoError(t, ValidateFS(fsys), dialect)
	}
}

func TestEmbeddedMigrationsMatchAcrossDialects(t *testing.T) {
	names := func(dialect string) []string {
		fsys, err := EmbeddedFS(dialect)
		require.NoError(t, err)
		entries, err := fs.ReadDir(fsys, ".")
		require.NoError(t, err)
		out := make([]string, 0, len(entries))
		for _, e := range entries {
			out = append(out, e.Name())
		}
		return out
	}
	assert.Equal(t, names(config.DriverSQLite), names(config.DriverPostgres))
}

func TestSQLiteMigrationsDeclareTables(t *testing.T) {
	fsys, err := EmbeddedFS(config.DriverSQLite)
	require.NoError(t, err)

	checks := map[string][]string{
		"*_create_products.sql": {
			"CREATE TABLE IF NOT EXISTS products",
			"product_id TEXT UNIQUE",
			"DROP TABLE IF EXISTS products",
		},
		"*_create_total_sales_metrics.sql": {
			"CREATE TABLE IF NOT EXISTS total_sales_metrics",
			"FOREIGN KEY (product_id) REFERENCES products (product_id)",
		},
		"*_create_ad_sales_metrics.sql": {
			"CREATE TABLE IF NOT EXISTS ad_sales_metrics",
			"cpc REAL",
		},
	}
	for pattern, subs := range checks {
		matches, err := fs.Glob(fsys, pattern)
		require.NoError(t, err)
		require.Len(t, matches, 1, pattern)
		data, err := fs.ReadFile(fsys, matches[0])
		require.NoError(t, err)
		for _, sub := range subs {
			assert.Contains(t, string(data), sub, matches[0])
		}
	}
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	client := newSQLiteClient(t)
	ctx := context.Background()

	require.NoError(t, EnsureSchema(ctx, client, nil))
	require.NoError(t, EnsureSchema(ctx, client, nil))

	for _, table := range []string{"products", "total_sales_metrics", "ad_sales_metrics"} {
		var n int64
		err := client.Raw(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&n).Error
		require.NoError(t, err)
		assert.EqualValues(t, 1, n, table)
	}
}

func TestValidateFSRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "create_things.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	err := ValidateFS(os.DirFS(dir))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid migration filename")
}

func TestCreateSQLMigrationWritesBothDialects(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 8, 1, 12, 30, 0, 0, time.UTC)

	paths, err := CreateSQLMigration(dir, "Add Orders Index!", now)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	for _, dialect := range []string{config.DriverSQLite, config.DriverPostgres} {
		want := filepath.Join(dir, dialect, "20250801123000_add_orders_index.sql")
		assert.Contains(t, paths, want)
		data, err := os.ReadFile(want)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "-- +goose Up"))
	}
	assert.NoError(t, ValidateFS(DirFS(dir, config.DriverSQLite)))

	_, err = CreateSQLMigration(dir, "Add Orders Index!", now)
	assert.Error(t, err, "second create with the same version must fail")
}
