// Package dbtest opens migrated in-memory SQLite stores for tests.
package dbtest

import (
	"context"
	"strings"
	"testing"

	"github.com/angelmondragon/ecomagent-backend/pkg/config"
	"github.com/angelmondragon/ecomagent-backend/pkg/db"
	"github.com/angelmondragon/ecomagent-backend/pkg/migrate"
	"gorm.io/driver/sqlite"
)

// NewSQLite returns a client over a private in-memory database with the
// schema applied. The database disappears when the test ends.
func NewSQLite(t testing.TB) *db.Client {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "?", "_").Replace(t.Name())
	conn, err := db.Open(sqlite.Open("file:" + name + "?mode=memory&cache=shared"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	client := db.Wrap(conn, config.DriverSQLite)
	if err := migrate.EnsureSchema(context.Background(), client, nil); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return client
}
