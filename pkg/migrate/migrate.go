package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/angelmondragon/ecomagent-backend/pkg/config"
	"github.com/pressly/goose/v3"
)

// DefaultDir is where the SQL files live in the source tree; `create` writes here.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var embedded embed.FS

// EmbeddedFS returns the compiled-in migration set for a dialect.
func EmbeddedFS(dialect string) (fs.FS, error) {
	sub, err := fs.Sub(embedded, "migrations/"+normalizeDialect(dialect))
	if err != nil {
		return nil, fmt.Errorf("embedded migrations for %q: %w", dialect, err)
	}
	return sub, nil
}

// DirFS resolves migrations from disk: <dir>/<dialect> when it exists, else dir itself.
func DirFS(dir, dialect string) fs.FS {
	nested := strings.TrimRight(dir, "/") + "/" + normalizeDialect(dialect)
	if info, err := os.Stat(nested); err == nil && info.IsDir() {
		return os.DirFS(nested)
	}
	return os.DirFS(dir)
}

func normalizeDialect(dialect string) string {
	if strings.EqualFold(dialect, config.DriverPostgres) {
		return config.DriverPostgres
	}
	return config.DriverSQLite
}

func gooseDialect(dialect string) goose.Dialect {
	if normalizeDialect(dialect) == config.DriverPostgres {
		return goose.DialectPostgres
	}
	return goose.DialectSQLite3
}

func newProvider(db *sql.DB, dialect string, fsys fs.FS) (*goose.Provider, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if fsys == nil {
		return nil, fmt.Errorf("migrations fs is required")
	}
	provider, err := goose.NewProvider(gooseDialect(dialect), db, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return provider, nil
}

// Run executes a goose command (up|down|status) against the given migration set.
// Status lines are written to out when non-nil. The provider is not closed:
// goose closes the supplied *sql.DB on Close and callers own that pool.
func Run(ctx context.Context, db *sql.DB, dialect string, fsys fs.FS, command string, out io.Writer) error {
	provider, err := newProvider(db, dialect, fsys)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			return fmt.Errorf("goose up: %w", err)
		}
		for _, r := range results {
			printf(out, "OK   %s (%s)\n", r.Source.Path, r.Duration)
		}
	case "down":
		result, err := provider.Down(ctx)
		if err != nil {
			return fmt.Errorf("goose down: %w", err)
		}
		if result != nil {
			printf(out, "DOWN %s\n", result.Source.Path)
		}
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("goose status: %w", err)
		}
		for _, s := range statuses {
			printf(out, "%-8s %s\n", s.State, s.Source.Path)
		}
	default:
		return fmt.Errorf("unsupported goose command %q", command)
	}
	return nil
}

// MigrateToVersion migrates up/down to the requested version by comparing current DB version.
func MigrateToVersion(ctx context.Context, db *sql.DB, dialect string, fsys fs.FS, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}

	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	provider, err := newProvider(db, dialect, fsys)
	if err != nil {
		return err
	}

	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil

	case current < target:
		if _, err := provider.UpTo(ctx, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
		return nil

	default:
		if _, err := provider.DownTo(ctx, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
		return nil
	}
}

func printf(out io.Writer, format string, args ...any) {
	if out == nil {
		return
	}
	fmt.Fprintf(out, format, args...)
}
