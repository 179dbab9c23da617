package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/ecomagent-backend/pkg/db"
	"github.com/angelmondragon/ecomagent-backend/pkg/logger"
)

// EnsureSchema applies the embedded migrations for the client's dialect. Every
// statement is CREATE ... IF NOT EXISTS, so calling it against an existing
// database is a no-op.
func EnsureSchema(ctx context.Context, client *db.Client, logg *logger.Logger) error {
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	fsys, err := EmbeddedFS(client.Dialect())
	if err != nil {
		return err
	}

	if logg != nil {
		ctx = logg.WithField(ctx, "dialect", client.Dialect())
		logg.Info(ctx, "applying schema migrations")
	}

	if err := Run(ctx, sqlDB, client.Dialect(), fsys, "up", nil); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "schema migrations completed")
	}
	return nil
}
