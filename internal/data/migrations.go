package data

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/target/order-notify/internal/migrate"
)

// RunMigrations applies pending schema migrations and logs what changed.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	applied, err := migrate.Run(ctx, db)
	if err != nil {
		return err
	}
	if len(applied) > 0 {
		slog.Default().InfoContext(ctx, "database migrations applied", "versions", applied)
	}
	return nil
}
