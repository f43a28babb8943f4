package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/target/order-notify/config"
	"github.com/target/order-notify/internal/data"
)

const (
	postgresMaxOpenConns    = 10
	postgresMaxIdleConns    = 2
	postgresConnMaxLifetime = 10 * time.Minute
	connectTimeout          = 5 * time.Second
)

// PostgresDSN renders cfg as a pgx connection URL with credentials escaped.
func PostgresDSN(cfg config.DBConfig) string {
	q := url.Values{}
	q.Set("sslmode", cfg.SSLMode)
	return (&url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.Name,
		RawQuery: q.Encode(),
	}).String()
}

// OpenPostgres opens the store channel database and checks it is reachable.
func OpenPostgres(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", PostgresDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(postgresMaxOpenConns)
	db.SetMaxIdleConns(postgresMaxIdleConns)
	db.SetConnMaxLifetime(postgresConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		return nil, errors.Join(fmt.Errorf("ping postgres at %s: %w", cfg.Host, err), db.Close())
	}

	if logger != nil {
		logger.InfoContext(ctx, "postgres ready", "host", cfg.Host, "port", cfg.Port, "database", cfg.Name)
	}
	return db, nil
}

// MigrateSchema brings the store channel schema up to date.
func MigrateSchema(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if err := data.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	if logger != nil {
		logger.InfoContext(ctx, "schema up to date")
	}
	return nil
}
