package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"animal-donations/pkg/timeutils"
)

type Config struct {
	ConnectionString   string
	RetryAttemptDelays []time.Duration
}

type PgxDatabaseFactory struct {
	cfg Config
}

func NewPgxDatabaseFactory(cfg Config) *PgxDatabaseFactory {
	return &PgxDatabaseFactory{
		cfg: cfg,
	}
}

// Create applies pending migrations and opens a pool. The first ping is
// retried over RetryAttemptDelays so the service can start before the database.
func (f *PgxDatabaseFactory) Create(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, f.cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to create a connection pool: %w", err)
	}
	delays := f.cfg.RetryAttemptDelays
	if len(delays) == 0 {
		delays = []time.Duration{0}
	}
	_, err = timeutils.Retry(
		ctx,
		delays,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, pool.Ping(ctx)
		},
		func(_ struct{}, err error) bool {
			return err != nil
		},
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("database is unreachable: %w", err)
	}
	if err := RunMigrations(f.cfg.ConnectionString); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run DB migrations: %w", err)
	}
	return pool, nil
}

//go:embed migrations/*.sql
var migrationsDir embed.FS

func newMigrate(dsn string) (*migrate.Migrate, error) {
	d, err := iofs.New(migrationsDir, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to return an iofs driver: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", d, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to get a new migrate instance: %w", err)
	}
	return m, nil
}

func RunMigrations(dsn string) error {
	m, err := newMigrate(dsn)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to apply migrations to the DB: %w", err)
		}
	}
	return nil
}

// RollbackMigrations reverts every applied migration.
func RollbackMigrations(dsn string) error {
	m, err := newMigrate(dsn)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Down(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to roll back migrations: %w", err)
		}
	}
	return nil
}
