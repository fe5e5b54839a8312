package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"animal-donations/internal/donationportal/data/database"
	"animal-donations/internal/donationportal/data/dbrepository"
	"animal-donations/pkg/logging"
	"animal-donations/pkg/pgxstorage"
)

type backend struct {
	storage            *pgxstorage.DBStorage
	repository         *dbrepository.DBRepository
	transactionManager *pgxstorage.TransactionsManager
	logger             *logging.ZapLogger
}

func (b *backend) Close() {
	b.storage.Close()
	_ = b.logger.Sync()
}

func loadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func connectionString(cmd *cobra.Command) (string, error) {
	if err := loadEnv(); err != nil {
		return "", err
	}
	dsn, err := cmd.Flags().GetString("database")
	if err != nil {
		return "", fmt.Errorf("failed to read database flag: %w", err)
	}
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URI")
	}
	if dsn == "" {
		return "", errors.New("database connection string is not set, use --database or DATABASE_URI")
	}
	return dsn, nil
}

// openBackend connects to the database and applies pending migrations.
func openBackend(ctx context.Context, cmd *cobra.Command) (*backend, error) {
	dsn, err := connectionString(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewZapLogger(zapcore.WarnLevel)
	if err != nil {
		return nil, err
	}
	storage, err := pgxstorage.New(ctx, database.NewPgxDatabaseFactory(database.Config{
		ConnectionString:   dsn,
		RetryAttemptDelays: []time.Duration{0, time.Second, 3 * time.Second},
	}))
	if err != nil {
		return nil, err
	}
	return &backend{
		storage:            storage,
		repository:         dbrepository.New(storage, logger),
		transactionManager: pgxstorage.NewTransactionsManager(storage),
		logger:             logger,
	}, nil
}
