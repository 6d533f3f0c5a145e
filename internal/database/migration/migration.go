package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_receipt_deliveries",
		SQL: `CREATE TABLE IF NOT EXISTS receipt_deliveries (
  id             UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  transaction_id TEXT        NOT NULL,
  customer_email TEXT        NOT NULL,
  notified       BOOLEAN     NOT NULL DEFAULT FALSE,
  archived       BOOLEAN     NOT NULL DEFAULT FALSE,
  archive_key    TEXT        NOT NULL DEFAULT '',
  archive_url    TEXT        NOT NULL DEFAULT '',
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_receipt_deliveries_transaction_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_receipt_deliveries_transaction_id ON receipt_deliveries (transaction_id);`,
	},
	{
		Name: "create_index_receipt_deliveries_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_receipt_deliveries_created_at ON receipt_deliveries (created_at);`,
	},
}

// EnsureMigrated checks if the 'receipt_deliveries' table exists and runs the
// migration steps if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()

	log.Info("db_migration_check", zap.String("db_host", dbHost))

	var exists bool
	query := "SELECT to_regclass('public.receipt_deliveries') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.String("db_host", dbHost),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.Error(err))
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("db_host", dbHost),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()))
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("migration_step", step.Name),
				zap.String("db_host", dbHost),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Error(err))
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()))
	}

	log.Info("db_migration_success",
		zap.String("db_host", dbHost),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))

	return nil
}
