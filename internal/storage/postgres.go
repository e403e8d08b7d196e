package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eggcelent-store/internal/logger"

	"go.uber.org/zap"
)

// PostgresStore keeps keys in the kv_store table created by cmd/migrate.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value
		FROM kv_store
		WHERE key = $1
	`, key).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select %s: %w", key, err)
	}
	return value, true, nil
}

func (s *PostgresStore) Apply(ctx context.Context, batch *Batch) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "storage"),
		zap.String("method", "PostgresStore.Apply"),
		zap.Int("ops", batch.Len()),
	)

	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, op := range batch.Ops() {
		if op.Delete {
			if _, err := tx.ExecContext(ctx, `DELETE FROM kv_store WHERE key = $1`, op.Key); err != nil {
				return fmt.Errorf("delete %s: %w", op.Key, err)
			}
			continue
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO kv_store (key, value, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (key) DO UPDATE
			SET value = EXCLUDED.value,
			    updated_at = NOW()
		`, op.Key, op.Value)
		if err != nil {
			return fmt.Errorf("upsert %s: %w", op.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	log.Debug("batch committed", zap.Duration("duration", time.Since(start)))
	return nil
}
