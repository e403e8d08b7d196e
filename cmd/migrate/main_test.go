package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMigrationPart(t *testing.T) {
	content := `
-- +migrate Up
CREATE TABLE kv_store (key text primary key);
CREATE INDEX kv_store_updated ON kv_store (updated_at);

-- +migrate Down
DROP TABLE kv_store;
`
	t.Run("ExtractUp", func(t *testing.T) {
		up := extractMigrationPart(content, "Up")
		assert.Contains(t, up, "CREATE TABLE kv_store")
		assert.Contains(t, up, "CREATE INDEX kv_store_updated")
		assert.NotContains(t, up, "DROP TABLE kv_store")
		assert.NotContains(t, up, "-- +migrate Up")
	})

	t.Run("ExtractDown", func(t *testing.T) {
		down := extractMigrationPart(content, "Down")
		assert.Contains(t, down, "DROP TABLE kv_store")
		assert.NotContains(t, down, "CREATE TABLE kv_store")
	})
}

func TestShippedMigration(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("..", "..", "migrations", "0001_kv_store.sql"))
	require.NoError(t, err)

	assert.Contains(t, extractMigrationPart(string(content), "Up"), "CREATE TABLE IF NOT EXISTS kv_store")
	assert.Contains(t, extractMigrationPart(string(content), "Down"), "DROP TABLE IF EXISTS kv_store")
}

func writeMigration(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunMigrationsUp(t *testing.T) {
	ctx := context.Background()

	t.Run("AppliesPending", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		dir := t.TempDir()
		applied := writeMigration(t, dir, "0001_kv_store.sql", "-- +migrate Up\nCREATE TABLE kv_store (key text);")
		pending := writeMigration(t, dir, "0002_kv_index.sql", "-- +migrate Up\nCREATE INDEX kv_idx ON kv_store (key);")

		mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
			WithArgs("0001_kv_store.sql").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
			WithArgs("0002_kv_index.sql").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectBegin()
		mock.ExpectExec("CREATE INDEX kv_idx").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO schema_migrations").
			WithArgs("0002_kv_index.sql").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		require.NoError(t, runMigrationsUp(ctx, db, []string{applied, pending}))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollsBackFailedMigration", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		file := writeMigration(t, t.TempDir(), "0001_kv_store.sql", "-- +migrate Up\nCREATE TABLE kv_store (key text);")

		mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
			WithArgs("0001_kv_store.sql").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE kv_store").
			WillReturnError(errors.New("syntax error"))
		mock.ExpectRollback()

		err = runMigrationsUp(ctx, db, []string{file})
		assert.ErrorContains(t, err, "migration failed (0001_kv_store.sql)")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRunMigrationsDown(t *testing.T) {
	ctx := context.Background()

	t.Run("RollsBackLatest", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		file := writeMigration(t, t.TempDir(), "0001_kv_store.sql",
			"-- +migrate Up\nCREATE TABLE kv_store (key text);\n-- +migrate Down\nDROP TABLE kv_store;")

		mock.ExpectQuery("SELECT version FROM schema_migrations").
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("0001_kv_store.sql"))
		mock.ExpectBegin()
		mock.ExpectExec("DROP TABLE kv_store").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM schema_migrations").
			WithArgs("0001_kv_store.sql").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, runMigrationsDown(ctx, db, []string{file}))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NothingApplied", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT version FROM schema_migrations").
			WillReturnError(sql.ErrNoRows)

		assert.NoError(t, runMigrationsDown(ctx, db, nil))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MissingFile", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT version FROM schema_migrations").
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("0009_gone.sql"))

		err = runMigrationsDown(ctx, db, nil)
		assert.EqualError(t, err, "migration file not found for version: 0009_gone.sql")
	})
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("UnknownMode", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = run(ctx, db, "sideways", t.TempDir())
		assert.EqualError(t, err, "unknown mode: sideways (use 'up' or 'down')")
	})

	t.Run("SortsFiles", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		dir := t.TempDir()
		writeMigration(t, dir, "0002_b.sql", "-- +migrate Up\nSELECT 2;")
		writeMigration(t, dir, "0001_a.sql", "-- +migrate Up\nSELECT 1;")

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").WithArgs("0001_a.sql").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery("SELECT EXISTS").WithArgs("0002_b.sql").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		require.NoError(t, run(ctx, db, "up", dir))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
