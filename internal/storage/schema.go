package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zelena-gryadka/gryadka/internal/logger"
	"github.com/zelena-gryadka/gryadka/internal/storage/migrations"
)

const createMetadataTable = `
	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`

// SchemaVersion is the version a freshly opened database ends up at.
func SchemaVersion() int {
	return migrations.LatestVersion()
}

func ensureSchema(ctx context.Context, db *sql.DB, path string) error {
	logSQL(createMetadataTable)

	if _, err := db.ExecContext(ctx, createMetadataTable); err != nil {
		return fmt.Errorf("create metadata table: %w", err)
	}

	current, err := getSchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	if current == 0 {
		return initNewDatabase(ctx, db)
	}

	if current > migrations.LatestVersion() {
		logger.Log.Warnf("Database schema v%d is newer than this binary supports (v%d)", current, migrations.LatestVersion())

		return nil
	}

	return migrateSchema(ctx, db, current, path)
}

// getSchemaVersion returns 0 for a new database.
func getSchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int

	query := "SELECT value FROM metadata WHERE key = 'schema_version'"
	logSQL(query)

	err := db.QueryRowContext(ctx, query).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}

	return version, nil
}

func setSchemaVersion(ctx context.Context, db *sql.DB, version int) error {
	query := "INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)"
	logSQL(query, version)

	if _, err := db.ExecContext(ctx, query, version); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}

	return nil
}

func initNewDatabase(ctx context.Context, db *sql.DB) error {
	for _, m := range migrations.All() {
		if err := m.Up(ctx, db); err != nil {
			return fmt.Errorf("initialize schema v%d: %w", m.Version(), err)
		}
	}

	logger.Log.Debugf("Initialized database schema v%d", migrations.LatestVersion())

	return setSchemaVersion(ctx, db, migrations.LatestVersion())
}

func migrateSchema(ctx context.Context, db *sql.DB, current int, path string) error {
	pending := migrations.Pending(current)
	if len(pending) == 0 {
		return nil
	}

	target := migrations.LatestVersion()
	logger.Log.Debugf("Migrating database schema from v%d to v%d", current, target)

	if err := backupDatabase(path); err != nil {
		logger.Log.Warnf("Failed to back up database before migration: %v", err)
	}

	for _, m := range pending {
		logger.Log.Debugf("Applying migration v%d: %s", m.Version(), m.Description())

		if err := m.Up(ctx, db); err != nil {
			return fmt.Errorf("migration v%d failed: %w", m.Version(), err)
		}
	}

	if err := setSchemaVersion(ctx, db, target); err != nil {
		return err
	}

	removeBackup(path)

	return nil
}

func backupDatabase(path string) error {
	src, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("open database for backup: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(path+".bak", os.O_RDWR|os.O_CREATE|os.O_TRUNC, FilePermissions)
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy database to backup: %w", err)
	}

	return nil
}

func removeBackup(path string) {
	if err := os.Remove(path + ".bak"); err != nil && !os.IsNotExist(err) {
		logger.Log.Debugf("Failed to remove backup file: %v", err)
	}
}
