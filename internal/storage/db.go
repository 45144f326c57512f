// Package storage is gryadka's local SQLite database: cart contents and search history.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zelena-gryadka/gryadka/internal/logger"
	_ "modernc.org/sqlite"
)

const (
	// DataDir is the per-user directory under the home directory.
	DataDir = ".gryadka"
	// DBFileName is the database file inside DataDir.
	DBFileName = "gryadka.db"
	// FilePermissions restricts the database and its backups to the owner.
	FilePermissions = 0o600
)

// ErrClosed is returned by operations on a closed database.
var ErrClosed = errors.New("storage: database is closed")

// DB wraps the SQLite handle.
type DB struct {
	db     *sql.DB
	path   string
	mu     sync.RWMutex
	closed bool
}

// DefaultPath returns ~/.gryadka/gryadka.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}

	return filepath.Join(home, DataDir, DBFileName), nil
}

// OpenDefault opens the database at DefaultPath.
func OpenDefault(ctx context.Context) (*DB, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}

	return Open(ctx, path)
}

// Open opens or creates the database at path and brings its schema up to date.
func Open(ctx context.Context, path string) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage: empty database path")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection serializes writers and avoids SQLITE_BUSY between them.
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		logSQL(pragma)

		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			_ = conn.Close()

			return nil, fmt.Errorf("configure database: %w", err)
		}
	}

	if err := ensureSchema(ctx, conn, path); err != nil {
		_ = conn.Close()

		return nil, err
	}

	if err := os.Chmod(path, FilePermissions); err != nil {
		logger.Log.Debugf("Failed to restrict database permissions: %v", err)
	}

	logger.Log.Debugf("Opened database at %s", path)

	return &DB{db: conn, path: path}, nil
}

// Path is the database file location.
func (d *DB) Path() string {
	return d.path
}

// Close releases the database. Further calls return ErrClosed.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}

	d.closed = true

	return d.db.Close()
}

func (d *DB) handle() (*sql.DB, error) {
	if d == nil {
		return nil, ErrClosed
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return nil, ErrClosed
	}

	return d.db, nil
}

// Exec runs a statement, logging it at trace level.
func (d *DB) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	conn, err := d.handle()
	if err != nil {
		return nil, err
	}

	logSQL(query, args...)

	return conn.ExecContext(ctx, query, args...)
}

// Query runs a query, logging it at trace level.
func (d *DB) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	conn, err := d.handle()
	if err != nil {
		return nil, err
	}

	logSQL(query, args...)

	return conn.QueryContext(ctx, query, args...)
}

// Tx runs fn inside a transaction, committing when fn returns nil.
func (d *DB) Tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	conn, err := d.handle()
	if err != nil {
		return err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()

		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func logSQL(query string, args ...interface{}) {
	compact := strings.Join(strings.Fields(query), " ")
	if len(args) == 0 {
		logger.Log.Tracef("SQL: %s", compact)

		return
	}

	logger.Log.Tracef("SQL: %s %v", compact, args)
}
