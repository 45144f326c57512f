// Package migrations holds the schema migrations for the local gryadka database.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// Migration moves the schema to Version.
type Migration interface {
	// Version is the schema version after Up. Migrations run in version order.
	Version() int

	Description() string

	// Up must be safe to run on a database that already has the change.
	Up(ctx context.Context, db *sql.DB) error
}

// BaseVersion is the version of the base schema, before any migration.
const BaseVersion = 1

var registry []Migration

// Register adds a migration. Called from init functions.
func Register(m Migration) {
	registry = append(registry, m)
}

// All returns every migration sorted by version.
func All() []Migration {
	sorted := make([]Migration, len(registry))
	copy(sorted, registry)

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Version() < sorted[j].Version()
	})

	return sorted
}

// LatestVersion is the highest version any migration reaches.
func LatestVersion() int {
	latest := BaseVersion
	for _, m := range registry {
		if m.Version() > latest {
			latest = m.Version()
		}
	}

	return latest
}

// Pending returns the migrations above currentVersion.
func Pending(currentVersion int) []Migration {
	var pending []Migration

	for _, m := range All() {
		if m.Version() > currentVersion {
			pending = append(pending, m)
		}
	}

	return pending
}

// ExecStatements runs statements in order, skipping "already exists" and
// "duplicate column" failures.
func ExecStatements(ctx context.Context, db *sql.DB, statements []string) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil && !isIgnorable(err) {
			return fmt.Errorf("execute statement: %w", err)
		}
	}

	return nil
}

func isIgnorable(err error) bool {
	msg := err.Error()

	return strings.Contains(msg, "duplicate column") || strings.Contains(msg, "already exists")
}
