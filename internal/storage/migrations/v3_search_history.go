package migrations

import (
	"context"
	"database/sql"
)

func init() {
	Register(&v3SearchHistory{})
}

// v3SearchHistory records submitted catalog search text.
type v3SearchHistory struct{}

func (m *v3SearchHistory) Version() int {
	return 3
}

func (m *v3SearchHistory) Description() string {
	return "Add search history table for recent catalog searches"
}

func (m *v3SearchHistory) Up(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS search_history (
			search_term TEXT PRIMARY KEY,
			last_used INTEGER NOT NULL,
			use_count INTEGER DEFAULT 1
		)`,
		`CREATE INDEX IF NOT EXISTS idx_search_history_last_used ON search_history(last_used DESC)`,
	}

	return ExecStatements(ctx, db, statements)
}
