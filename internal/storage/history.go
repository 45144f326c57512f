package storage

import (
	"context"
	"strings"
	"time"

	"github.com/zelena-gryadka/gryadka/internal/logger"
)

// DefaultHistoryLimit is how many searches are returned when no limit is given.
const DefaultHistoryLimit = 10

// SearchEntry is one remembered catalog search.
type SearchEntry struct {
	Term     string    `json:"term"`
	LastUsed time.Time `json:"last_used"`
	UseCount int       `json:"use_count"`
}

func normalizeSearchTerm(term string) string {
	return strings.Join(strings.Fields(term), " ")
}

// AddSearch records term as the most recent search. Blank terms are ignored.
func (d *DB) AddSearch(ctx context.Context, term string) error {
	term = normalizeSearchTerm(term)
	if term == "" {
		return nil
	}

	query := `
		INSERT INTO search_history (search_term, last_used, use_count)
		VALUES (?, ?, 1)
		ON CONFLICT(search_term) DO UPDATE SET
			last_used = excluded.last_used,
			use_count = use_count + 1`

	_, err := d.Exec(ctx, query, term, time.Now().UnixNano())

	return err
}

// SearchHistory returns up to limit searches, most recent first.
func (d *DB) SearchHistory(ctx context.Context, limit int) ([]SearchEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := d.Query(ctx, `SELECT search_term, last_used, use_count FROM search_history ORDER BY last_used DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var history []SearchEntry

	for rows.Next() {
		var (
			entry    SearchEntry
			lastUsed int64
		)

		if err := rows.Scan(&entry.Term, &lastUsed, &entry.UseCount); err != nil {
			logger.Log.Warnf("Failed to scan search history: %v", err)

			continue
		}

		entry.LastUsed = time.Unix(0, lastUsed)
		history = append(history, entry)
	}

	return history, rows.Err()
}

// SearchTerms is SearchHistory reduced to the terms.
func (d *DB) SearchTerms(ctx context.Context, limit int) ([]string, error) {
	entries, err := d.SearchHistory(ctx, limit)
	if err != nil {
		return nil, err
	}

	terms := make([]string, len(entries))
	for i, e := range entries {
		terms[i] = e.Term
	}

	return terms, nil
}

// CleanSearchHistory deletes searches not used within maxAge.
func (d *DB) CleanSearchHistory(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).UnixNano()

	result, err := d.Exec(ctx, `DELETE FROM search_history WHERE last_used < ?`, cutoff)
	if err != nil {
		return 0, err
	}

	deleted, _ := result.RowsAffected()
	if deleted > 0 {
		logger.Log.Debugf("Cleaned %d old search history entries", deleted)
	}

	return deleted, nil
}

// ClearSearchHistory deletes every remembered search.
func (d *DB) ClearSearchHistory(ctx context.Context) (int64, error) {
	result, err := d.Exec(ctx, `DELETE FROM search_history`)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
