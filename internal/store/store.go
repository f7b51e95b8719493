package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"modbot/internal/core"
)

// Store is the SQLite-based local cache for fetched subreddit listings and
// scan-run history. It lives next to the CLI so repeated scans against the
// same subreddit do not hammer the Reddit API.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new store instance with SQLite database
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "modbot.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:   db,
		path: dbPath,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables
func (s *Store) initialize() error {
	listingsTable := `
	CREATE TABLE IF NOT EXISTS listings (
		subreddit TEXT,
		content_type TEXT,
		items TEXT,
		item_count INTEGER,
		date_fetched DATETIME,
		PRIMARY KEY (subreddit, content_type)
	);`

	scanRunsTable := `
	CREATE TABLE IF NOT EXISTS scan_runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME,
		finished_at DATETIME,
		rules_processed INTEGER,
		alerts_created INTEGER,
		message TEXT
	);`

	tables := []string{listingsTable, scanRunsTable}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// CacheListing stores a fetched subreddit listing in the cache
func (s *Store) CacheListing(subreddit string, contentType core.MonitoringType, items []core.ContentItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode listing: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO listings
	(subreddit, content_type, items, item_count, date_fetched)
	VALUES (?, ?, ?, ?, ?)`

	_, err = s.db.Exec(query,
		subreddit,
		string(contentType),
		string(payload),
		len(items),
		time.Now().UTC(),
	)

	return err
}

// GetCachedListing retrieves a listing from the cache. Returns nil on a
// cache miss or when the cached entry is older than maxAge.
func (s *Store) GetCachedListing(subreddit string, contentType core.MonitoringType, maxAge time.Duration) ([]core.ContentItem, error) {
	query := `
	SELECT items
	FROM listings
	WHERE subreddit = ? AND content_type = ? AND date_fetched > ?`

	cutoff := time.Now().UTC().Add(-maxAge)
	row := s.db.QueryRow(query, subreddit, string(contentType), cutoff)

	var payload string
	err := row.Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan listing: %w", err)
	}

	var items []core.ContentItem
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}

	return items, nil
}

// ScanRun is one recorded pass over the active monitoring rules.
type ScanRun struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time
	RulesProcessed int
	AlertsCreated  int
	Message        string
}

// RecordScan appends a scan run to the local history
func (s *Store) RecordScan(run ScanRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	query := `
	INSERT OR REPLACE INTO scan_runs
	(id, started_at, finished_at, rules_processed, alerts_created, message)
	VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query,
		run.ID,
		run.StartedAt,
		run.FinishedAt,
		run.RulesProcessed,
		run.AlertsCreated,
		run.Message,
	)

	return err
}

// RecentScans returns the most recent scan runs, newest first
func (s *Store) RecentScans(limit int) ([]ScanRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
	SELECT id, started_at, finished_at, rules_processed, alerts_created, message
	FROM scan_runs
	ORDER BY started_at DESC
	LIMIT ?`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan runs: %w", err)
	}
	defer rows.Close()

	var runs []ScanRun
	for rows.Next() {
		var run ScanRun
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt,
			&run.RulesProcessed, &run.AlertsCreated, &run.Message); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// CacheStats represents cache statistics
type CacheStats struct {
	ListingCount int
	ScanRunCount int
	CacheSize    int64
	LastUpdated  time.Time
}

// GetCacheStats returns statistics about the cache
func (s *Store) GetCacheStats() (*CacheStats, error) {
	stats := &CacheStats{}

	queries := map[string]*int{
		"SELECT COUNT(*) FROM listings":  &stats.ListingCount,
		"SELECT COUNT(*) FROM scan_runs": &stats.ScanRunCount,
	}

	for query, target := range queries {
		err := s.db.QueryRow(query).Scan(target)
		if err != nil {
			return nil, fmt.Errorf("failed to get count: %w", err)
		}
	}

	if fileInfo, err := os.Stat(s.path); err == nil {
		stats.CacheSize = fileInfo.Size()
		stats.LastUpdated = fileInfo.ModTime()
	}

	return stats, nil
}

// ClearCache removes all cached data
func (s *Store) ClearCache() error {
	tables := []string{"listings", "scan_runs"}

	for _, table := range tables {
		_, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			return fmt.Errorf("failed to clear %s table: %w", table, err)
		}
	}

	_, err := s.db.Exec("VACUUM")
	if err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}

	return nil
}

// CleanupOldCache removes old cached items
func (s *Store) CleanupOldCache(listingMaxAge, scanMaxAge time.Duration) error {
	now := time.Now().UTC()

	_, err := s.db.Exec("DELETE FROM listings WHERE date_fetched < ?", now.Add(-listingMaxAge))
	if err != nil {
		return fmt.Errorf("failed to clean old listings: %w", err)
	}

	_, err = s.db.Exec("DELETE FROM scan_runs WHERE started_at < ?", now.Add(-scanMaxAge))
	if err != nil {
		return fmt.Errorf("failed to clean old scan runs: %w", err)
	}

	return nil
}
