// Package sqlite provides the local digest archive backed by SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DigestStore = (*Store)(nil)

// dayFormat is how run days are keyed in the archive.
const dayFormat = "2006-01-02"

// Store is a SQLite-backed digest archive. Each completed run is kept as
// one row with the digest and report serialised as JSON.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.digest/data/digests.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".digest", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "digests.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Save archives one digest record, replacing any earlier record with the
// same run ID.
func (s *Store) Save(ctx context.Context, record domain.DigestRecord) error {
	digestJSON, err := json.Marshal(record.Digest)
	if err != nil {
		return fmt.Errorf("marshalling digest: %w", err)
	}
	reportJSON, err := json.Marshal(record.Report)
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO digests (id, day, digest_json, report_json, page_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, record.ID, record.Day.Format(dayFormat), string(digestJSON), string(reportJSON),
		record.PageURL, createdAt.UTC())
	if err != nil {
		return fmt.Errorf("saving digest: %w", err)
	}
	return nil
}

// List returns the most recent digest records, newest first. A limit of
// zero or less returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]domain.DigestRecord, error) {
	query := `
		SELECT id, day, digest_json, report_json, page_url, created_at
		FROM digests
		ORDER BY created_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing digests: %w", err)
	}
	defer rows.Close()

	var records []domain.DigestRecord
	for rows.Next() {
		var (
			record     domain.DigestRecord
			day        string
			digestJSON string
			reportJSON string
		)
		if err := rows.Scan(&record.ID, &day, &digestJSON, &reportJSON,
			&record.PageURL, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning digest row: %w", err)
		}

		record.Day, err = time.Parse(dayFormat, day)
		if err != nil {
			return nil, fmt.Errorf("parsing day %q: %w", day, err)
		}
		if err := json.Unmarshal([]byte(digestJSON), &record.Digest); err != nil {
			return nil, fmt.Errorf("unmarshalling digest %s: %w", record.ID, err)
		}
		if err := json.Unmarshal([]byte(reportJSON), &record.Report); err != nil {
			return nil, fmt.Errorf("unmarshalling report %s: %w", record.ID, err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_init.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
