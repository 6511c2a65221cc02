package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/shelfsync/shelfsync-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
	"github.com/shelfsync/shelfsync-cli/internal/core/ports/driven"
)

var _ driven.RunStore = (*Store)(nil)

// Store is the SQLite-backed run store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a run store at the specified data directory.
// If dataDir is empty, defaults to ~/.shelfsync/runs.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".shelfsync")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "runs.db")

	// WAL mode so a status query does not block a running sync's writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

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

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

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

// Save stores or updates a run, including its attempted set and
// succeeded records.
func (s *Store) Save(ctx context.Context, run *domain.SyncRun) error {
	if run.ID == "" {
		return domain.ErrInvalidInput
	}

	failureJSON := sql.NullString{}
	if run.LastFailure != nil {
		data, err := json.Marshal(run.LastFailure)
		if err != nil {
			return fmt.Errorf("marshalling last failure: %w", err)
		}
		failureJSON = sql.NullString{String: string(data), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
			(id, state, started_at, finished_at, last_failure,
			 success_count, partial_count, hard_failure_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			last_failure = excluded.last_failure,
			success_count = excluded.success_count,
			partial_count = excluded.partial_count,
			hard_failure_count = excluded.hard_failure_count
	`, run.ID, string(run.State), nullTime(run.StartedAt), nullTime(run.FinishedAt),
		failureJSON, run.Counts.Success, run.Counts.Partial, run.Counts.HardFailure)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_items (run_id, identity, attempted, record)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, identity) DO UPDATE SET
			attempted = excluded.attempted,
			record = excluded.record
	`)
	if err != nil {
		return fmt.Errorf("preparing run items statement: %w", err)
	}
	defer stmt.Close()

	for key := range run.Attempted {
		recordJSON := sql.NullString{}
		if rec, ok := run.Succeeded[key]; ok {
			data, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("marshalling record for %s: %w", key, err)
			}
			recordJSON = sql.NullString{String: string(data), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, run.ID, key, true, recordJSON); err != nil {
			return fmt.Errorf("saving run item %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Get loads a run by id.
func (s *Store) Get(ctx context.Context, id string) (*domain.SyncRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, state, started_at, finished_at, last_failure,
		       success_count, partial_count, hard_failure_count
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}

	if err := s.loadItems(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// LatestStopped returns the most recent run that stopped on a hard
// failure.
func (s *Store) LatestStopped(ctx context.Context) (*domain.SyncRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, state, started_at, finished_at, last_failure,
		       success_count, partial_count, hard_failure_count
		FROM runs WHERE state = ?
		ORDER BY started_at DESC LIMIT 1
	`, string(domain.RunStoppedOnError))

	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}

	if err := s.loadItems(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// loadItems fills the run's attempted set and succeeded records.
func (s *Store) loadItems(ctx context.Context, run *domain.SyncRun) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT identity, attempted, record
		FROM run_items WHERE run_id = ?
	`, run.ID)
	if err != nil {
		return fmt.Errorf("querying run items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var identity string
		var attempted bool
		var recordJSON sql.NullString
		if err := rows.Scan(&identity, &attempted, &recordJSON); err != nil {
			return fmt.Errorf("scanning run item: %w", err)
		}

		if attempted {
			run.Attempted[identity] = true
		}
		if recordJSON.Valid {
			var rec domain.EnrichmentRecord
			if err := json.Unmarshal([]byte(recordJSON.String), &rec); err != nil {
				return fmt.Errorf("unmarshalling record for %s: %w", identity, err)
			}
			run.Succeeded[identity] = rec
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating run items: %w", err)
	}
	return nil
}

// scanRun scans a single run row, without its items.
func scanRun(row *sql.Row) (*domain.SyncRun, error) {
	var run domain.SyncRun
	var state string
	var startedAt, finishedAt sql.NullTime
	var failureJSON sql.NullString

	if err := row.Scan(&run.ID, &state, &startedAt, &finishedAt, &failureJSON,
		&run.Counts.Success, &run.Counts.Partial, &run.Counts.HardFailure); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	run.State = domain.RunState(state)
	if startedAt.Valid {
		run.StartedAt = startedAt.Time
	}
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}
	if failureJSON.Valid {
		var failure domain.RunFailure
		if err := json.Unmarshal([]byte(failureJSON.String), &failure); err != nil {
			return nil, fmt.Errorf("unmarshalling last failure: %w", err)
		}
		run.LastFailure = &failure
	}

	run.Attempted = make(map[string]bool)
	run.Succeeded = make(map[string]domain.EnrichmentRecord)
	return &run, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
