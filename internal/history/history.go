// Package history keeps a sqlite record of image export runs.
package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/brainview/internal/monitoring"
)

//go:embed migrations/*.sql
var migrations embed.FS

var logf = monitoring.For("history")

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("export run not found")

// File is one file written by a run. Error is empty on success.
type File struct {
	Path  string `json:"path"`
	Error string `json:"error,omitempty"`
}

// Run is a recorded export.
type Run struct {
	RunID     string `json:"run_id"`
	SessionID string `json:"session_id,omitempty"`
	Dir       string `json:"dir"`
	Format    string `json:"format"`
	TimeIndex int    `json:"time_index"`
	Status    string `json:"status"`
	Files     []File `json:"files"`
	CreatedAt int64  `json:"created_at"`
}

// Store persists runs.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	s := &Store{db: db, path: path}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	return m, nil
}

// MigrateUp applies every pending migration. The migrate instance is not
// closed because that would close the shared connection pool.
func (s *Store) MigrateUp() error {
	m, err := s.newMigrate()
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateVersion reports the applied schema version; 0 when none.
func (s *Store) MigrateVersion() (version uint, dirty bool, err error) {
	m, err := s.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	logf("[migrate] "+format, v...)
}

func (migrateLogger) Verbose() bool { return false }

// Insert stores run and its files in one transaction.
func (s *Store) Insert(ctx context.Context, run *Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO export_runs (run_id, session_id, dir, format, time_index, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.SessionID, run.Dir, run.Format, run.TimeIndex, run.Status, run.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for _, f := range run.Files {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO export_files (run_id, path, error) VALUES (?, ?, ?)`,
			run.RunID, f.Path, f.Error,
		); err != nil {
			return fmt.Errorf("insert file %s: %w", f.Path, err)
		}
	}
	return tx.Commit()
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, session_id, dir, format, time_index, status, created_at
		FROM export_runs
		ORDER BY created_at DESC, run_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, r)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}
	for _, r := range runs {
		if r.Files, err = s.files(ctx, r.RunID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Get returns one run.
func (s *Store) Get(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, session_id, dir, format, time_index, status, created_at
		FROM export_runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	if r.Files, err = s.files(ctx, runID); err != nil {
		return nil, err
	}
	return r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var r Run
	if err := row.Scan(&r.RunID, &r.SessionID, &r.Dir, &r.Format, &r.TimeIndex, &r.Status, &r.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return &r, nil
}

func (s *Store) files(ctx context.Context, runID string) ([]File, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, error FROM export_files WHERE run_id = ? ORDER BY path`, runID)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()
	var out []File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.Path, &f.Error); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
