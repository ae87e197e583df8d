package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Kind names the operation a run performed.
type Kind string

const (
	KindPatch    Kind = "patch"
	KindVerify   Kind = "verify"
	KindRegister Kind = "register"
)

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// DefaultLimit bounds Recent when the caller passes a non-positive limit.
const DefaultLimit = 20

// Entry is one recorded run.
type Entry struct {
	ID        int64         `json:"id"`
	RunID     string        `json:"run_id"`
	Kind      Kind          `json:"kind"`
	File      string        `json:"file"`
	Digest    string        `json:"digest,omitempty"`
	Outcome   string        `json:"outcome"`
	Detail    string        `json:"detail,omitempty"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	CreatedAt time.Time     `json:"created_at"`
}

// Store persists run history in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the history database at path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts a run entry and returns it with ID and CreatedAt populated.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if s == nil || s.db == nil {
		return Entry{}, errors.New("history store is closed")
	}
	if e.Kind == "" {
		return Entry{}, errors.New("history entry kind is required")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, kind, file, digest, outcome, detail, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, string(e.Kind), e.File, e.Digest, e.Outcome, e.Detail,
		e.Elapsed.Milliseconds(), e.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert history entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Entry{}, fmt.Errorf("history entry id: %w", err)
	}
	e.ID = id
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("history store is closed")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, kind, file, digest, outcome, detail, duration_ms, created_at
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			kind      string
			elapsedMs int64
			created   string
		)
		if err := rows.Scan(&e.ID, &e.RunID, &kind, &e.File, &e.Digest, &e.Outcome, &e.Detail, &elapsedMs, &created); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.Kind = Kind(kind)
		e.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		if ts, parseErr := time.Parse(timeLayout, created); parseErr == nil {
			e.CreatedAt = ts
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return entries, nil
}

// Prune deletes entries older than the cutoff and returns the number removed.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("history store is closed")
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE created_at < ?", before.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return res.RowsAffected()
}
