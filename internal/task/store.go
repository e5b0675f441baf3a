// File path: internal/task/store.go
package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Task lifecycle states.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Task kinds.
const (
	KindGeneration = "generation"
	KindRefinement = "refinement"
)

// ErrTaskNotFound is returned when a task id has no record.
var ErrTaskNotFound = errors.New("task not found")

// Record is the persisted view of a course task.
type Record struct {
	ID             string    `db:"id"`
	Kind           string    `db:"kind"`
	Status         string    `db:"status"`
	Topic          string    `db:"topic"`
	Depth          string    `db:"depth"`
	TargetAudience string    `db:"target_audience"`
	CourseDuration string    `db:"course_duration"`
	OriginalTask   string    `db:"original_task"`
	Instructions   string    `db:"instructions"`
	Error          string    `db:"error"`
	OutputPath     string    `db:"output_path"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Store persists task records. Implementations must be safe for concurrent
// use; the manager writes from background goroutines.
type Store interface {
	Put(ctx context.Context, record Record) error
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context) ([]Record, error)
	Close() error
}

// SQLStore is a Store backed by a pooled sqlx.DB connection to SQLite.
type SQLStore struct {
	db *sqlx.DB
}

// Open constructs a SQLStore for the database at the provided path. The
// schema is migrated on first use. Pass ":memory:" for an ephemeral store.
func Open(path string) (*SQLStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path required")
	}
	dsn := path
	if path != ":memory:" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve sqlite path: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", abs)
	}
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	store := &SQLStore{db: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database resources.
func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStore) migrate(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute schema statement %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS tasks (
                id TEXT PRIMARY KEY,
                kind TEXT NOT NULL,
                status TEXT NOT NULL,
                topic TEXT NOT NULL,
                depth TEXT,
                target_audience TEXT,
                course_duration TEXT,
                original_task TEXT,
                instructions TEXT,
                error TEXT,
                output_path TEXT,
                created_at DATETIME NOT NULL,
                updated_at DATETIME NOT NULL
        );`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_created ON tasks(created_at);`,
}

// Put inserts the record, or replaces every mutable column when the id
// already exists.
func (s *SQLStore) Put(ctx context.Context, record Record) error {
	const query = `INSERT INTO tasks (
                id, kind, status, topic, depth, target_audience, course_duration,
                original_task, instructions, error, output_path, created_at, updated_at
        ) VALUES (
                :id, :kind, :status, :topic, :depth, :target_audience, :course_duration,
                :original_task, :instructions, :error, :output_path, :created_at, :updated_at
        ) ON CONFLICT(id) DO UPDATE SET
                status = excluded.status,
                error = excluded.error,
                output_path = excluded.output_path,
                updated_at = excluded.updated_at;`
	if _, err := s.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("put task %s: %w", record.ID, err)
	}
	return nil
}

// Get returns the record for id, or ErrTaskNotFound.
func (s *SQLStore) Get(ctx context.Context, id string) (Record, error) {
	var record Record
	err := s.db.GetContext(ctx, &record, `SELECT * FROM tasks WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get task %s: %w", id, err)
	}
	return record, nil
}

// List returns every record, newest first.
func (s *SQLStore) List(ctx context.Context) ([]Record, error) {
	records := []Record{}
	if err := s.db.SelectContext(ctx, &records, `SELECT * FROM tasks ORDER BY created_at DESC, id DESC`); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return records, nil
}
