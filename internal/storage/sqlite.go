package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Epistemic-Technology/pdf-tools/internal/errs"
	"github.com/Epistemic-Technology/pdf-tools/models"
)

// SQLiteStore implements the Catalog interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the catalog database at dbPath
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the database tables if they don't exist. Creation time
// is stored as Unix nanoseconds so ordering matches the staging clock.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS staged_files (
		name TEXT PRIMARY KEY,
		operation TEXT NOT NULL,
		size INTEGER NOT NULL,
		pages INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_staged_files_created_at ON staged_files(created_at);
	CREATE INDEX IF NOT EXISTS idx_staged_files_operation ON staged_files(operation);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record adds the given files in a single transaction
func (s *SQLiteStore) Record(ctx context.Context, files ...models.StagedFile) error {
	if len(files) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Storage("catalog", errs.ReasonWrite, fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	for _, f := range files {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO staged_files (name, operation, size, pages, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, f.Name, f.Operation, f.Size, f.Pages, f.CreatedAt.UTC().UnixNano())
		if err != nil {
			return errs.Storage("catalog", errs.ReasonWrite, fmt.Errorf("failed to insert %s: %w", f.Name, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return errs.Storage("catalog", errs.ReasonWrite, fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// Get retrieves one entry by name
func (s *SQLiteStore) Get(ctx context.Context, name string) (*models.StagedFile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, operation, size, pages, created_at
		FROM staged_files
		WHERE name = ?
	`, name)

	f, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &errs.Error{Kind: errs.KindStorage, Reason: errs.ReasonNotFound, Op: "catalog", Msg: fmt.Sprintf("staged file not found: %s", name)}
	}
	if err != nil {
		return nil, errs.Storage("catalog", errs.ReasonRead, fmt.Errorf("failed to get %s: %w", name, err))
	}
	return &f, nil
}

// List returns entries oldest first
func (s *SQLiteStore) List(ctx context.Context, opts ListOptions) ([]models.StagedFile, error) {
	query := `SELECT name, operation, size, pages, created_at FROM staged_files`
	var where []string
	var args []any
	if opts.Operation != "" {
		where = append(where, "operation = ?")
		args = append(args, opts.Operation)
	}
	if !opts.OlderThan.IsZero() {
		where = append(where, "created_at < ?")
		args = append(args, opts.OlderThan.UTC().UnixNano())
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at ASC, name ASC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.Storage("catalog", errs.ReasonRead, fmt.Errorf("failed to query staged files: %w", err))
	}
	defer rows.Close()

	var files []models.StagedFile
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, errs.Storage("catalog", errs.ReasonRead, fmt.Errorf("failed to scan staged file: %w", err))
		}
		files = append(files, f)
	}

	if err := rows.Err(); err != nil {
		return nil, errs.Storage("catalog", errs.ReasonRead, fmt.Errorf("error iterating staged files: %w", err))
	}

	return files, nil
}

// Delete removes entries by name; unknown names are ignored
func (s *SQLiteStore) Delete(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM staged_files WHERE name IN (`+placeholders+`)`, args...); err != nil {
		return errs.Storage("catalog", errs.ReasonWrite, fmt.Errorf("failed to delete staged files: %w", err))
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(row scanner) (models.StagedFile, error) {
	var f models.StagedFile
	var createdAt int64
	if err := row.Scan(&f.Name, &f.Operation, &f.Size, &f.Pages, &createdAt); err != nil {
		return models.StagedFile{}, err
	}
	f.CreatedAt = time.Unix(0, createdAt).UTC()
	return f, nil
}

// Ensure SQLiteStore implements Catalog interface
var _ Catalog = (*SQLiteStore)(nil)
