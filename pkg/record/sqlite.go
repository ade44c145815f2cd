package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists records in a SQLite database file.
type SQLiteStore struct {
	db   *sql.DB
	mu   sync.RWMutex
	opts options
}

// OpenSQLite opens (creating if needed) the database at path and ensures the
// schema exists.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("record: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("record: open database: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("record: set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, opts: newOptions(opts)}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("record: initialize database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS assistants (
			id          TEXT PRIMARY KEY,
			owner       TEXT NOT NULL DEFAULT '',
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			yaml        TEXT NOT NULL,
			is_public   INTEGER NOT NULL DEFAULT 0,
			created_at  INTEGER NOT NULL,
			updated_at  INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_assistants_owner_updated
			ON assistants (owner, updated_at DESC);
	`)
	return err
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, owner string, data AssistantData) (Record, error) {
	now := s.opts.now()
	rec := Record{
		ID:          s.opts.newID(),
		Owner:       owner,
		Title:       data.Title,
		Description: data.Description,
		YAMLContent: data.YAMLContent,
		IsPublic:    data.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assistants (id, owner, title, description, yaml, is_public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Owner, rec.Title, rec.Description, rec.YAMLContent,
		boolToInt(rec.IsPublic), rec.CreatedAt.UnixNano(), rec.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return Record{}, fmt.Errorf("record: insert: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) Update(ctx context.Context, id string, data AssistantData) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE assistants
		SET title = ?, description = ?, yaml = ?, is_public = ?, updated_at = ?
		WHERE id = ?`,
		data.Title, data.Description, data.YAMLContent, boolToInt(data.IsPublic),
		s.opts.now().UnixNano(), id,
	)
	if err != nil {
		return Record{}, fmt.Errorf("record: update: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.get(ctx, id)
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(ctx, id)
}

func (s *SQLiteStore) get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner, title, description, yaml, is_public, created_at, updated_at
		FROM assistants WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("record: get %s: %w", id, err)
	}
	return rec, nil
}

// List returns matching records, most recently updated first.
func (s *SQLiteStore) List(ctx context.Context, opts ListOptions) ([]Record, error) {
	opts = opts.normalized()

	var conditions []string
	var args []any
	if opts.PublicOnly {
		conditions = append(conditions, "is_public = 1")
	}
	if opts.Owner != "" {
		if opts.IncludePublic {
			conditions = append(conditions, "(owner = ? OR is_public = 1)")
		} else {
			conditions = append(conditions, "owner = ?")
		}
		args = append(args, opts.Owner)
	}
	if opts.Search != "" {
		conditions = append(conditions, "(instr(lower(title), lower(?)) > 0 OR instr(lower(description), lower(?)) > 0)")
		args = append(args, opts.Search, opts.Search)
	}

	var b strings.Builder
	b.WriteString(`SELECT id, owner, title, description, yaml, is_public, created_at, updated_at FROM assistants`)
	if len(conditions) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}
	b.WriteString(" ORDER BY updated_at DESC, id ASC LIMIT ? OFFSET ?")
	args = append(args, opts.Limit, opts.Offset)

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("record: list: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("record: scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("record: list: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM assistants WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("record: delete: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec              Record
		public           int
		created, updated int64
	)
	if err := row.Scan(&rec.ID, &rec.Owner, &rec.Title, &rec.Description, &rec.YAMLContent, &public, &created, &updated); err != nil {
		return Record{}, err
	}
	rec.IsPublic = public != 0
	rec.CreatedAt = time.Unix(0, created).UTC()
	rec.UpdatedAt = time.Unix(0, updated).UTC()
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
