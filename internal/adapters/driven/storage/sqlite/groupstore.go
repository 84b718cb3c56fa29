// Package sqlite provides an alternate GroupStore backed by a single SQLite
// database. Useful when many groups share one file, at the cost of the
// one-file-per-group layout of the default store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/calder-labs/askdoc-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/calder-labs/askdoc-cli/internal/core/domain"
	"github.com/calder-labs/askdoc-cli/internal/core/ports/driven"
)

// Ensure GroupStore implements the interface.
var _ driven.GroupStore = (*GroupStore)(nil)

// GroupStore persists groups in a SQLite database. A save rewrites the
// group's rows inside one transaction, preserving the whole-unit overwrite
// contract.
type GroupStore struct {
	db   *sql.DB
	path string
}

// NewGroupStore opens (or creates) the database at dataDir/groups.db.
// If dataDir is empty, defaults to ~/.askdoc/data.
func NewGroupStore(dataDir string) (*GroupStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".askdoc", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "groups.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &GroupStore{db: db, path: dbPath}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// migrate executes all embedded migration files in name order.
func (s *GroupStore) migrate(migrationFS fs.FS) error {
	files, err := fs.Glob(migrationFS, "*.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, file := range files {
		script, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
		if _, err := s.db.Exec(string(script)); err != nil {
			return fmt.Errorf("applying %s: %w", file, err)
		}
	}

	return nil
}

// Load reads the named group and its records in insertion order.
func (s *GroupStore) Load(ctx context.Context, name string) (domain.Group, error) {
	group := domain.Group{Name: name}

	err := s.db.QueryRowContext(ctx,
		"SELECT part_size FROM groups WHERE name = ?", name,
	).Scan(&group.PartSize)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Group{}, fmt.Errorf("group %q: %w", name, domain.ErrGroupNotFound)
	}
	if err != nil {
		return domain.Group{}, fmt.Errorf("load group %q: %w", name, err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT file_id, part, vector FROM embeddings WHERE group_name = ? ORDER BY position",
		name,
	)
	if err != nil {
		return domain.Group{}, fmt.Errorf("load group %q records: %w", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec domain.EmbeddingRecord
		var blob []byte
		if err := rows.Scan(&rec.FileID, &rec.Part, &blob); err != nil {
			return domain.Group{}, fmt.Errorf("scan group %q record: %w", name, err)
		}
		rec.Embedding = bytesToFloat32Slice(blob)
		group.Embeddings = append(group.Embeddings, rec)
	}
	if err := rows.Err(); err != nil {
		return domain.Group{}, fmt.Errorf("load group %q records: %w", name, err)
	}

	return group, nil
}

// Save rewrites the group's rows in a single transaction.
func (s *GroupStore) Save(ctx context.Context, group domain.Group) error {
	if group.Name == "" {
		return fmt.Errorf("save group: %w: empty group name", domain.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save group %q: %w", group.Name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO groups (name, part_size) VALUES (?, ?) "+
			"ON CONFLICT (name) DO UPDATE SET part_size = excluded.part_size",
		group.Name, group.PartSize,
	); err != nil {
		return fmt.Errorf("save group %q: %w", group.Name, err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM embeddings WHERE group_name = ?", group.Name,
	); err != nil {
		return fmt.Errorf("save group %q: %w", group.Name, err)
	}

	for i, rec := range group.Embeddings {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO embeddings (group_name, position, file_id, part, vector) VALUES (?, ?, ?, ?, ?)",
			group.Name, i, string(rec.FileID), rec.Part, float32SliceToBytes(rec.Embedding),
		); err != nil {
			return fmt.Errorf("save group %q record %d: %w", group.Name, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save group %q: %w", group.Name, err)
	}

	return nil
}

// List returns the names of all persisted groups, sorted.
func (s *GroupStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM groups ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list groups: %w", err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// Delete removes the named group and its records.
func (s *GroupStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete group %q: %w", name, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete group %q: %w", name, err)
	}
	if affected == 0 {
		return fmt.Errorf("group %q: %w", name, domain.ErrGroupNotFound)
	}

	return nil
}

// Close closes the database connection.
func (s *GroupStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *GroupStore) Path() string {
	return s.path
}

// float32SliceToBytes converts a vector to a little-endian byte blob.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte blob back to a vector.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
