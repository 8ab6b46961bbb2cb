package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/joaodperes/stardust/internal/repository"
)

const defaultMaxRetries = 8

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// KVStore implements repository.Store on the kv table.
type KVStore struct {
	db         *DB
	maxRetries int
}

var _ repository.Store = (*KVStore)(nil)

// NewKVStore creates a new key-value store.
func NewKVStore(db *DB) *KVStore {
	return &KVStore{db: db, maxRetries: defaultMaxRetries}
}

// Read returns the value stored at path.
func (s *KVStore) Read(ctx context.Context, path string) ([]byte, error) {
	entry, err := getEntry(ctx, s.db, path)
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

// Write stores value at path unconditionally.
func (s *KVStore) Write(ctx context.Context, path string, value []byte) error {
	if path == "" || value == nil {
		return repository.ErrInvalidInput
	}
	return upsert(ctx, s.db, path, value)
}

// Delete removes path. Deleting a missing path is not an error.
func (s *KVStore) Delete(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE path = ?`, path); err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

// List returns every entry under prefix ordered by path.
func (s *KVStore) List(ctx context.Context, prefix string) ([]repository.Entry, error) {
	return listEntries(ctx, s.db, prefix)
}

// Keys returns the paths under prefix without loading values.
func (s *KVStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path FROM kv WHERE substr(path, 1, ?) = ? ORDER BY path`,
		len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, path)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating keys: %w", err)
	}
	return keys, nil
}

// TransactionalUpdate runs fn against the current value and writes the
// result only if the stored version is unchanged. Lost races re-run fn on
// the same key with the fresh value.
func (s *KVStore) TransactionalUpdate(ctx context.Context, path string, fn repository.UpdateFunc) (repository.UpdateResult, error) {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return repository.UpdateResult{}, err
		}

		var current []byte
		var version int64
		entry, err := getEntry(ctx, s.db, path)
		switch {
		case err == nil:
			current, version = entry.Value, entry.Version
		case errors.Is(err, repository.ErrNotFound):
		default:
			return repository.UpdateResult{}, err
		}

		next, err := fn(current)
		if errors.Is(err, repository.ErrAbort) {
			return repository.UpdateResult{Committed: false, Value: current}, nil
		}
		if err != nil {
			return repository.UpdateResult{}, err
		}

		ok, err := compareAndSwap(ctx, s.db, path, next, version)
		if err != nil {
			return repository.UpdateResult{}, err
		}
		if ok {
			return repository.UpdateResult{Committed: true, Value: next}, nil
		}
	}
	return repository.UpdateResult{}, fmt.Errorf("update %s: %w", path, repository.ErrConflict)
}

// BatchUpdate applies all writes in one SQL transaction.
func (s *KVStore) BatchUpdate(ctx context.Context, writes map[string][]byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, path := range sortedPaths(writes) {
		value := writes[path]
		if value == nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE path = ?`, path); err != nil {
				return fmt.Errorf("failed to delete %s: %w", path, err)
			}
			continue
		}
		if err := upsert(ctx, tx, path, value); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// Atomic runs fn inside a transaction. Every key fn read is re-checked
// against its version at commit; a mismatch rolls back and re-runs fn.
func (s *KVStore) Atomic(ctx context.Context, fn func(txn repository.Txn) error) error {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		txn := &kvTxn{
			tx:     tx,
			reads:  make(map[string]int64),
			writes: make(map[string][]byte),
		}
		if err := fn(txn); err != nil {
			_ = tx.Rollback()
			return err
		}

		ok, err := txn.apply(ctx)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if !ok {
			_ = tx.Rollback()
			continue
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	}
	return fmt.Errorf("atomic update: %w", repository.ErrConflict)
}

// kvTxn buffers writes; reads record the version they observed (0 when
// the key was absent).
type kvTxn struct {
	tx     *sql.Tx
	reads  map[string]int64
	writes map[string][]byte
	order  []string
}

func (t *kvTxn) Get(ctx context.Context, path string) ([]byte, error) {
	if value, ok := t.writes[path]; ok {
		if value == nil {
			return nil, repository.ErrNotFound
		}
		return value, nil
	}

	entry, err := getEntry(ctx, t.tx, path)
	if errors.Is(err, repository.ErrNotFound) {
		t.markRead(path, 0)
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	t.markRead(path, entry.Version)
	return entry.Value, nil
}

func (t *kvTxn) List(ctx context.Context, prefix string) ([]repository.Entry, error) {
	stored, err := listEntries(ctx, t.tx, prefix)
	if err != nil {
		return nil, err
	}

	merged := make([]repository.Entry, 0, len(stored))
	seen := make(map[string]bool, len(stored))
	for _, entry := range stored {
		seen[entry.Path] = true
		if value, ok := t.writes[entry.Path]; ok {
			if value == nil {
				continue
			}
			entry.Value = value
		}
		merged = append(merged, entry)
	}
	for _, path := range t.order {
		value := t.writes[path]
		if seen[path] || value == nil || !strings.HasPrefix(path, prefix) {
			continue
		}
		merged = append(merged, repository.Entry{Path: path, Value: value})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Path < merged[j].Path })
	return merged, nil
}

func (t *kvTxn) Put(path string, value []byte) {
	if value == nil {
		value = []byte{}
	}
	t.buffer(path, value)
}

func (t *kvTxn) Delete(path string) {
	t.buffer(path, nil)
}

func (t *kvTxn) buffer(path string, value []byte) {
	if _, ok := t.writes[path]; !ok {
		t.order = append(t.order, path)
	}
	t.writes[path] = value
}

func (t *kvTxn) markRead(path string, version int64) {
	if _, ok := t.reads[path]; !ok {
		t.reads[path] = version
	}
}

func (t *kvTxn) apply(ctx context.Context) (bool, error) {
	for _, path := range t.order {
		value := t.writes[path]
		version, read := t.reads[path]
		if !read {
			if value == nil {
				if _, err := t.tx.ExecContext(ctx, `DELETE FROM kv WHERE path = ?`, path); err != nil {
					return false, fmt.Errorf("failed to delete %s: %w", path, err)
				}
				continue
			}
			if err := upsert(ctx, t.tx, path, value); err != nil {
				return false, err
			}
			continue
		}

		ok, err := compareAndSwap(ctx, t.tx, path, value, version)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func getEntry(ctx context.Context, q querier, path string) (repository.Entry, error) {
	var stored []byte
	var codec int
	var version int64
	err := q.QueryRowContext(ctx,
		`SELECT value, codec, version FROM kv WHERE path = ?`, path,
	).Scan(&stored, &codec, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.Entry{}, repository.ErrNotFound
	}
	if err != nil {
		return repository.Entry{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	value, err := decodeValue(stored, codec)
	if err != nil {
		return repository.Entry{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return repository.Entry{Path: path, Value: value, Version: version}, nil
}

func listEntries(ctx context.Context, q querier, prefix string) ([]repository.Entry, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT path, value, codec, version FROM kv WHERE substr(path, 1, ?) = ? ORDER BY path`,
		len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}
	defer rows.Close()

	var entries []repository.Entry
	for rows.Next() {
		var entry repository.Entry
		var stored []byte
		var codec int
		if err := rows.Scan(&entry.Path, &stored, &codec, &entry.Version); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entry.Value, err = decodeValue(stored, codec)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", entry.Path, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}
	return entries, nil
}

func upsert(ctx context.Context, q querier, path string, value []byte) error {
	stored, codec, err := encodeValue(value)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO kv (path, value, codec, version, updated_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(path) DO UPDATE SET
			value = excluded.value,
			codec = excluded.codec,
			version = kv.version + 1,
			updated_at = excluded.updated_at
	`, path, stored, codec, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// compareAndSwap writes next at path only if the stored version still
// equals expected. expected == 0 means the key must not exist; a nil next
// deletes.
func compareAndSwap(ctx context.Context, q querier, path string, next []byte, expected int64) (bool, error) {
	if expected == 0 {
		if next == nil {
			var exists bool
			err := q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM kv WHERE path = ?)`, path).Scan(&exists)
			if err != nil {
				return false, fmt.Errorf("failed to check %s: %w", path, err)
			}
			return !exists, nil
		}

		stored, codec, err := encodeValue(next)
		if err != nil {
			return false, err
		}
		_, err = q.ExecContext(ctx,
			`INSERT INTO kv (path, value, codec, version, updated_at) VALUES (?, ?, ?, 1, ?)`,
			path, stored, codec, time.Now().UTC())
		if isUniqueViolation(err) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to insert %s: %w", path, err)
		}
		return true, nil
	}

	var result sql.Result
	if next == nil {
		var err error
		result, err = q.ExecContext(ctx, `DELETE FROM kv WHERE path = ? AND version = ?`, path, expected)
		if err != nil {
			return false, fmt.Errorf("failed to delete %s: %w", path, err)
		}
	} else {
		stored, codec, err := encodeValue(next)
		if err != nil {
			return false, err
		}
		result, err = q.ExecContext(ctx, `
			UPDATE kv SET value = ?, codec = ?, version = version + 1, updated_at = ?
			WHERE path = ? AND version = ?
		`, stored, codec, time.Now().UTC(), path, expected)
		if err != nil {
			return false, fmt.Errorf("failed to update %s: %w", path, err)
		}
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}

func sortedPaths(writes map[string][]byte) []string {
	paths := make([]string, 0, len(writes))
	for path := range writes {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
