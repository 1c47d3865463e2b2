package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore persists entries in the kv_entries table created by
// database.Migrate.
type SQLiteStore struct {
	DB *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{DB: db}
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	return get(ctx, s.DB, key)
}

func get(ctx context.Context, q execQuerier, key string) (string, bool, error) {
	var v string
	err := q.QueryRowContext(ctx, `
		SELECT value FROM kv_entries WHERE key = ?
	`, key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	return set(ctx, s.DB, key, value)
}

func set(ctx context.Context, q execQuerier, key, value string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	return del(ctx, s.DB, key)
}

func del(ctx context.Context, q execQuerier, key string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}

// Update runs inside BEGIN IMMEDIATE, which takes the database write lock
// before reading, so a concurrent writer on another connection (or another
// process on the same file) waits for busy_timeout instead of interleaving.
func (s *SQLiteStore) Update(ctx context.Context, keys []string, fn UpdateFunc) error {
	conn, err := s.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("kv update: conn: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `BEGIN IMMEDIATE`); err != nil {
		return fmt.Errorf("kv update: begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_, _ = conn.ExecContext(context.Background(), `ROLLBACK`)
		}
	}()

	current := make(map[string]string, len(keys))
	for _, k := range keys {
		v, ok, err := get(ctx, conn, k)
		if err != nil {
			return err
		}
		if ok {
			current[k] = v
		}
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	if next != nil {
		sets, dels := changes(keys, current, next)
		for _, k := range sortedKeys(sets) {
			if err := set(ctx, conn, k, sets[k]); err != nil {
				return err
			}
		}
		for _, k := range dels {
			if err := del(ctx, conn, k); err != nil {
				return err
			}
		}
	}

	if _, err := conn.ExecContext(ctx, `COMMIT`); err != nil {
		return fmt.Errorf("kv update: commit: %w", err)
	}
	committed = true
	return nil
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
