package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("blob not found")

func cacheKey(key string, version int64) string {
	return fmt.Sprintf("%s@%d", key, version)
}

// nextVersion returns a row version that is unique within this process and
// ordered with writes from other processes sharing the database file.
func (s *Store) nextVersion() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := max(time.Now().UnixNano(), s.lastVersion+1)
	s.lastVersion = v
	return v
}

// Get returns the decompressed payload stored under key, or ErrNotFound.
// Only the row version is read when the payload for that version is cached.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var version int64
	err := s.db.QueryRowContext(ctx, `SELECT version FROM blobs WHERE key = ?`, key).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get blob %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get blob %q: %w", key, err)
	}
	if v, ok := s.cache.Get(cacheKey(key, version)); ok {
		return v, nil
	}

	var raw []byte
	err = s.db.QueryRowContext(ctx, `SELECT data, version FROM blobs WHERE key = ?`, key).Scan(&raw, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get blob %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get blob %q: %w", key, err)
	}

	data, err := s.codec.decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("decompress blob %q: %w", key, err)
	}
	s.cache.Set(cacheKey(key, version), data)
	return data, nil
}

// Put replaces the payload stored under key.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	return s.PutMany(ctx, map[string][]byte{key: data})
}

// PutMany replaces every payload in blobs inside one transaction: either all
// of them are stored or none is.
func (s *Store) PutMany(ctx context.Context, blobs map[string][]byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	versions := make(map[string]int64, len(blobs))
	for key, data := range blobs {
		v := s.nextVersion()
		_, err := tx.ExecContext(ctx,
			`INSERT INTO blobs (key, data, updated_at, version) VALUES (?, ?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at, version = excluded.version`,
			key, s.codec.compress(data), now, v,
		)
		if err != nil {
			return fmt.Errorf("put blob %q: %w", key, err)
		}
		versions[key] = v
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	for key, v := range versions {
		s.cache.Set(cacheKey(key, v), blobs[key])
	}
	return nil
}

// Delete removes key. Cached payloads of the removed row are never read
// again because a new row gets a new version.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete blob %q: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys in order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM blobs ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
