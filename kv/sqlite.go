package kv

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
)

// Sqlite stores values and sets in a single SQLite database, for
// deployments that want durability without running a Redis server.
//
// Tables:
//
//	kv(key, value)                PRIMARY KEY (key)
//	set_members(set_name, member) PRIMARY KEY (set_name, member)
type Sqlite struct {
	mu sync.RWMutex
	db *sql.DB
}

func NewSqlite(dbPath string) (*Sqlite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS set_members (
		set_name TEXT NOT NULL,
		member TEXT NOT NULL,
		PRIMARY KEY (set_name, member)
	)`); err != nil {
		db.Close()
		return nil, err
	}
	return &Sqlite{db: db}, nil
}

func (s *Sqlite) Close() error {
	return s.db.Close()
}

func (s *Sqlite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *Sqlite) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Sqlite) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return err
	}
	// Redis DEL drops a set key the same way, so keep that contract.
	_, err := s.db.ExecContext(ctx, "DELETE FROM set_members WHERE set_name = ?", key)
	return err
}

func (s *Sqlite) SAdd(ctx context.Context, set, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO set_members (set_name, member) VALUES (?, ?)",
		set, member,
	)
	return err
}

func (s *Sqlite) SRem(ctx context.Context, set, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM set_members WHERE set_name = ? AND member = ?",
		set, member,
	)
	return err
}

func (s *Sqlite) SMembers(ctx context.Context, set string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx,
		"SELECT member FROM set_members WHERE set_name = ?", set,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	members := []string{}
	for rows.Next() {
		var member string
		if err := rows.Scan(&member); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}
