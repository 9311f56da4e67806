package fetch

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Cache is an on-disk response cache backed by SQLite. Entries expire
// after the configured TTL; a stale hit is a miss.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	mu  sync.Mutex
}

// OpenCache opens (creating if necessary) the cache database at path.
func OpenCache(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	c := &Cache{db: db, ttl: ttl}
	if err := c.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) initialize() error {
	_, err := c.db.Exec(`
	CREATE TABLE IF NOT EXISTS responses (
		key        TEXT PRIMARY KEY,
		body       BLOB NOT NULL,
		created_at INTEGER NOT NULL
	);
	`)
	if err != nil {
		return fmt.Errorf("create responses table: %w", err)
	}
	return nil
}

// Get returns the cached body for key if present and fresh.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var body []byte
	var createdAt int64
	err := c.db.QueryRow("SELECT body, created_at FROM responses WHERE key = ?", key).Scan(&body, &createdAt)
	if err != nil {
		return nil, false
	}
	if c.ttl > 0 && time.Since(time.Unix(0, createdAt)) > c.ttl {
		_, _ = c.db.Exec("DELETE FROM responses WHERE key = ?", key)
		return nil, false
	}
	return body, true
}

// Put stores body under key, replacing any previous entry.
func (c *Cache) Put(key string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(
		"INSERT OR REPLACE INTO responses (key, body, created_at) VALUES (?, ?, ?)",
		key, body, time.Now().UnixNano(),
	)
	return err
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
