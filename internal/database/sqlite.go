// Package database provides SQLite-backed persistence for scheduled jobs
// and their run history.
package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

const (
	// DefaultPath is where the database file lives when no path is configured.
	DefaultPath = "./data/scheduler.db"

	// busyTimeoutMs is how long a writer waits on a locked database before
	// giving up.
	busyTimeoutMs = 5000

	// pingTimeout is the timeout for the connectivity check on open.
	pingTimeout = 5 * time.Second
)

// Config holds database connection settings.
type Config struct {
	// Path is the location of the SQLite database file.
	Path string
}

// Open opens (creating if necessary) the SQLite database with write-ahead
// logging, foreign keys, and a busy timeout enabled, and verifies
// connectivity. The parent directory is created if it does not exist.
func Open(cfg Config) (*sqlx.DB, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=%d&_foreign_keys=ON", path, busyTimeoutMs)

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	return db, nil
}
