// ABOUTME: SQLite database connection and lifecycle management.
// ABOUTME: Uses modernc.org/sqlite (pure Go, no CGO) through sqlx in WAL mode.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DefaultBusyTimeout is how long a writer waits for the write lock.
const DefaultBusyTimeout = 5 * time.Second

// DB wraps the SQLite database connection.
type DB struct {
	db     *sqlx.DB
	dbPath string
	now    func() time.Time
}

// Options tunes how the database is opened.
type Options struct {
	BusyTimeout time.Duration
	// Now overrides the clock used for timestamps. Nil means time.Now.
	Now func() time.Time
}

// Open opens or creates a SQLite database at the given path and migrates it.
func Open(dbPath string) (*DB, error) {
	return OpenWithOptions(dbPath, Options{})
}

// OpenWithOptions is Open with explicit options.
func OpenWithOptions(dbPath string, opts Options) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = DefaultBusyTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	db, err := sqlx.Open("sqlite", dataSourceName(dbPath, opts.BusyTimeout))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	d := &DB{db: db, dbPath: dbPath, now: opts.Now}

	if err := d.configurePragmas(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure pragmas: %w", err)
	}

	// The file exists once the first connection has been made.
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		_ = db.Close()
		return nil, fmt.Errorf("set database permissions: %w", err)
	}

	if _, err := d.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return d, nil
}

// OpenDefault opens the database at the default XDG data path.
func OpenDefault() (*DB, error) {
	return Open(DefaultDBPath())
}

// DataDir returns the default data directory following XDG spec.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "gymbot")
}

// DefaultDBPath returns the default database path following XDG spec.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "gymbot.db")
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.dbPath
}

// Ping verifies the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// JournalMode reports the active journal mode ("wal" once configured).
func (d *DB) JournalMode(ctx context.Context) (string, error) {
	var mode string
	if err := d.db.GetContext(ctx, &mode, "PRAGMA journal_mode"); err != nil {
		return "", fmt.Errorf("read journal mode: %w", err)
	}
	return strings.ToLower(mode), nil
}

// dataSourceName applies pragmas on every pooled connection, since
// foreign_keys and busy_timeout are per-connection settings.
func dataSourceName(path string, busy time.Duration) string {
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()))
	q.Add("_pragma", "synchronous(NORMAL)")
	return path + "?" + q.Encode()
}

// configurePragmas checks that the database came up in WAL mode.
func (d *DB) configurePragmas() error {
	mode, err := d.JournalMode(context.Background())
	if err != nil {
		return err
	}
	if mode == "wal" {
		return nil
	}
	if _, err := d.db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return fmt.Errorf("execute PRAGMA journal_mode = WAL: %w", err)
	}
	return nil
}
