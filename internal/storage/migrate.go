// ABOUTME: Versioned schema migrations embedded in the binary.
// ABOUTME: Runs golang-migrate against the open SQLite handle.
package storage

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrateSummary reports the schema version before and after migrating.
type MigrateSummary struct {
	FromVersion uint
	ToVersion   uint
	Dirty       bool
}

// Applied reports whether any migration ran.
func (s MigrateSummary) Applied() bool {
	return s.ToVersion != s.FromVersion
}

// Migrate applies all pending up migrations.
func (d *DB) Migrate() (*MigrateSummary, error) {
	m, err := d.migrator()
	if err != nil {
		return nil, err
	}

	summary := &MigrateSummary{}
	from, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, fmt.Errorf("read schema version: %w", err)
	}
	summary.FromVersion = from

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	to, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, fmt.Errorf("read schema version: %w", err)
	}
	summary.ToVersion = to
	summary.Dirty = dirty

	if summary.Applied() {
		logrus.WithFields(logrus.Fields{
			"component": "storage",
			"from":      summary.FromVersion,
			"to":        summary.ToVersion,
		}).Info("schema migrated")
	}
	return summary, nil
}

// SchemaVersion returns the current migration version.
func (d *DB) SchemaVersion() (uint, bool, error) {
	m, err := d.migrator()
	if err != nil {
		return 0, false, err
	}
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return v, dirty, nil
}

// migrator builds a migrate instance sharing the store's handle. It is never
// closed: closing it would close the shared *sql.DB as well.
func (d *DB) migrator() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(d.db.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("init migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	return m, nil
}
