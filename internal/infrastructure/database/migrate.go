package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/retailops/loadboard/internal/infrastructure/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migration directions
const (
	MigrateUp   = "up"
	MigrateDown = "down"
)

// MigrationStatus is reported by the migrate commands.
type MigrationStatus struct {
	Version uint
	Dirty   bool
	Changed bool
}

// Migrate applies the embedded schema in the given direction. It uses a
// dedicated connection because the migrate driver closes the handle it is
// given.
func Migrate(cfg config.DatabaseConfig, direction string) (MigrationStatus, error) {
	m, err := newMigrator(cfg)
	if err != nil {
		return MigrationStatus{}, err
	}
	defer m.Close()

	switch direction {
	case MigrateUp:
		err = m.Up()
	case MigrateDown:
		err = m.Down()
	default:
		return MigrationStatus{}, fmt.Errorf("unknown migration direction %q", direction)
	}

	changed := true
	if errors.Is(err, migrate.ErrNoChange) {
		changed = false
		err = nil
	}
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("migration %s failed: %w", direction, err)
	}

	status, err := version(m)
	status.Changed = changed
	return status, err
}

// Version reports the current schema version.
func Version(cfg config.DatabaseConfig) (MigrationStatus, error) {
	m, err := newMigrator(cfg)
	if err != nil {
		return MigrationStatus{}, err
	}
	defer m.Close()

	return version(m)
}

func version(m *migrate.Migrate) (MigrationStatus, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return MigrationStatus{}, nil
	}
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("failed to get migration version: %w", err)
	}
	return MigrationStatus{Version: v, Dirty: dirty}, nil
}

func newMigrator(cfg config.DatabaseConfig) (*migrate.Migrate, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open migration connection: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{DatabaseName: cfg.Name})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	return buildMigrator(driver, migrationsFS, "migrations")
}

// buildMigrator owns driver: it is closed when no migrator comes back.
func buildMigrator(driver migratedb.Driver, fsys fs.FS, dir string) (*migrate.Migrate, error) {
	source, err := iofs.New(fsys, dir)
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		source.Close()
		driver.Close()
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, nil
}
