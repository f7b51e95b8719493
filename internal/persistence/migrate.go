package persistence

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"modbot/internal/logger"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migration is one embedded schema change. Version and description come
// from the filename: "001_initial_schema.sql" is version 1, "initial
// schema".
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// MigrationStatus pairs an available migration with whether it has been
// applied.
type MigrationStatus struct {
	Version     int
	Description string
	Applied     bool
}

// MigrationManager applies the embedded migrations to a PostgresDB,
// recording each in the schema_migrations table so a migration runs at
// most once.
type MigrationManager struct {
	db  *PostgresDB
	log *slog.Logger
}

// NewMigrationManager creates a migration manager for the given database.
func NewMigrationManager(db *PostgresDB) *MigrationManager {
	return &MigrationManager{
		db:  db,
		log: logger.Get(),
	}
}

// Migrate applies every unapplied migration in version order. Each one
// runs inside its own transaction together with its bookkeeping row, so a
// failure leaves the schema at the last fully applied version.
func (m *MigrationManager) Migrate(ctx context.Context) error {
	if err := m.ensureTrackingTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}

	available, err := embeddedMigrations()
	if err != nil {
		return err
	}

	ran := 0
	for _, migration := range available {
		if applied[migration.Version] {
			continue
		}
		if err := m.apply(ctx, migration); err != nil {
			return fmt.Errorf("migration %d (%s): %w", migration.Version, migration.Description, err)
		}
		ran++
	}

	if ran == 0 {
		m.log.Info("Database schema is up to date")
	} else {
		m.log.Info("Applied migrations", "count", ran)
	}
	return nil
}

// Status lists every embedded migration with its applied state, in
// version order.
func (m *MigrationManager) Status(ctx context.Context) ([]MigrationStatus, error) {
	if err := m.ensureTrackingTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}

	available, err := embeddedMigrations()
	if err != nil {
		return nil, err
	}

	status := make([]MigrationStatus, 0, len(available))
	for _, migration := range available {
		status = append(status, MigrationStatus{
			Version:     migration.Version,
			Description: migration.Description,
			Applied:     applied[migration.Version],
		})
	}
	return status, nil
}

// Rollback forgets the newest applied migration. Only the bookkeeping row
// is removed; reverting the schema change itself is a manual operation.
func (m *MigrationManager) Rollback(ctx context.Context) error {
	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}
	if len(applied) == 0 {
		return fmt.Errorf("no migrations to rollback")
	}

	newest := 0
	for version := range applied {
		if version > newest {
			newest = version
		}
	}

	m.log.Warn("Rolling back migration", "version", newest)
	if _, err := m.db.db.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = $1`, newest); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	m.log.Info("Migration record removed, revert the schema change manually", "version", newest)
	return nil
}

func (m *MigrationManager) ensureTrackingTable(ctx context.Context) error {
	_, err := m.db.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (m *MigrationManager) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := m.db.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func (m *MigrationManager) apply(ctx context.Context, migration Migration) error {
	m.log.Info("Applying migration", "version", migration.Version, "description", migration.Description)

	tx, err := m.db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, description) VALUES ($1, $2) ON CONFLICT (version) DO NOTHING`,
		migration.Version, migration.Description,
	); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return tx.Commit()
}

// embeddedMigrations decodes the migrations directory into sorted
// Migration values. Files whose names don't carry a numeric version
// prefix are skipped with a warning.
func embeddedMigrations() ([]Migration, error) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, description, ok := parseMigrationName(entry.Name())
		if !ok {
			logger.Warn("Skipping migration file with unrecognized name", "file", entry.Name())
			continue
		}

		content, err := migrationFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}

		migrations = append(migrations, Migration{
			Version:     version,
			Description: description,
			SQL:         string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

func parseMigrationName(name string) (version int, description string, ok bool) {
	prefix, rest, found := strings.Cut(name, "_")
	if !found {
		return 0, "", false
	}
	version, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, "", false
	}
	description = strings.ReplaceAll(strings.TrimSuffix(rest, ".sql"), "_", " ")
	return version, description, true
}
