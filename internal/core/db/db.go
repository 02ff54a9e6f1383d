package db

import (
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps the SQLite handle behind the bookmark store operations.
//
// All mutations are serialized by a single write mutex, which is how the
// one-writer-per-record guarantee is enforced: at the scale of a personal
// bookmark collection a store-wide lock is simpler than per-URL locks and
// just as correct.
type DB struct {
	db             *sql.DB
	writeMu        sync.Mutex
	eventListeners map[EventKind][]EventListener
}

func NewSQLiteDB(path string) (*DB, error) {
	handle, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases coherent and makes the
	// foreign-key pragma apply to every statement.
	handle.SetMaxOpenConns(1)
	if _, err := handle.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return &DB{
		db:             handle,
		eventListeners: make(map[EventKind][]EventListener),
	}, nil
}

// Migrate brings the schema up to date by applying the embedded migration
// files, in lexical order, that have not been applied yet. Each file runs in
// its own transaction. Safe to call on every startup.
func (db *DB) Migrate() error {
	if _, err := db.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema migrations table: %w", err)
	}

	applied, err := db.appliedMigrations()
	if err != nil {
		return err
	}

	for _, version := range embeddedMigrations() {
		if applied[version] {
			log.Debug().Str("version", version).Msg("migration already applied, skipping")
			continue
		}
		if err := db.applyMigration(version); err != nil {
			return err
		}
		log.Info().Str("version", version).Msg("migration applied")
	}
	return nil
}

// embeddedMigrations lists the migration versions shipped in the binary,
// sorted so numeric prefixes run in order.
func embeddedMigrations() []string {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		// The directory is embedded at compile time; failing to read it is a
		// build defect, not a runtime condition.
		panic(fmt.Sprintf("failed to read embedded migrations: %v", err))
	}

	var versions []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		versions = append(versions, strings.TrimSuffix(name, ".sql"))
	}
	sort.Strings(versions)
	return versions
}

func (db *DB) appliedMigrations() (map[string]bool, error) {
	rows, err := db.db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to list applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applied migrations: %w", err)
	}
	return applied, nil
}

func (db *DB) applyMigration(version string) error {
	content, err := migrationsFS.ReadFile("migrations/" + version + ".sql")
	if err != nil {
		return fmt.Errorf("failed to read migration %s: %w", version, err)
	}

	tx, err := db.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := tx.Exec(string(content)); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to apply migration %s: %w", version, err)
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %s: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", version, err)
	}
	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}
