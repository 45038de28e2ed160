package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/logger"
)

const schemaTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	migrationsDir := flag.String("dir", "migrations", "Directory holding the SQL migrations")
	flag.Parse()

	migrateLog, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer migrateLog.Sync()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			migrateLog.Fatal("DATABASE_URL is not set and configuration failed to load", "error", err)
		}
		dsn = cfg.DSN()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		migrateLog.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if _, err := db.Exec(schemaTable); err != nil {
		migrateLog.Fatal("Failed to create schema_migrations", "error", err)
	}

	if *rollback {
		name, err := rollbackLast(db, *migrationsDir)
		if err != nil {
			migrateLog.Fatal("Rollback failed", "error", err)
		}
		migrateLog.Info("Rolled back migration", "name", name)
		return
	}

	files, err := migrationFiles(*migrationsDir)
	if err != nil {
		migrateLog.Fatal("Failed to read migrations directory", "error", err)
	}
	for _, file := range files {
		applied, err := apply(db, *migrationsDir, file)
		if err != nil {
			migrateLog.Fatal("Failed to apply migration", "file", file, "error", err)
		}
		if applied {
			migrateLog.Info("Applied migration", "file", file)
		} else {
			migrateLog.Debug("Migration already applied", "file", file)
		}
	}
	migrateLog.Info("All migrations applied")
}

// migrationFiles lists forward migrations in apply order.
func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".sql" || strings.HasSuffix(name, "_rollback.sql") {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

// migrationVersion extracts VERSION from VERSION_NAME.sql.
func migrationVersion(file string) string {
	return strings.SplitN(strings.TrimSuffix(file, ".sql"), "_", 2)[0]
}

func rollbackFileFor(file string) string {
	return strings.TrimSuffix(file, ".sql") + "_rollback.sql"
}

func apply(db *sql.DB, dir, file string) (bool, error) {
	version := migrationVersion(file)

	var exists bool
	if err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", version).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	if exists {
		return false, nil
	}

	content, err := os.ReadFile(filepath.Join(dir, file))
	if err != nil {
		return false, err
	}

	tx, err := db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(content)); err != nil {
		return false, err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version, name) VALUES ($1, $2)", version, file); err != nil {
		return false, fmt.Errorf("failed to record migration: %w", err)
	}
	return true, tx.Commit()
}

func rollbackLast(db *sql.DB, dir string) (string, error) {
	var version, name string
	err := db.QueryRow("SELECT version, name FROM schema_migrations ORDER BY applied_at DESC, version DESC LIMIT 1").Scan(&version, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.New("no migrations to rollback")
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last migration: %w", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, rollbackFileFor(name)))
	if err != nil {
		return "", fmt.Errorf("rollback file for %s: %w", name, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(content)); err != nil {
		return "", err
	}
	if _, err := tx.Exec("DELETE FROM schema_migrations WHERE version = $1", version); err != nil {
		return "", fmt.Errorf("failed to remove migration record: %w", err)
	}
	return name, tx.Commit()
}
